package main

import (
	"sync"
	"time"

	"github.com/Comcast/automata/core"
	"github.com/Comcast/automata/tools"
)

type AnalysisCacheEntry struct {
	// Automaton is the one that was analyzed.
	Automaton *core.Automaton
	Analysis  *tools.Analysis
	Expires   time.Time
}

// Get returns the analysis if it hasn't expired and is for the given
// automaton.
func (e *AnalysisCacheEntry) Get(a *core.Automaton) *tools.Analysis {
	if time.Now().After(e.Expires) || e.Automaton != a {
		return nil
	}
	return e.Analysis
}

type AnalysisCache struct {
	sync.Mutex

	// Only expires entries when they are fetched.
	TTL     time.Duration
	Entries map[string]*AnalysisCacheEntry
}

func NewAnalysisCache(ttl time.Duration, size int) *AnalysisCache {
	return &AnalysisCache{
		TTL:     ttl,
		Entries: make(map[string]*AnalysisCacheEntry, size),
	}
}

func (c *AnalysisCache) Put(name string, a *core.Automaton, an *tools.Analysis) {
	c.Lock()
	c.Entries[name] = &AnalysisCacheEntry{
		Automaton: a,
		Analysis:  an,
		Expires:   time.Now().Add(c.TTL),
	}
	c.Unlock()
}

func (c *AnalysisCache) Rem(name string) {
	c.Lock()
	delete(c.Entries, name)
	c.Unlock()
}

func (c *AnalysisCache) Get(name string, a *core.Automaton) *tools.Analysis {
	c.Lock()
	defer c.Unlock()
	e, have := c.Entries[name]
	if !have {
		return nil
	}
	if an := e.Get(a); an != nil {
		return an
	}
	delete(c.Entries, name)
	return nil
}
