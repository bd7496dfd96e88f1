package core

import (
	"encoding/json"
	"sort"
	"strings"
)

// StateSet is a set of States.
//
// The zero value is not usable for Add.  Use NewStateSet.
type StateSet map[State]struct{}

// NewStateSet makes a set with the given members.
func NewStateSet(ss ...State) StateSet {
	acc := make(StateSet, len(ss))
	for _, s := range ss {
		acc[s] = struct{}{}
	}
	return acc
}

// Add adds the given state and reports whether the state was new.
func (s StateSet) Add(st State) bool {
	if _, have := s[st]; have {
		return false
	}
	s[st] = struct{}{}
	return true
}

// Has reports membership.
func (s StateSet) Has(st State) bool {
	_, have := s[st]
	return have
}

func (s StateSet) Len() int {
	return len(s)
}

// Copy makes a shallow copy, which is also a deep copy.
func (s StateSet) Copy() StateSet {
	acc := make(StateSet, len(s))
	for st := range s {
		acc[st] = struct{}{}
	}
	return acc
}

// Union adds all of the members of the other set to this set, which
// is returned.
func (s StateSet) Union(other StateSet) StateSet {
	for st := range other {
		s[st] = struct{}{}
	}
	return s
}

// Intersects reports whether the two sets share a member.
func (s StateSet) Intersects(other StateSet) bool {
	small, big := s, other
	if len(big) < len(small) {
		small, big = big, small
	}
	for st := range small {
		if _, have := big[st]; have {
			return true
		}
	}
	return false
}

// Equal reports whether the two sets have the same members.
func (s StateSet) Equal(other StateSet) bool {
	if len(s) != len(other) {
		return false
	}
	for st := range s {
		if _, have := other[st]; !have {
			return false
		}
	}
	return true
}

// Sorted returns the members in lexical order.
func (s StateSet) Sorted() []State {
	acc := make([]State, 0, len(s))
	for st := range s {
		acc = append(acc, st)
	}
	sort.Slice(acc, func(i, j int) bool { return acc[i] < acc[j] })
	return acc
}

func (s StateSet) String() string {
	ss := s.Sorted()
	strs := make([]string, len(ss))
	for i, st := range ss {
		strs[i] = string(st)
	}
	return "{" + strings.Join(strs, ",") + "}"
}

// MarshalJSON renders the set as a sorted array.
func (s StateSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON reads an array of states.
func (s *StateSet) UnmarshalJSON(bs []byte) error {
	var ss []State
	if err := json.Unmarshal(bs, &ss); err != nil {
		return err
	}
	*s = NewStateSet(ss...)
	return nil
}
