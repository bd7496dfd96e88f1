/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package core

import (
	"sync/atomic"
)

// Holder is a handy place to keep the current Automaton for some
// name when that name's definition can change at any time.
//
// The Automaton itself never changes.  A new definition means a new
// Automaton, which replaces the old one atomically.  Callers that
// already have the old one can keep using it.
type Holder struct {
	p atomic.Pointer[Automaton]
}

// NewHolder makes one with the given initial automaton, which can be
// changed later via Set.
func NewHolder(a *Automaton) *Holder {
	h := &Holder{}
	h.p.Store(a)
	return h
}

// Set atomically replaces the automaton.
func (h *Holder) Set(a *Automaton) {
	h.p.Store(a)
}

// Automaton returns the current automaton.
func (h *Holder) Automaton() *Automaton {
	return h.p.Load()
}
