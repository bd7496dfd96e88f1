/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

// Package core provides the core gear for finite automata: a
// deterministic finite automaton (DFA), a nondeterministic one (NFA),
// or an NFA with ε-transitions (ε-NFA).
//
// The primary type is Automaton, and the primary method is
// Simulate().  An Automaton is built from a Definition, which gives
// the States, the Alphabet, the Transitions, the Start state, and the
// Accept states.  A Definition is usually read from YAML or JSON, or
// it's built by package notation from the line-oriented transition
// notation ("q0,0 -> q1").
//
// When a Definition is Compiled, the Automaton is classified once.
// If the automaton looks deterministic (no ε-transitions and no
// (state, symbol) pair with more than one destination), then every
// non-accepting state must have exactly one transition for every
// symbol.  Otherwise Compile returns a TransitionError that lists
// every offending pair.  Accept states are exempt from that
// completeness requirement: an accept state may be a dead end.
//
// After construction an Automaton is never modified.  Simulate(),
// Walk(), and EpsilonClosure() only read the Automaton and build
// local sets, so they are safe to call concurrently.
//
// Simulation uses the same algorithm for all three kinds of
// automata: keep a set of current states, which starts as the
// ε-closure of the start state, and for each input symbol move to the
// ε-closure of all destinations for that symbol.  An empty set of
// current states rejects the input immediately.  At the end, the
// input is accepted if any current state is an accept state.
//
// To use this package, make a Definition.  Then Compile() it.  Then
// Simulate() some inputs.
package core
