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
	"sort"
	"time"
)

// Timestamp returns a string representing the current time in
// RFC3339Nano.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Symbols converts strings to Symbols.
func Symbols(ss ...string) []Symbol {
	acc := make([]Symbol, len(ss))
	for i, s := range ss {
		acc[i] = Symbol(s)
	}
	return acc
}

// States converts strings to States.
func States(ss ...string) []State {
	acc := make([]State, len(ss))
	for i, s := range ss {
		acc[i] = State(s)
	}
	return acc
}

func sortedSources(t Transitions) []State {
	acc := make([]State, 0, len(t))
	for from := range t {
		acc = append(acc, from)
	}
	sort.Slice(acc, func(i, j int) bool { return acc[i] < acc[j] })
	return acc
}

func sortedSymbols(m map[Symbol][]State) []Symbol {
	acc := make([]Symbol, 0, len(m))
	for sym := range m {
		acc = append(acc, sym)
	}
	sort.Slice(acc, func(i, j int) bool { return acc[i] < acc[j] })
	return acc
}
