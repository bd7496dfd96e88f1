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

package core

import (
	"fmt"
)

// Example demonstrates Compile()ing and Simulate()ing.
func Example() {
	d := &Definition{
		Name:     "eps-a",
		States:   States("q0", "q1", "q2"),
		Alphabet: Symbols("a"),
		Transitions: Transitions{
			"q0": {Epsilon: {"q1"}},
			"q1": {"a": {"q2"}},
		},
		Start:  "q0",
		Accept: States("q2"),
	}

	a, err := d.Compile()
	if err != nil {
		panic(err)
	}

	fmt.Printf("kind: %s\n", a.Kind())
	fmt.Printf("closure: %s\n", a.EpsilonClosure(NewStateSet(a.Start())))

	for _, input := range [][]Symbol{Symbols("a"), Symbols(), Symbols("a", "a")} {
		ok, err := a.Simulate(input)
		if err != nil {
			panic(err)
		}
		fmt.Printf("%v: %v\n", input, ok)
	}

	if _, err = a.Simulate(Symbols("b")); err != nil {
		fmt.Println(err)
	}

	// Output:
	// kind: ε-NFA
	// closure: {q0,q1}
	// [a]: true
	// []: false
	// [a a]: false
	// input string contains invalid symbols:
	// invalid symbols: b
	// allowed symbols (alphabet): a
}

// ExampleNew shows the error for an incomplete DFA.
func ExampleNew() {
	_, err := New(
		States("q0", "q1"),
		Symbols("0", "1"),
		Transitions{"q0": {"0": {"q1"}}},
		"q0",
		States("q1"))
	fmt.Println(err)

	// Output:
	// DFA validation errors:
	// (q0, 1)
}
