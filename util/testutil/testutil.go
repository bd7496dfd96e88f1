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

// Package testutil has small helpers for tests.  It must not import
// core, since core's own tests use it.
package testutil

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"testing"
)

// JS renders its argument as JSON or as a string indicating an error.
func JS(x interface{}) string {
	bs, err := json.Marshal(&x)
	if err != nil {
		log.Printf("warning: testutil.JS error %s for %#v", err, x)
		return fmt.Sprintf("%#v", x)
	}
	return string(bs)
}

// Dwimjs, when given a string or bytes, parses that data as JSON.
// When given anything else, just returns what's given.
//
// See https://en.wikipedia.org/wiki/DWIM.
func Dwimjs(x interface{}) interface{} {
	switch vv := x.(type) {
	case []byte:
		return Dwimjs(string(vv))
	case string:
		var v interface{}
		if err := json.Unmarshal([]byte(vv), &v); err != nil {
			panic(err)
		}
		return v
	default:
		return x
	}
}

// Runes splits a string into one string per character, which is how
// most test inputs are written.
func Runes(s string) []string {
	acc := make([]string, 0, len(s))
	for _, r := range s {
		acc = append(acc, string(r))
	}
	return acc
}

// CheckErr fails the test unless err and expected are both nil or
// err's message contains expected's message.
//
// Returns true when an error was expected, so the caller can leave.
func CheckErr(t *testing.T, err, expected error) bool {
	t.Helper()
	if err == nil || expected == nil {
		if err != expected {
			t.Fatalf("expected %v error but received %v", expected, err)
		}
		return false
	}
	if !strings.Contains(err.Error(), expected.Error()) {
		t.Fatalf("error %s doesn't include expected string %s", err, expected)
	}
	return true
}
