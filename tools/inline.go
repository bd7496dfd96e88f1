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

package tools

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"regexp"

	"github.com/Comcast/automata/util"
)

var inlinePattern = regexp.MustCompile(`(?s)(.*?)(%inline *\("([^"]*)"\))`)

// Inline replaces '%inline("NAME")' with f(NAME).
//
// Sessions use this to pull Goja code out of separate files.
func Inline(bs []byte, f func(string) ([]byte, error)) ([]byte, error) {
	p := inlinePattern
	i := 0
	acc := make([]byte, 0, len(bs))
	for {
		part := p.FindSubmatch(bs[i:])
		if part == nil {
			acc = append(acc, bs[i:]...)
			break
		}
		i += len(part[0])
		acc = append(acc, part[1]...)
		replacement, err := f(string(part[3]))
		if err != nil {
			return nil, err
		}
		util.Logf("inline", "inlining %s (%d bytes)", part[3], len(replacement))
		acc = append(acc, replacement...)
	}

	return acc, nil
}

// ReadFileWithInlines is a replacement for ioutil.ReadFile that adds
// automatic Inline()ing based on the directory obtained from the
// filename.
//
// '%inline("NAME")' is replaced with ReadFile(NAME).  When quote is
// true, the replacement is written as a JSON string, which YAML also
// reads as a (double-quoted) string.
func ReadFileWithInlines(filename string, quote bool) ([]byte, error) {

	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(filename)
	f := func(name string) ([]byte, error) {
		bs, err := ioutil.ReadFile(filepath.Join(dir, name))
		if err != nil || !quote {
			return bs, err
		}
		return json.Marshal(string(bs))
	}

	return Inline(bs, f)
}
