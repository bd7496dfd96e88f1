// Package automata provides finite automata (DFAs, NFAs, and ε-NFAs)
// defined by data.
//
// The core code is in package 'core'.  Package 'notation' reads and
// writes the line-oriented transition notation, 'tools' renders and
// checks automata, and some command-line tools are in `cmd`.
package automata
