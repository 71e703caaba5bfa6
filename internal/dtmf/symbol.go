// Package dtmf implements a fixed-point DTMF (touch-tone) detector and generator
// operating on 16-bit PCM at 8000 Hz.
//
// The Detector splits incoming audio into fixed batches, measures 18 frequencies per
// batch with Goertzel filters and runs a decision procedure that rejects noise,
// harmonics and excessive twist. The Generator synthesises the same symbols with a
// pair of recursive oscillators so its output can be fed straight back into a
// Detector.
package dtmf

import (
	"errors"
	"fmt"
)

// ErrInvalidSymbol indicates a character outside 0-9, A-D, * and #
var ErrInvalidSymbol = errors.New("invalid DTMF symbol")

// Symbol is one keypad button, stored as its ASCII character.
type Symbol byte

// Silence is what a batch without a valid tone decodes to.
const Silence Symbol = ' '

// Alphabet lists every symbol in keypad order, row by row.
const Alphabet = "123A456B789C*0#D"

// keypad maps (row, column) to the button at their crossing.
var keypad = [4][4]Symbol{
	{'1', '2', '3', 'A'},
	{'4', '5', '6', 'B'},
	{'7', '8', '9', 'C'},
	{'*', '0', '#', 'D'},
}

// Lookup returns the symbol at the given keypad row and column (both 0-3).
func Lookup(row, col int) (Symbol, bool) {
	if row < 0 || row > 3 || col < 0 || col > 3 {
		return Silence, false
	}
	return keypad[row][col], true
}

// Position returns the keypad row and column of s.
func (s Symbol) Position() (row, col int, ok bool) {
	for r := range keypad {
		for c := range keypad[r] {
			if keypad[r][c] == s {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

// Valid reports whether s is one of the 16 keypad symbols.
func (s Symbol) Valid() bool {
	_, _, ok := s.Position()
	return ok
}

func (s Symbol) String() string {
	return string(rune(s))
}

// ParseSymbol accepts a keypad character; letters may be lower case.
func ParseSymbol(r rune) (Symbol, error) {
	if r >= 'a' && r <= 'd' {
		r -= 'a' - 'A'
	}
	if r > 0x7f || !Symbol(r).Valid() {
		return Silence, fmt.Errorf("%w: %q", ErrInvalidSymbol, r)
	}
	return Symbol(r), nil
}

// ParseSymbols converts a string of keypad characters, ignoring spaces, commas and
// dashes so "555-1234" and "1 2 3" are accepted.
func ParseSymbols(s string) ([]Symbol, error) {
	out := make([]Symbol, 0, len(s))
	for _, r := range s {
		switch r {
		case ' ', '\t', ',', '-':
			continue
		}
		sym, err := ParseSymbol(r)
		if err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, nil
}
