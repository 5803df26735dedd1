// Package sevenseg encodes digits and a few letters as 7-segment bitmasks.
//
// Bit 7 is segment a, bit 1 is segment g and bit 0 is the decimal point:
//
//	 --a--
//	|     |
//	f     b
//	|     |
//	 --g--
//	|     |
//	e     c
//	|     |
//	 --d--  .dp
package sevenseg

const (
	A uint8 = 1 << (7 - iota)
	B
	C
	D
	E
	F
	G
	DP
)

// Blank has every segment off.
const Blank uint8 = 0

// Dash is shown for anything that has no glyph.
const Dash = G

var digits = [10]uint8{
	A | B | C | D | E | F,     // 0
	B | C,                     // 1
	A | B | D | E | G,         // 2
	A | B | C | D | G,         // 3
	B | C | F | G,             // 4
	A | C | D | F | G,         // 5
	A | C | D | E | F | G,     // 6
	A | B | C,                 // 7
	A | B | C | D | E | F | G, // 8
	A | B | C | D | F | G,     // 9
}

// Digit returns the bitmask of a decimal digit, or Dash if d is not one.
func Digit(d int) uint8 {
	if d < 0 || d >= len(digits) {
		return Dash
	}
	return digits[d]
}

// Letter returns the bitmask of one of the letters the clock needs, a space, or a digit.
// Anything else is Dash.
func Letter(r rune) uint8 {
	switch {
	case r >= '0' && r <= '9':
		return digits[r-'0']
	case r == 'E':
		return A | D | E | F | G
	case r == 'r':
		return E | G
	case r == 'o':
		return C | D | E | G
	case r == ' ':
		return Blank
	default:
		return Dash
	}
}
