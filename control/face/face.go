// Package face lays numbers and words out on the clock's eight digits.
//
// The digits are split into a four digit main group in the middle, where the time goes, and two
// digit groups on each side.  The decimal points of the middle two digits form the colon.
package face

import (
	"errors"
	"fmt"

	"github.com/jrockway/desk-clock/control/sevenseg"
)

// Digits is the number of digits on the clock.
const Digits = 8

// Group is a run of adjacent digits.
type Group int

const (
	Whole Group = iota
	Side1
	Main
	Side2
)

var groups = [...]struct{ offset, size int }{
	Whole: {0, Digits},
	Side1: {0, 2},
	Main:  {2, 4},
	Side2: {6, 2},
}

var colonDigits = [2]int{3, 4}

func (g Group) bounds() (offset, size int) {
	if g < 0 || int(g) >= len(groups) {
		return 0, 0
	}
	return groups[g].offset, groups[g].size
}

func (g Group) String() string {
	switch g {
	case Whole:
		return "whole"
	case Side1:
		return "side1"
	case Main:
		return "main"
	case Side2:
		return "side2"
	}
	return fmt.Sprintf("Group(%d)", int(g))
}

// ErrDoesNotFit is returned when a number or text has more digits than its group.
var ErrDoesNotFit = errors.New("does not fit")

// Face is the content of every digit.  The zero value is blank.
type Face struct {
	data  [Digits]uint8
	colon bool
}

// Frame returns the segment bitmask of every digit, with the colon applied.
func (f *Face) Frame() [Digits]uint8 {
	frame := f.data
	for _, i := range colonDigits {
		if f.colon {
			frame[i] |= sevenseg.DP
		} else {
			frame[i] &^= sevenseg.DP
		}
	}
	return frame
}

// SetColon turns the colon on or off.
func (f *Face) SetColon(on bool) { f.colon = on }

// ShowNumber writes n right-aligned into g.  Leading zeros are shown if pad is set and blank
// otherwise; the last digit is always shown.  If n has more digits than g, g is left untouched
// and ErrDoesNotFit is returned.
func (f *Face) ShowNumber(g Group, n uint, pad bool) error {
	offset, size := g.bounds()
	orig := n
	var digits [Digits]uint8
	for i := size - 1; i >= 0; i-- {
		d := n % 10
		if i == size-1 || n != 0 || pad {
			digits[i] = sevenseg.Digit(int(d))
		}
		n /= 10
	}
	if n > 0 {
		return fmt.Errorf("show %v in %v: %w", orig, g, ErrDoesNotFit)
	}
	copy(f.data[offset:offset+size], digits[:size])
	return nil
}

// ShowOrdinal writes n like ShowNumber, followed by a decimal point on the last digit of g, the
// way dates are written ("24.12.").
func (f *Face) ShowOrdinal(g Group, n uint, pad bool) error {
	if err := f.ShowNumber(g, n, pad); err != nil {
		return err
	}
	offset, size := g.bounds()
	if size > 0 {
		f.data[offset+size-1] |= sevenseg.DP
	}
	return nil
}

// ShowText writes text left-aligned into g and blanks the rest of the group.  Letters without a
// glyph are shown as a dash.
func (f *Face) ShowText(g Group, text string) error {
	offset, size := g.bounds()
	runes := []rune(text)
	if len(runes) > size {
		return fmt.Errorf("show %q in %v: %w", text, g, ErrDoesNotFit)
	}
	for i := 0; i < size; i++ {
		f.data[offset+i] = sevenseg.Blank
		if i < len(runes) {
			f.data[offset+i] = sevenseg.Letter(runes[i])
		}
	}
	return nil
}

// Hide blanks every digit of g.
func (f *Face) Hide(g Group) {
	offset, size := g.bounds()
	for i := offset; i < offset+size; i++ {
		f.data[i] = sevenseg.Blank
	}
}

// ErrorFrame is shown when the clock stops because of a fault.
func ErrorFrame() [Digits]uint8 {
	var f Face
	_ = f.ShowText(Main, "Erro")
	return f.Frame()
}
