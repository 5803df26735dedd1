package face

import (
	"errors"
	"testing"

	"github.com/jrockway/desk-clock/control/calendar"
	"github.com/jrockway/desk-clock/control/sevenseg"
)

func digits(s string) [Digits]uint8 {
	// s is 8 characters, one per digit; '.' after a character sets that digit's decimal point.
	var frame [Digits]uint8
	i := -1
	for _, r := range s {
		if r == '.' {
			frame[i] |= sevenseg.DP
			continue
		}
		i++
		frame[i] = sevenseg.Letter(r)
	}
	return frame
}

func TestShowNumber(t *testing.T) {
	testData := []struct {
		name  string
		group Group
		n     uint
		pad   bool
		want  string
		err   error
	}{
		{"main padded", Main, 905, true, "  0905  ", nil},
		{"main unpadded", Main, 905, false, "   905  ", nil},
		{"zero unpadded", Main, 0, false, "     0  ", nil},
		{"side1", Side1, 7, true, "07      ", nil},
		{"side2", Side2, 42, false, "      42", nil},
		{"whole", Whole, 12345678, false, "12345678", nil},
		{"too big", Side1, 123, true, "        ", ErrDoesNotFit},
	}
	for _, test := range testData {
		t.Run(test.name, func(t *testing.T) {
			var f Face
			err := f.ShowNumber(test.group, test.n, test.pad)
			if !errors.Is(err, test.err) {
				t.Fatalf("error:\n  got: %v\n want: %v", err, test.err)
			}
			if got, want := f.Frame(), digits(test.want); got != want {
				t.Errorf("frame:\n  got: %08b\n want: %08b", got, want)
			}
		})
	}
}

func TestShowOrdinalAndColon(t *testing.T) {
	var f Face
	if err := f.ShowOrdinal(Side1, 24, true); err != nil {
		t.Fatal(err)
	}
	if err := f.ShowOrdinal(Side2, 3, true); err != nil {
		t.Fatal(err)
	}
	f.SetColon(true)
	if got, want := f.Frame(), digits("24.  . . 03."); got != want {
		t.Errorf("frame:\n  got: %08b\n want: %08b", got, want)
	}
	f.SetColon(false)
	if got, want := f.Frame(), digits("24.    03."); got != want {
		t.Errorf("frame without colon:\n  got: %08b\n want: %08b", got, want)
	}
}

func TestShowText(t *testing.T) {
	var f Face
	if err := f.ShowNumber(Whole, 88888888, true); err != nil {
		t.Fatal(err)
	}
	if err := f.ShowText(Main, "Err"); err != nil {
		t.Fatal(err)
	}
	if got, want := f.Frame(), digits("88Err 88"); got != want {
		t.Errorf("frame:\n  got: %08b\n want: %08b", got, want)
	}
	if err := f.ShowText(Side1, "Err"); !errors.Is(err, ErrDoesNotFit) {
		t.Errorf("long text:\n  got: %v\n want: %v", err, ErrDoesNotFit)
	}
	f.Hide(Side2)
	if got, want := f.Frame(), digits("88Err   "); got != want {
		t.Errorf("frame after hide:\n  got: %08b\n want: %08b", got, want)
	}
}

func TestErrorFrame(t *testing.T) {
	if got, want := ErrorFrame(), digits("  Erro  "); got != want {
		t.Errorf("error frame:\n  got: %08b\n want: %08b", got, want)
	}
}

func TestRender(t *testing.T) {
	c := calendar.New(2023, 9, 5, 7, 24, 12, 2023)
	testData := []struct {
		view View
		want string
	}{
		{ClockView, "  0905  "},
		{ClockSecondsView, "  090507"},
		{ClockDateView, "24.090512."},
		{DateView, "24.202312."},
	}
	for _, test := range testData {
		t.Run(test.view.String(), func(t *testing.T) {
			f, err := Render(test.view, c)
			if err != nil {
				t.Fatal(err)
			}
			if got, want := f.Frame(), digits(test.want); got != want {
				t.Errorf("frame:\n  got: %08b\n want: %08b", got, want)
			}
		})
	}

	even := calendar.New(2023, 9, 5, 8, 24, 12, 2023)
	f, err := Render(ClockView, even)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := f.Frame(), digits("  09.0.5  "); got != want {
		t.Errorf("frame on an even second:\n  got: %08b\n want: %08b", got, want)
	}

	if _, err := Render(numViews, c); err == nil {
		t.Error("expected an error for an unknown view")
	}
}

func TestViewFromIndex(t *testing.T) {
	for i := 0; i < int(numViews); i++ {
		v, err := ViewFromIndex(i)
		if err != nil {
			t.Errorf("view %d: %v", i, err)
		}
		if got, want := v, View(i); got != want {
			t.Errorf("view %d:\n  got: %v\n want: %v", i, got, want)
		}
	}
	for _, i := range []int{-1, int(numViews)} {
		if _, err := ViewFromIndex(i); err == nil {
			t.Errorf("view %d: expected an error", i)
		}
	}
	if got, want := DateView.Next(), ClockView; got != want {
		t.Errorf("next after date:\n  got: %v\n want: %v", got, want)
	}
}
