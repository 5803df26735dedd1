package brightness

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSetBrightness(t *testing.T) {
	testData := []struct {
		in           int
		want         int
		yellow, blue uint16
	}{
		{100, 100, 0xFFFF - 2500, 0xFFFF - 3000},
		{150, 100, 0xFFFF - 2500, 0xFFFF - 3000},
		{1, 1, 0xFFFF - 11970, 0xFFFF - 11990},
		{0, 1, 0xFFFF - 11970, 0xFFFF - 11990},
		{-20, 1, 0xFFFF - 11970, 0xFFFF - 11990},
		{50, 50, 0xFFFF - 9900, 0xFFFF - 10000},
		{75, 75, 0xFFFF - 6200, 0xFFFF - 6500},
	}
	for _, test := range testData {
		t.Run(fmt.Sprint(test.in), func(t *testing.T) {
			s := New()
			s.SetBrightness(test.in)
			if got, want := s.Brightness(), test.want; got != want {
				t.Errorf("brightness:\n  got: %v\n want: %v", got, want)
			}
			if got, want := testutil.ToFloat64(brightnessGauge), float64(test.want); got != want {
				t.Errorf("gauge:\n  got: %v\n want: %v", got, want)
			}
			want := [Digits]uint16{test.yellow, test.yellow, test.blue, test.blue, test.blue, test.blue, test.yellow, test.yellow}
			if got := s.Digits(); got != want {
				t.Errorf("digits:\n  got: %v\n want: %v", got, want)
			}
		})
	}
}

func TestZoneOf(t *testing.T) {
	want := []Zone{Yellow, Yellow, Blue, Blue, Blue, Blue, Yellow, Yellow}
	for i, w := range want {
		if got := ZoneOf(i); got != w {
			t.Errorf("zone of %d:\n  got: %v\n want: %v", i, got, w)
		}
	}
}

func TestStep(t *testing.T) {
	s := New()
	s.Down()
	if got, want := s.Brightness(), 90; got != want {
		t.Errorf("after down:\n  got: %v\n want: %v", got, want)
	}
	for i := 0; i < 20; i++ {
		s.Down()
	}
	if got, want := s.Brightness(), Min; got != want {
		t.Errorf("after many downs:\n  got: %v\n want: %v", got, want)
	}
	s.Up()
	if got, want := s.Brightness(), 11; got != want {
		t.Errorf("after up:\n  got: %v\n want: %v", got, want)
	}
	for i := 0; i < 20; i++ {
		s.Up()
	}
	if got, want := s.Brightness(), Max; got != want {
		t.Errorf("after many ups:\n  got: %v\n want: %v", got, want)
	}
}

func TestDayCurve(t *testing.T) {
	s := New()
	if got, ok := s.Target(0); !ok || got != 1 {
		t.Errorf("midnight:\n  got: %v (%v)\n want: 1", got, ok)
	}
	if got, ok := s.Target(12 * 60); !ok || got != 100 {
		t.Errorf("noon:\n  got: %v (%v)\n want: 100", got, ok)
	}
	last := 0
	for m := 0; m <= 720; m++ {
		got, ok := s.Target(m)
		if !ok {
			t.Fatalf("minute %d not covered", m)
		}
		if got < last {
			t.Errorf("brightness decreased at minute %d: %d -> %d", m, last, got)
		}
		last = got
	}
	for m := 0; m < 24*60; m++ {
		if got, ok := s.Target(m); !ok || got < Min || got > Max {
			t.Errorf("minute %d:\n  got: %v (%v)\n want: in [%d, %d]", m, got, ok, Min, Max)
		}
	}
}

func TestUpdate(t *testing.T) {
	s := New()
	if !s.Update(0) {
		t.Error("update at midnight should dim the display")
	}
	if got, want := s.Brightness(), 1; got != want {
		t.Errorf("midnight:\n  got: %v\n want: %v", got, want)
	}
	if s.Update(1) {
		t.Error("update with an unchanged target should not change anything")
	}

	// A manual change is put back on the curve by the next update.
	s.Up()
	if got, want := s.Brightness(), 11; got != want {
		t.Errorf("after manual change:\n  got: %v\n want: %v", got, want)
	}
	if !s.Update(3*60 + 1) {
		t.Error("update should override a manual change")
	}
	if got, want := s.Brightness(), 1; got != want {
		t.Errorf("after update:\n  got: %v\n want: %v", got, want)
	}

	if !s.Update(12 * 60) {
		t.Error("update at noon should change the brightness")
	}
	if got, want := s.Brightness(), 100; got != want {
		t.Errorf("noon:\n  got: %v\n want: %v", got, want)
	}
	if got, want := s.Digits()[0], uint16(0xFFFF-2500); got != want {
		t.Errorf("yellow digit at noon:\n  got: %v\n want: %v", got, want)
	}
}

func TestUpdateHoldManual(t *testing.T) {
	s := New()
	s.HoldManual = true
	s.Update(3 * 60)
	s.Up()
	if s.Update(3*60 + 1) {
		t.Error("update overrode a manual change before the curve moved")
	}
	if got, want := s.Brightness(), 11; got != want {
		t.Errorf("held manual change:\n  got: %v\n want: %v", got, want)
	}

	// Once the curve moves, it wins again.
	if !s.Update(8 * 60) {
		t.Error("update at 08:00 should change the brightness")
	}
	if got, want := s.Brightness(), 50; got != want {
		t.Errorf("08:00:\n  got: %v\n want: %v", got, want)
	}
}

func TestUpdateUncovered(t *testing.T) {
	s := New()
	if s.Update(25 * 60) {
		t.Error("a time outside the day curve should leave the brightness alone")
	}
	if got, want := s.Brightness(), Max; got != want {
		t.Errorf("brightness:\n  got: %v\n want: %v", got, want)
	}
}

type fakeDisplay struct{ b []uint16 }

func (d *fakeDisplay) SetBrightness(b []uint16) { d.b = append([]uint16(nil), b...) }

func TestApply(t *testing.T) {
	s := New()
	s.SetBrightness(50)
	d := new(fakeDisplay)
	s.Apply(d)
	want := s.Digits()
	if got := d.b; fmt.Sprint(got) != fmt.Sprint(want[:]) {
		t.Errorf("applied brightness:\n  got: %v\n want: %v", got, want)
	}
}
