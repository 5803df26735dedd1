package interpolate

import (
	"fmt"
	"testing"
)

func TestInterpolate(t *testing.T) {
	table := New(Point[uint16, uint16]{0, 0xFFFF - 12000}, Point[uint16, uint16]{100, 0xFFFF - 3000})
	testData := []struct {
		position uint16
		want     uint16
		ok       bool
	}{
		{0, 53535, true},
		{50, 58035, true},
		{90, 61635, true},
		{100, 62535, true},
		{101, 0, false},
		{0xFFFF, 0, false},
	}
	for _, test := range testData {
		t.Run(fmt.Sprint(test.position), func(t *testing.T) {
			got, ok := table.Interpolate(test.position)
			if ok != test.ok {
				t.Fatalf("covered:\n  got: %v\n want: %v", ok, test.ok)
			}
			if want := test.want; got != want {
				t.Errorf("interpolate(%d):\n  got: %v\n want: %v", test.position, got, want)
			}
		})
	}
}

func TestInterpolateUnsorted(t *testing.T) {
	table := New(
		Point[uint16, uint8]{1440, 1},
		Point[uint16, uint8]{360, 1},
		Point[uint16, uint8]{720, 100},
		Point[uint16, uint8]{10, 1},
		Point[uint16, uint8]{1080, 90},
	)
	testData := []struct {
		position uint16
		want     uint8
		ok       bool
	}{
		{5, 0, false},
		{10, 1, true},
		{200, 1, true},
		{540, 50, true},  // 1 + 99*180/360 = 50.5
		{900, 95, true},  // 100 - 10*180/360
		{1079, 90, true}, // 90.03
		{1260, 45, true}, // 90 - 89*180/360 = 45.5
		{1440, 1, true},
		{1441, 0, false},
	}
	for _, test := range testData {
		t.Run(fmt.Sprint(test.position), func(t *testing.T) {
			got, ok := table.Interpolate(test.position)
			if ok != test.ok {
				t.Fatalf("covered:\n  got: %v\n want: %v", ok, test.ok)
			}
			if want := test.want; got != want {
				t.Errorf("interpolate(%d):\n  got: %v\n want: %v", test.position, got, want)
			}
		})
	}
}

func TestSinglePoint(t *testing.T) {
	table := New(Point[uint8, uint32]{7, 1234})
	if got, ok := table.Interpolate(7); !ok || got != 1234 {
		t.Errorf("interpolate at the only point:\n  got: %v, %v\n want: 1234, true", got, ok)
	}
	for _, p := range []uint8{0, 6, 8} {
		if _, ok := table.Interpolate(p); ok {
			t.Errorf("interpolate(%d) should not be covered", p)
		}
	}
}

func TestEmpty(t *testing.T) {
	table := New[uint16, uint16]()
	if _, ok := table.Interpolate(0); ok {
		t.Error("empty table should cover nothing")
	}
}

func TestCopiesPoints(t *testing.T) {
	points := []Point[uint16, uint16]{{0, 0}, {10, 100}}
	table := New(points...)
	points[1].Value = 0
	if got, _ := table.Interpolate(10); got != 100 {
		t.Errorf("table changed with its input slice:\n  got: %v\n want: 100", got)
	}
}
