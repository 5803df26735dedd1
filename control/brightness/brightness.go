// Package brightness picks how bright each digit of the clock is, by time of day or by hand.
//
// The clock has two colors of digit that need different duty values to look equally bright, so a
// brightness percentage is looked up in one curve per color and the result assigned to the digits
// of that color.
package brightness

import (
	"github.com/jrockway/desk-clock/control/interpolate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Digits is the number of digits brightness is computed for.
	Digits = 8

	Min  = 1
	Max  = 100
	Step = 10
)

// Zone is a group of digits with the same LED color.
type Zone int

const (
	// Yellow is the two digits on each side of the display.
	Yellow Zone = iota
	// Blue is the four digits in the middle.
	Blue
)

// ZoneOf returns the color of the digit at index i.
func ZoneOf(i int) Zone {
	if i >= 2 && i < 6 {
		return Blue
	}
	return Yellow
}

type curve = interpolate.Table[uint16, uint16]

type point = interpolate.Point[uint16, uint16]

// DefaultCurves returns the duty curves of each zone, keyed by brightness percentage.
func DefaultCurves() map[Zone]*curve {
	return map[Zone]*curve{
		Yellow: interpolate.New(
			point{Position: 0, Value: 0xFFFF - 11980},
			point{Position: 1, Value: 0xFFFF - 11970},
			point{Position: 10, Value: 0xFFFF - 11600},
			point{Position: 20, Value: 0xFFFF - 11200},
			point{Position: 50, Value: 0xFFFF - 9900},
			point{Position: 100, Value: 0xFFFF - 2500},
		),
		Blue: interpolate.New(
			point{Position: 0, Value: 0xFFFF - 12000},
			point{Position: 1, Value: 0xFFFF - 11990},
			point{Position: 10, Value: 0xFFFF - 11700},
			point{Position: 20, Value: 0xFFFF - 11300},
			point{Position: 50, Value: 0xFFFF - 10000},
			point{Position: 100, Value: 0xFFFF - 3000},
		),
	}
}

// DefaultDayCurve returns the brightness percentage by minute of the day: dark at night,
// brightest around noon.
func DefaultDayCurve() *curve {
	return interpolate.New(
		point{Position: 0, Value: 1},
		point{Position: 6 * 60, Value: 1},
		point{Position: 8 * 60, Value: 50},
		point{Position: 12 * 60, Value: 100},
		point{Position: 18 * 60, Value: 90},
		point{Position: 20 * 60, Value: 70},
		point{Position: 21 * 60, Value: 30},
		point{Position: 22 * 60, Value: 20},
		point{Position: 23 * 60, Value: 1},
		point{Position: 24 * 60, Value: 1},
	)
}

var brightnessGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "brightness_percent",
	Help: "current display brightness, in percent",
})

// Scheduler tracks the brightness of the clock.  It is not safe for concurrent use.
type Scheduler struct {
	// HoldManual keeps a brightness set by hand until the day curve's value next changes.  When
	// it is false, every Update puts the brightness back on the curve.
	HoldManual bool

	zones map[Zone]*curve
	day   *curve

	current int
	target  int // the day curve's brightness when Update last ran; only consulted with HoldManual
	digits  [Digits]uint16
}

// New returns a Scheduler at full brightness using the default curves.
func New() *Scheduler {
	return NewWithCurves(DefaultCurves(), DefaultDayCurve())
}

// NewWithCurves returns a Scheduler at full brightness.  zones must have a curve for every Zone
// covering [Min, Max]; day must cover [0, 1439].
func NewWithCurves(zones map[Zone]*curve, day *curve) *Scheduler {
	s := &Scheduler{zones: zones, day: day}
	s.SetBrightness(Max)
	return s
}

// Brightness returns the current brightness percentage.
func (s *Scheduler) Brightness() int { return s.current }

// Digits returns the brightness of every digit, for Display.SetBrightness.
func (s *Scheduler) Digits() [Digits]uint16 { return s.digits }

// SetBrightness clamps percent to [Min, Max] and recomputes the brightness of every digit.
func (s *Scheduler) SetBrightness(percent int) {
	if percent < Min {
		percent = Min
	}
	if percent > Max {
		percent = Max
	}
	s.current = percent
	brightnessGauge.Set(float64(percent))

	var values [Blue + 1]uint16
	for zone := range values {
		if c, ok := s.zones[Zone(zone)]; ok {
			// A curve that does not cover the percentage leaves its digits fully lit.
			if v, ok := c.Interpolate(uint16(percent)); ok {
				values[zone] = v
				continue
			}
		}
		values[zone] = 0xFFFF
	}
	for i := range s.digits {
		s.digits[i] = values[ZoneOf(i)]
	}
}

// Up raises the brightness by one Step.
func (s *Scheduler) Up() { s.SetBrightness(s.current + Step) }

// Down lowers the brightness by one Step.
func (s *Scheduler) Down() { s.SetBrightness(s.current - Step) }

// Target returns the brightness the day curve wants minute minutes after midnight.  ok is false if
// the curve does not cover that time.
func (s *Scheduler) Target(minute int) (percent int, ok bool) {
	if minute < 0 {
		return 0, false
	}
	v, ok := s.day.Interpolate(uint16(minute))
	return int(v), ok
}

// Update sets the brightness to the day curve's value minute minutes after midnight, if that
// differs from the current brightness.  It reports whether the brightness changed.
func (s *Scheduler) Update(minute int) bool {
	target, ok := s.Target(minute)
	if !ok {
		return false
	}
	last := s.target
	s.target = target
	if s.HoldManual && target == last {
		return false
	}
	if target == s.current {
		return false
	}
	s.SetBrightness(target)
	return true
}

// Display is where Apply writes the digits' brightness.  *display.Display satisfies it.
type Display interface {
	SetBrightness(b []uint16)
}

// Apply writes the brightness of every digit to d.
func (s *Scheduler) Apply(d Display) {
	digits := s.digits
	d.SetBrightness(digits[:])
}
