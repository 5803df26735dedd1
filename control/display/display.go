// Package display multiplexes a row of 7-segment digits that share their segment lines.
//
// Only one digit is lit at a time.  Each step of the multiplexer either blanks every digit, so that
// the transistor of the previous digit has closed before the segment lines change, or shows the
// next digit for a short time.  Persistence of vision does the rest.
package display

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"periph.io/x/conn/v3/gpio"
)

const (
	// DigitOnTime is how long each digit is shown for.  Every digit gets this long in turn, so it
	// has to be short enough to not flicker and long enough for the transistor and LED to turn on.
	DigitOnTime = 1490 * time.Microsecond

	// DigitsOffTime is how long every digit is off between two shown digits.
	DigitsOffTime = 500 * time.Microsecond

	// Segments is the number of segment lines: a through g and the decimal point.
	Segments = 8

	// MaxBrightness is the brightness of a fully lit digit.
	MaxBrightness = 0xFFFF
)

// ErrNotReady is returned by Update when the countdown has not expired yet.  Poll again later.
var ErrNotReady = errors.New("countdown not expired")

var (
	stepsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "display_steps",
		Help: "multiplexer steps taken, by phase",
	}, []string{"phase"})
	showSteps  = stepsCounter.WithLabelValues("show")
	blankSteps = stepsCounter.WithLabelValues("blank")

	notReadyCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "display_countdown_not_ready",
		Help: "count of multiplexer polls that found the countdown still running",
	})
)

type state struct {
	digit    int
	nextShow bool // if true the next step shows digit; otherwise it blanks every digit
}

func (s *state) step(digits int) {
	s.nextShow = !s.nextShow
	if s.nextShow {
		s.digit = (s.digit + 1) % digits
	}
}

// Options configure a Display.
type Options struct {
	// SegmentsActiveLow is set when a segment lights up while its line is low.
	SegmentsActiveLow bool
}

// Display is a multiplexed row of 7-segment digits.  It is not safe for concurrent use.
type Display struct {
	segments   [Segments]Segment
	digits     []Digit
	countdown  Countdown
	activeLow  bool
	data       []uint8
	brightness []uint16

	state state
}

// New returns a Display driving the provided lines and turns every digit off.  Segment i of a
// digit's bitmask is bit 7-i, so bit 7 is segment a and bit 0 is the decimal point.  Every digit
// starts at full brightness and blank.
func New(segments [Segments]Segment, digits []Digit, countdown Countdown, opts Options) (*Display, error) {
	if len(digits) == 0 {
		return nil, errors.New("no digits")
	}
	d := &Display{
		segments:   segments,
		digits:     digits,
		countdown:  countdown,
		activeLow:  opts.SegmentsActiveLow,
		data:       make([]uint8, len(digits)),
		brightness: make([]uint16, len(digits)),
		state:      state{digit: 0, nextShow: true},
	}
	for i := range d.brightness {
		d.brightness[i] = MaxBrightness
	}
	if err := d.Blank(); err != nil {
		return nil, fmt.Errorf("turn digits off: %w", err)
	}
	return d, nil
}

// Len returns the number of digits.
func (d *Display) Len() int { return len(d.digits) }

// Data returns a copy of the segment bitmask of every digit.
func (d *Display) Data() []uint8 { return append([]uint8(nil), d.data...) }

// SetData replaces the segment bitmasks, starting at the first digit.  Extra entries are ignored.
func (d *Display) SetData(data []uint8) { copy(d.data, data) }

// SetDigit sets the segment bitmask of one digit.  Indices out of range are ignored.
func (d *Display) SetDigit(i int, mask uint8) {
	if i < 0 || i >= len(d.data) {
		return
	}
	d.data[i] = mask
}

// Brightness returns a copy of the brightness of every digit.
func (d *Display) Brightness() []uint16 { return append([]uint16(nil), d.brightness...) }

// SetBrightness replaces the brightness of every digit, starting at the first.  A brightness is
// written to the digit line as the inverted duty DutyOff-brightness, so 0xFFFF is the brightest.
func (d *Display) SetBrightness(b []uint16) { copy(d.brightness, b) }

// SetDigitBrightness sets the brightness of one digit.  Indices out of range are ignored.
func (d *Display) SetDigitBrightness(i int, b uint16) {
	if i < 0 || i >= len(d.brightness) {
		return
	}
	d.brightness[i] = b
}

// next returns the step the next successful Update will take: show reports whether it will show
// a digit (rather than blank them all), and digit is the digit it will show.
func (d *Display) next() (show bool, digit int) { return d.state.nextShow, d.state.digit }

// Blank turns every digit off.  The next Update carries on with the sequence where it left off.
func (d *Display) Blank() error {
	for i, digit := range d.digits {
		if err := digit.SetDuty(DutyOff); err != nil {
			return fmt.Errorf("digit %d: %w", i, err)
		}
	}
	return nil
}

func (d *Display) segmentLevel(mask uint8, i int) gpio.Level {
	lit := mask&(1<<(Segments-1-i)) != 0
	return gpio.Level(lit != d.activeLow)
}

func (d *Display) show(i int) error {
	mask := d.data[i]
	for s, segment := range d.segments {
		if err := segment.Out(d.segmentLevel(mask, s)); err != nil {
			return fmt.Errorf("segment %d: %w", s, err)
		}
	}
	if err := d.digits[i].SetDuty(DutyOff - d.brightness[i]); err != nil {
		return fmt.Errorf("digit %d: %w", i, err)
	}
	return nil
}

// Update takes one multiplexer step if the countdown has expired, and returns ErrNotReady
// otherwise.  It never blocks.  Steps alternate between blanking every digit and showing the next
// digit, starting with showing digit 0.
func (d *Display) Update() error {
	if !d.countdown.Poll() {
		notReadyCounter.Inc()
		return ErrNotReady
	}
	show, digit := d.next()

	if err := d.Blank(); err != nil {
		return fmt.Errorf("blank: %w", err)
	}
	if show {
		if err := d.show(digit); err != nil {
			return fmt.Errorf("show digit %d: %w", digit, err)
		}
		d.countdown.Start(DigitOnTime)
		showSteps.Inc()
	} else {
		d.countdown.Start(DigitsOffTime)
		blankSteps.Inc()
	}
	d.state.step(len(d.digits))
	return nil
}
