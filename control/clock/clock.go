// Package clock runs the desk clock: it counts seconds into a calendar, draws the calendar on the
// multiplexed display, and follows the brightness schedule and the buttons.
//
// Two loops share the clock's state, like two interrupt handlers would: the seconds loop advances
// the calendar once a second, and the refresh loop steps the display multiplexer as often as its
// countdown allows.  The calendar is only touched through Clock.with, which holds the clock's lock
// for a handful of field reads and writes.  The display has its own lock, held by withDisplay, so
// that pin writes never hold up the seconds loop; rendering and brightness math happen outside both.
package clock

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/jrockway/desk-clock/control/brightness"
	"github.com/jrockway/desk-clock/control/button"
	"github.com/jrockway/desk-clock/control/calendar"
	"github.com/jrockway/desk-clock/control/display"
	"github.com/jrockway/desk-clock/control/face"
	"github.com/jrockway/desk-clock/control/screen"
	"github.com/jrockway/desk-clock/control/status"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/net/trace"
)

var (
	missedTicksCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "missed_ticks",
		Help: "count of ticks that were generated but never received by anything",
	})

	tickDelayMetric = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tick_delay",
		Help:    "amount of time between seconds tick and when it is sent to the channel, in nanoseconds",
		Buckets: prometheus.ExponentialBuckets(1000, 10, 20),
	})

	resyncCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "calendar_resyncs",
		Help: "count of seconds where the calendar was re-derived from the host clock instead of advanced by one",
	})
)

// NudgeSeconds is how far the NudgeTime button moves the clock forward.
const NudgeSeconds = 2

// Tick sends the current time to the provided channel at the exact instant that the seconds change.
// An absent listener will not receive an outdated time; the tick will be skipped and the
// missedTicksCounter incremented.  Cancelling the context causes this to return immediately.
func Tick(ctx context.Context, ch chan time.Time) error {
	for {
		nextSecond := time.Now().Add(time.Second).Truncate(time.Second)

		// Wait until the next second starts.
		select {
		case <-time.After(time.Until(nextSecond)):
		case <-ctx.Done():
			return fmt.Errorf("waiting for next second: %w", ctx.Err())
		}

		// Send the time to the channel.
		select {
		case <-time.After(500 * time.Millisecond):
			missedTicksCounter.Inc()
		case <-ctx.Done():
			return fmt.Errorf("waiting to send tick: %w", ctx.Err())
		case ch <- nextSecond:
			tickDelayMetric.Observe(float64(time.Since(nextSecond).Nanoseconds()))
		}
	}
}

// State is everything both loops touch.  It is only reachable through Clock.with.
type State struct {
	Calendar calendar.Calendar

	// Offset is added to the host clock's ticks; the NudgeTime button moves it.
	Offset int64
}

// Config configures a Clock.
type Config struct {
	// BaseYear is the first year the calendar can show.
	BaseYear int
	// Display is the display to drive.
	Display *display.Display
	// Countdown is the display's countdown.  If it has a Remaining method, the refresh loop
	// sleeps that long instead of spinning while the countdown runs.
	Countdown display.Countdown
	// Brightness is the brightness schedule; a default one is used if nil.
	Brightness *brightness.Scheduler
	// View is the view shown at startup.
	View face.View
	// Screen, if not nil, receives every new frame for previewing.
	Screen *screen.Screen
	// Status, if not nil, receives a snapshot of the clock every time the display changes.
	Status *status.Page
	// Now returns the host's wall-clock time; time.Now if nil.
	Now func() time.Time
}

// Clock is a desk clock.
type Clock struct {
	// Presses receives button actions.  Run handles them between display steps.
	Presses chan button.Action

	mu    sync.Mutex
	state State // must hold mu to read or write.

	displayMu sync.Mutex
	display   *display.Display // must hold displayMu to use.

	baseYear   int
	countdown  display.Countdown
	brightness *brightness.Scheduler // only used by the refresh loop.
	view       face.View             // only used by the refresh loop.
	screen     *screen.Screen
	status     *status.Page

	lastFrame      [face.Digits]uint8
	lastBrightness [brightness.Digits]uint16
	lastTicks      int64
}

// New returns a Clock set to the host's current time.
func New(cfg Config) (*Clock, error) {
	if cfg.Display == nil {
		return nil, errors.New("no display")
	}
	if got, want := cfg.Display.Len(), face.Digits; got != want {
		return nil, fmt.Errorf("display has %d digits; want %d", got, want)
	}
	if cfg.Brightness == nil {
		cfg.Brightness = brightness.New()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	c := &Clock{
		Presses:    make(chan button.Action),
		baseYear:   cfg.BaseYear,
		countdown:  cfg.Countdown,
		brightness: cfg.Brightness,
		view:       cfg.View,
		screen:     cfg.Screen,
		status:     cfg.Status,
		lastTicks:  -1,
		display:    cfg.Display,
	}
	c.state = State{
		Calendar: calendar.FromTime(cfg.BaseYear, cfg.Now()),
	}
	return c, nil
}

// with calls f with the shared state while holding the clock's lock.  f must not call with.
func (c *Clock) with(f func(s *State) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return f(&c.state)
}

// withDisplay calls f with the display while holding the display's lock.
func (c *Clock) withDisplay(f func(d *display.Display) error) error {
	c.displayMu.Lock()
	defer c.displayMu.Unlock()
	return f(c.display)
}

// Calendar returns a copy of the calendar.
func (c *Clock) Calendar() calendar.Calendar {
	var cal calendar.Calendar
	c.with(func(s *State) error {
		cal = s.Calendar
		return nil
	})
	return cal
}

// hostTicks returns the calendar ticks of the host time t.
func (c *Clock) hostTicks(t time.Time) int64 {
	return calendar.FromTime(c.baseYear, t).ToTicks()
}

// second handles the start of a new second at host time t.  The calendar normally advances by
// exactly one second; if that would not land on the host's time (a tick was missed, or the host
// clock was stepped), the calendar is re-derived from the host time instead.  It reports whether it
// had to re-derive.
func (c *Clock) second(t time.Time) bool {
	host := c.hostTicks(t)
	var resynced bool
	c.with(func(s *State) error {
		if s.Calendar.IsFrozen() {
			return nil
		}
		want := host + s.Offset
		if s.Calendar.ToTicks()+1 == want {
			s.Calendar.SecondElapsed()
			return nil
		}
		s.Calendar = calendar.FromTicks(c.baseYear, want)
		resynced = true
		return nil
	})
	if resynced {
		resyncCounter.Inc()
	}
	return resynced
}

// runSeconds advances the calendar every second until the context is cancelled.
func (c *Clock) runSeconds(ctx context.Context) error {
	l := trace.NewEventLog("clock", "seconds")
	defer l.Finish()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	tickErrCh := make(chan error, 1)
	tickCh := make(chan time.Time)
	go func() {
		tickErrCh <- Tick(ctx, tickCh)
	}()
	for {
		select {
		case t := <-tickCh:
			if c.second(t) {
				l.Printf("calendar resynced to host time %s", t.Format(time.RFC3339))
			}
		case err := <-tickErrCh:
			l.Errorf("ticker: %v", err)
			return fmt.Errorf("ticker: %w", err)
		}
	}
}

// handle carries out a button action.
func (c *Clock) handle(l trace.EventLog, a button.Action) {
	switch a {
	case button.SwitchView:
		c.view = c.view.Next()
		l.Printf("view: %v", c.view)
	case button.NudgeTime:
		var now calendar.Calendar
		c.with(func(s *State) error {
			next := calendar.FromTicks(c.baseYear, s.Calendar.ToTicks()+NudgeSeconds)
			if s.Calendar.IsFrozen() {
				next.Freeze()
			}
			s.Calendar = next
			s.Offset += NudgeSeconds
			now = s.Calendar
			return nil
		})
		l.Printf("time nudged to %v", now)
	case button.BrightnessDown:
		c.brightness.Down()
		l.Printf("brightness: %d%%", c.brightness.Brightness())
	case button.BrightnessUp:
		c.brightness.Up()
		l.Printf("brightness: %d%%", c.brightness.Brightness())
	default:
		l.Errorf("unknown button action %v", a)
	}
}

// refresh takes one display step, then redraws the framebuffer and brightness for the next one.
// It returns display.ErrNotReady if the display's countdown is still running.
func (c *Clock) refresh(l trace.EventLog) error {
	if err := c.withDisplay(func(d *display.Display) error { return d.Update() }); err != nil {
		return err
	}
	var now calendar.Calendar
	var offset int64
	c.with(func(s *State) error {
		now, offset = s.Calendar, s.Offset
		return nil
	})

	f, err := face.Render(c.view, now)
	if err != nil {
		return fmt.Errorf("render %v: %w", c.view, err)
	}
	frame := f.Frame()
	if c.brightness.Update(now.MinuteOfDay()) {
		l.Printf("scheduled brightness: %d%%", c.brightness.Brightness())
	}
	b := c.brightness.Digits()

	c.withDisplay(func(d *display.Display) error {
		d.SetData(frame[:])
		c.brightness.Apply(d)
		return nil
	})

	changed := frame != c.lastFrame || b != c.lastBrightness
	if c.screen != nil && changed {
		c.screen.Update(frame, b)
	}
	ticks := now.ToTicks()
	if c.status != nil && (changed || ticks != c.lastTicks) {
		c.status.Update(status.Status{
			Calendar:   now,
			Offset:     offset,
			View:       c.view,
			Brightness: c.brightness.Brightness(),
			Frame:      frame,
			Levels:     b,
		})
	}
	c.lastFrame, c.lastBrightness, c.lastTicks = frame, b, ticks
	return nil
}

// wait waits for the display's countdown to run out.
func (c *Clock) wait() {
	if r, ok := c.countdown.(interface{ Remaining() time.Duration }); ok {
		if d := r.Remaining(); d > 0 {
			time.Sleep(d)
			return
		}
	}
	runtime.Gosched()
}

// Run runs the clock until the context is cancelled or the display fails.
func (c *Clock) Run(ctx context.Context) error {
	l := trace.NewEventLog("clock", "refresh")
	defer l.Finish()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	secondsErrCh := make(chan error, 1)
	go func() {
		secondsErrCh <- c.runSeconds(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("refresh: %w", ctx.Err())
		case err := <-secondsErrCh:
			return fmt.Errorf("seconds: %w", err)
		case a := <-c.Presses:
			c.handle(l, a)
		default:
		}
		err := c.refresh(l)
		switch {
		case errors.Is(err, display.ErrNotReady):
			c.wait()
		case err != nil:
			l.Errorf("refresh: %v", err)
			return fmt.Errorf("refresh: %w", err)
		}
	}
}

// ShowError replaces whatever the display shows with the error glyph and keeps multiplexing it
// until the context is cancelled.  Use it after Run fails because of anything but the display.
func (c *Clock) ShowError(ctx context.Context) error {
	frame := face.ErrorFrame()
	c.withDisplay(func(d *display.Display) error {
		d.SetData(frame[:])
		return nil
	})
	if c.screen != nil {
		c.screen.Update(frame, c.brightness.Digits())
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		err := c.withDisplay(func(d *display.Display) error { return d.Update() })
		switch {
		case errors.Is(err, display.ErrNotReady):
			c.wait()
		case err != nil:
			return fmt.Errorf("show error: %w", err)
		}
	}
}

// Blank turns every digit off.  Call it after Run returns.
func (c *Clock) Blank() error {
	return c.withDisplay(func(d *display.Display) error { return d.Blank() })
}
