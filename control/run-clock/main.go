package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jrockway/desk-clock/control/brightness"
	"github.com/jrockway/desk-clock/control/button"
	"github.com/jrockway/desk-clock/control/clock"
	"github.com/jrockway/desk-clock/control/display"
	"github.com/jrockway/desk-clock/control/face"
	"github.com/jrockway/desk-clock/control/screen"
	"github.com/jrockway/desk-clock/control/status"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "golang.org/x/net/trace"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

var (
	bind              = flag.String("bind", ":8080", "address to bind for debug/metrics server")
	baseYear          = flag.Int("base-year", 2023, "earliest year the clock can show")
	segmentPins       = flag.String("segments", "", "comma-separated gpio names of the segment lines a,b,c,d,e,f,g,dp; empty to run without a display")
	digitPins         = flag.String("digits", "", "comma-separated gpio names of the 8 digit lines, left to right")
	segmentsActiveLow = flag.Bool("segments-active-low", false, "segments light up while their line is low")
	buttonPins        = flag.String("buttons", "", "comma-separated gpio names of the switch-view, nudge-time, brightness-down and brightness-up buttons")
	buttonsActiveLow  = flag.Bool("buttons-active-low", true, "buttons pull their line low when pressed")
	pwmFrequency      = flag.String("pwm-frequency", "1kHz", "pwm frequency of the digit lines")
	initialView       = flag.Int("view", 0, "view to show at startup: 0 clock, 1 clock with seconds, 2 clock with date, 3 date")
	holdBrightness    = flag.Bool("hold-manual-brightness", false, "keep a brightness set with the buttons until the schedule next changes, instead of until the next refresh")
	errorTime         = flag.Duration("error-time", 5*time.Second, "how long to show the error glyph before exiting")
)

func splitPins(names string) []string {
	if names == "" {
		return nil
	}
	return strings.Split(names, ",")
}

func pinOut(name string) (gpio.PinOut, error) {
	p := gpioreg.ByName(strings.TrimSpace(name))
	if p == nil {
		return nil, fmt.Errorf("no gpio named %q", name)
	}
	return p, nil
}

// newDisplay returns the multiplexed display, or one wired to nothing if no pins were given.
func newDisplay(countdown display.Countdown) (*display.Display, error) {
	var segments [display.Segments]display.Segment
	digits := make([]display.Digit, face.Digits)
	segNames, digitNames := splitPins(*segmentPins), splitPins(*digitPins)
	if len(segNames) == 0 && len(digitNames) == 0 {
		log.Printf("no pins configured; running without a display")
		for i := range segments {
			segments[i] = display.Discard{}
		}
		for i := range digits {
			digits[i] = display.Discard{}
		}
		return display.New(segments, digits, countdown, display.Options{})
	}

	if got, want := len(segNames), display.Segments; got != want {
		return nil, fmt.Errorf("got %d segment pins; want %d", got, want)
	}
	if got, want := len(digitNames), face.Digits; got != want {
		return nil, fmt.Errorf("got %d digit pins; want %d", got, want)
	}
	var freq physic.Frequency
	if err := freq.Set(*pwmFrequency); err != nil {
		return nil, fmt.Errorf("parse pwm frequency %q: %w", *pwmFrequency, err)
	}
	for i, name := range segNames {
		p, err := pinOut(name)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		segments[i] = p
	}
	for i, name := range digitNames {
		p, err := pinOut(name)
		if err != nil {
			return nil, fmt.Errorf("digit %d: %w", i, err)
		}
		digits[i] = &display.PWMDigit{Pin: p, Frequency: freq}
	}
	return display.New(segments, digits, countdown, display.Options{SegmentsActiveLow: *segmentsActiveLow})
}

func newWatchers() ([]*button.Watcher, error) {
	names := splitPins(*buttonPins)
	if len(names) == 0 {
		return nil, nil
	}
	if got, want := len(names), button.NumActions; got != want {
		return nil, fmt.Errorf("got %d button pins; want %d", got, want)
	}
	var result []*button.Watcher
	for i, name := range names {
		a, err := button.ActionFromIndex(i)
		if err != nil {
			return nil, err
		}
		p := gpioreg.ByName(strings.TrimSpace(name))
		if p == nil {
			return nil, fmt.Errorf("button %v: no gpio named %q", a, name)
		}
		result = append(result, &button.Watcher{Pin: p, ActiveLow: *buttonsActiveLow, Action: a})
	}
	return result, nil
}

func main() {
	flag.Parse()
	if _, err := host.Init(); err != nil {
		log.Fatalf("init periph.io: %v", err)
	}

	view, err := face.ViewFromIndex(*initialView)
	if err != nil {
		log.Fatalf("-view: %v", err)
	}
	countdown := display.NewTimerCountdown(nil)
	disp, err := newDisplay(countdown)
	if err != nil {
		log.Fatalf("init display: %v", err)
	}
	watchers, err := newWatchers()
	if err != nil {
		log.Fatalf("init buttons: %v", err)
	}

	sched := brightness.New()
	sched.HoldManual = *holdBrightness

	preview := screen.New()
	page := new(status.Page)
	cl, err := clock.New(clock.Config{
		BaseYear:   *baseYear,
		Display:    disp,
		Countdown:  countdown,
		Brightness: sched,
		View:       view,
		Screen:     preview,
		Status:     page,
	})
	if err != nil {
		log.Fatalf("init clock: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	http.Handle("/", page)
	http.Handle("/display.png", preview)
	http.Handle("/metrics", promhttp.Handler())

	httpDoneCh := make(chan error)
	httpServer := http.Server{Addr: *bind}
	go func() {
		log.Printf("http server listening on %s", httpServer.Addr)
		err := httpServer.ListenAndServe()
		select {
		case httpDoneCh <- err:
		case <-ctx.Done():
		}
		close(httpDoneCh)
	}()

	for _, w := range watchers {
		w := w
		go func() {
			if err := w.Watch(ctx, cl.Presses); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("button %v: %v", w.Action, err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	loopDoneCh := make(chan error)
	go func() {
		err := cl.Run(ctx)
		select {
		case loopDoneCh <- err:
		case <-ctx.Done():
		}
		close(loopDoneCh)
	}()

	httpAlive, failed := true, false
	select {
	case err := <-httpDoneCh:
		log.Printf("http server died: %v", err)
		httpAlive = false
	case err := <-loopDoneCh:
		log.Printf("clock loop died: %v", err)
		failed = true
	case <-sigCh:
		log.Printf("interrupt")
	}
	signal.Stop(sigCh)
	cancel()
	<-loopDoneCh

	if failed {
		ectx, c := context.WithTimeout(context.Background(), *errorTime)
		if err := cl.ShowError(ectx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			log.Printf("show error glyph: %v", err)
		}
		c()
	}
	if err := cl.Blank(); err != nil {
		log.Printf("blank display: %v", err)
	}
	if httpAlive {
		tctx, c := context.WithTimeout(context.Background(), time.Second)
		httpServer.Shutdown(tctx)
		c()
	}
	os.Exit(1)
}
