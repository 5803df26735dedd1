package button

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"periph.io/x/conn/v3/gpio"
)

func TestActionFromIndex(t *testing.T) {
	want := []Action{SwitchView, NudgeTime, BrightnessDown, BrightnessUp}
	for i, w := range want {
		got, err := ActionFromIndex(i)
		if err != nil {
			t.Errorf("button %d: %v", i, err)
		}
		if got != w {
			t.Errorf("button %d:\n  got: %v\n want: %v", i, got, w)
		}
	}
	for _, i := range []int{-1, NumActions, 255} {
		if _, err := ActionFromIndex(i); err == nil {
			t.Errorf("button %d: expected an error", i)
		}
	}
}

func TestPressed(t *testing.T) {
	testData := []struct {
		level     gpio.Level
		activeLow bool
		want      bool
	}{
		{gpio.High, false, true},
		{gpio.Low, false, false},
		{gpio.High, true, false},
		{gpio.Low, true, true},
	}
	for _, test := range testData {
		if got := Pressed(test.level, test.activeLow); got != test.want {
			t.Errorf("pressed(%v, active low %v):\n  got: %v\n want: %v", test.level, test.activeLow, got, test.want)
		}
	}
}

// fakePin replays a list of levels, one per edge.
type fakePin struct {
	pull   gpio.Pull
	edge   gpio.Edge
	level  gpio.Level
	levels chan gpio.Level
}

func (p *fakePin) String() string { return "fake" }

func (p *fakePin) In(pull gpio.Pull, edge gpio.Edge) error {
	p.pull, p.edge = pull, edge
	return nil
}

func (p *fakePin) WaitForEdge(timeout time.Duration) bool {
	select {
	case l := <-p.levels:
		p.level = l
		return true
	case <-time.After(timeout):
		return false
	}
}

func (p *fakePin) Read() gpio.Level { return p.level }

func TestWatch(t *testing.T) {
	pin := &fakePin{level: gpio.High, levels: make(chan gpio.Level)}
	w := &Watcher{Pin: pin, ActiveLow: true, Action: BrightnessUp, PollInterval: 10 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	before := testutil.ToFloat64(pressCounter.WithLabelValues("brightness_up"))
	ch := make(chan Action, 10)
	errCh := make(chan error)
	go func() { errCh <- w.Watch(ctx, ch) }()

	// press, bounce on the same level, release, press.
	for _, l := range []gpio.Level{gpio.Low, gpio.Low, gpio.High, gpio.Low} {
		pin.levels <- l
	}
	time.Sleep(50 * time.Millisecond)
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("watch after cancel:\n  got: %v\n want: %v", err, context.Canceled)
	}

	if got, want := pin.pull, gpio.PullUp; got != want {
		t.Errorf("pull:\n  got: %v\n want: %v", got, want)
	}
	if got, want := len(ch), 2; got != want {
		t.Errorf("actions sent:\n  got: %v\n want: %v", got, want)
	}
	if got, want := testutil.ToFloat64(pressCounter.WithLabelValues("brightness_up"))-before, 2.0; got != want {
		t.Errorf("press counter:\n  got: %v\n want: %v", got, want)
	}
}
