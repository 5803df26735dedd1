// Package button turns presses of the clock's buttons into actions.
package button

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/net/trace"
	"periph.io/x/conn/v3/gpio"
)

// Action is what a button does.
type Action int

const (
	SwitchView Action = iota
	NudgeTime
	BrightnessDown
	BrightnessUp

	numActions
)

// NumActions is the number of buttons the clock has, one per action.
const NumActions = int(numActions)

// ActionFromIndex returns the action of the button numbered i, or an error if there is no such
// button.
func ActionFromIndex(i int) (Action, error) {
	if i < 0 || i >= NumActions {
		return 0, fmt.Errorf("no button %d; want 0-%d", i, NumActions-1)
	}
	return Action(i), nil
}

func (a Action) String() string {
	switch a {
	case SwitchView:
		return "switch_view"
	case NudgeTime:
		return "nudge_time"
	case BrightnessDown:
		return "brightness_down"
	case BrightnessUp:
		return "brightness_up"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

var pressCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "button_presses",
	Help: "count of button presses, by action",
}, []string{"action"})

// Pressed reports whether a button line at level l means the button is held down.
func Pressed(l gpio.Level, activeLow bool) bool {
	return bool(l) != activeLow
}

// Pin is the input line of a button.  gpio.PinIn satisfies it.
type Pin interface {
	String() string
	In(pull gpio.Pull, edge gpio.Edge) error
	WaitForEdge(timeout time.Duration) bool
	Read() gpio.Level
}

// Watcher sends a button's action each time it goes from released to pressed.
type Watcher struct {
	Pin       Pin
	ActiveLow bool
	Action    Action

	// PollInterval bounds how long Watch waits for an edge before checking the context.
	PollInterval time.Duration
}

// Watch sends w.Action to ch on every press until the context is cancelled.
func (w *Watcher) Watch(ctx context.Context, ch chan<- Action) error {
	l := trace.NewEventLog("button", w.Action.String())
	defer l.Finish()

	pull := gpio.PullDown
	if w.ActiveLow {
		pull = gpio.PullUp
	}
	if err := w.Pin.In(pull, gpio.BothEdges); err != nil {
		l.Errorf("configure %s: %v", w.Pin, err)
		return fmt.Errorf("configure %s: %w", w.Pin, err)
	}
	interval := w.PollInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	held := Pressed(w.Pin.Read(), w.ActiveLow)
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("watch %s: %w", w.Pin, ctx.Err())
		default:
		}
		if !w.Pin.WaitForEdge(interval) {
			continue
		}
		pressed := Pressed(w.Pin.Read(), w.ActiveLow)
		if pressed == held {
			continue
		}
		held = pressed
		if !pressed {
			continue
		}
		l.Printf("pressed")
		pressCounter.WithLabelValues(w.Action.String()).Inc()
		select {
		case ch <- w.Action:
		case <-ctx.Done():
			return fmt.Errorf("send %v: %w", w.Action, ctx.Err())
		}
	}
}
