package face

import (
	"fmt"

	"github.com/jrockway/desk-clock/control/calendar"
)

// View is one way of showing the calendar on the face.
type View int

const (
	// ClockView shows hours and minutes with a colon blinking every second.
	ClockView View = iota
	// ClockSecondsView adds the seconds on the right.
	ClockSecondsView
	// ClockDateView adds the day and month on the sides.
	ClockDateView
	// DateView shows the day and month on the sides and the year in the middle.
	DateView

	numViews
)

// ViewFromIndex returns the View numbered i, or an error if there is no such view.
func ViewFromIndex(i int) (View, error) {
	if i < 0 || i >= int(numViews) {
		return 0, fmt.Errorf("no view %d; want 0-%d", i, numViews-1)
	}
	return View(i), nil
}

// Next returns the view after v, wrapping around to the first.
func (v View) Next() View { return (v + 1) % numViews }

func (v View) String() string {
	switch v {
	case ClockView:
		return "clock"
	case ClockSecondsView:
		return "clock+seconds"
	case ClockDateView:
		return "clock+date"
	case DateView:
		return "date"
	}
	return fmt.Sprintf("View(%d)", int(v))
}

// Render draws c on a blank face the way v shows it.
func Render(v View, c calendar.Calendar) (*Face, error) {
	f := new(Face)
	switch v {
	case ClockView:
	case ClockSecondsView:
		if err := f.ShowNumber(Side2, uint(c.Seconds()), true); err != nil {
			return nil, fmt.Errorf("seconds: %w", err)
		}
	case ClockDateView:
		if err := showDate(f, c); err != nil {
			return nil, err
		}
	case DateView:
		if err := showDate(f, c); err != nil {
			return nil, err
		}
		if err := f.ShowNumber(Main, uint(c.Year()), false); err != nil {
			return nil, fmt.Errorf("year: %w", err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("render %v: unknown view", v)
	}
	f.SetColon(c.Seconds()%2 == 0)
	if err := f.ShowNumber(Main, uint(c.Hours()*100+c.Minutes()), true); err != nil {
		return nil, fmt.Errorf("time: %w", err)
	}
	return f, nil
}

func showDate(f *Face, c calendar.Calendar) error {
	if err := f.ShowOrdinal(Side1, uint(c.Day()), true); err != nil {
		return fmt.Errorf("day: %w", err)
	}
	if err := f.ShowOrdinal(Side2, uint(c.Month()), true); err != nil {
		return fmt.Errorf("month: %w", err)
	}
	return nil
}
