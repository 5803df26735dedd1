package display

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Segment is a segment line shared by every digit.  gpio.PinOut satisfies it.
type Segment interface {
	Out(l gpio.Level) error
}

// Digit is the driver of one digit's common line.  SetDuty takes an inverted duty value: 0 drives
// the digit at full brightness and DutyOff turns it off.
type Digit interface {
	SetDuty(duty uint16) error
}

// DutyOff is the inverted duty value that turns a digit off.
const DutyOff = 0xFFFF

// PWMDigit drives a digit's transistor from a GPIO pin.  By default the transistor conducts while
// the line is low (a PNP high-side switch), so the duty value is the fraction of time the line is
// high.  Set ActiveHigh for a low-side switch.
type PWMDigit struct {
	Pin        gpio.PinOut
	Frequency  physic.Frequency
	ActiveHigh bool
}

func (d *PWMDigit) SetDuty(duty uint16) error {
	high := duty
	if d.ActiveHigh {
		high = DutyOff - duty
	}
	switch high {
	case 0:
		return d.out(gpio.Low)
	case DutyOff:
		return d.out(gpio.High)
	}
	if err := d.Pin.PWM(gpio.Duty(uint64(high)*uint64(gpio.DutyMax)/DutyOff), d.Frequency); err != nil {
		return fmt.Errorf("pwm %s: %w", d.Pin, err)
	}
	return nil
}

func (d *PWMDigit) out(l gpio.Level) error {
	if err := d.Pin.Out(l); err != nil {
		return fmt.Errorf("set %s %v: %w", d.Pin, l, err)
	}
	return nil
}

// Discard is a Segment and Digit that is not connected to anything, for running without a
// display attached.
type Discard struct{}

func (Discard) Out(gpio.Level) error { return nil }
func (Discard) SetDuty(uint16) error { return nil }
