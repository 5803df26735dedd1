// Package calendar keeps wall-clock time as Gregorian date fields and converts between those
// fields and a count of seconds elapsed since the first instant of a base year.
//
// A Calendar never allocates and is meant to be copied by value; every mutation leaves the fields
// denoting a valid date and time.
package calendar

import (
	"fmt"
	"time"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
	daysPerYear      = 365
)

var monthLengths = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// Calendar is a date and time of day, counted relative to BaseYear.
type Calendar struct {
	baseYear int
	frozen   bool

	hours, minutes, seconds int
	day, month, year        int
}

// New returns a Calendar set to the provided fields.  Fields outside their valid range are clamped
// into it, in the same way the setters clamp.
func New(baseYear, hours, minutes, seconds, day, month, year int) Calendar {
	c := Calendar{baseYear: baseYear, day: 1, month: 1, year: baseYear}
	c.SetYear(year)
	c.SetMonth(month)
	c.SetDay(day)
	c.SetHours(hours)
	c.SetMinutes(minutes)
	c.SetSeconds(seconds)
	return c
}

// FromTime returns a Calendar holding the wall-clock fields of t, in t's location.
func FromTime(baseYear int, t time.Time) Calendar {
	y, mon, d := t.Date()
	h, m, s := t.Clock()
	return New(baseYear, h, m, s, d, int(mon), y)
}

// IsLeapYear reports whether year has 366 days in the Gregorian calendar.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in month (1-12) of year.
func DaysInMonth(month, year int) int {
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return monthLengths[month-1]
}

// leapYearsThrough counts the leap years in [1, year].
func leapYearsThrough(year int) int {
	if year <= 0 {
		return 0
	}
	return year/4 - year/100 + year/400
}

// daysBeforeYear returns the number of days between January 1st of base and January 1st of year.
func daysBeforeYear(base, year int) int64 {
	leaps := leapYearsThrough(year-1) - leapYearsThrough(base-1)
	return int64(year-base)*daysPerYear + int64(leaps)
}

func daysBeforeMonth(month, year int) int {
	var days int
	for m := 1; m < month; m++ {
		days += DaysInMonth(m, year)
	}
	return days
}

// FromTicks returns the Calendar that is ticks seconds after midnight on January 1st of baseYear.
// It is the exact inverse of ToTicks.  ticks must not be negative; negative values are treated as
// zero.
func FromTicks(baseYear int, ticks int64) Calendar {
	if ticks < 0 {
		ticks = 0
	}
	c := Calendar{baseYear: baseYear}
	c.seconds = int(ticks % secondsPerMinute)
	c.minutes = int(ticks / secondsPerMinute % 60)
	c.hours = int(ticks / secondsPerHour % 24)
	elapsedDays := ticks / secondsPerDay

	// Estimate the year by spreading one leap day over every four years, then correct the
	// estimate against the exact Gregorian leap day count.  The estimate is never more than a
	// year off.
	year := baseYear + int((elapsedDays-elapsedDays/daysPerYear/4)/daysPerYear)
	for year > baseYear && daysBeforeYear(baseYear, year) > elapsedDays {
		year--
	}
	for daysBeforeYear(baseYear, year+1) <= elapsedDays {
		year++
	}
	c.year = year

	dayOfYear := int(elapsedDays - daysBeforeYear(baseYear, year))
	month := 1
	for dayOfYear >= DaysInMonth(month, year) {
		dayOfYear -= DaysInMonth(month, year)
		month++
	}
	c.month = month
	c.day = dayOfYear + 1
	return c
}

// ToTicks returns the number of seconds between midnight on January 1st of the base year and the
// time the Calendar holds.
func (c Calendar) ToTicks() int64 {
	days := int64(c.day-1) + int64(daysBeforeMonth(c.month, c.year)) + daysBeforeYear(c.baseYear, c.year)
	return int64(c.seconds) + int64(c.minutes)*secondsPerMinute + int64(c.hours)*secondsPerHour + days*secondsPerDay
}

// SecondElapsed advances the calendar by exactly one second, carrying into minutes, hours, days,
// months and years.  It does nothing while the calendar is frozen.
func (c *Calendar) SecondElapsed() {
	if c.frozen {
		return
	}
	if c.seconds++; c.seconds < 60 {
		return
	}
	c.seconds = 0
	if c.minutes++; c.minutes < 60 {
		return
	}
	c.minutes = 0
	if c.hours++; c.hours < 24 {
		return
	}
	c.hours = 0
	if c.day++; c.day <= DaysInMonth(c.month, c.year) {
		return
	}
	c.day = 1
	if c.month++; c.month <= 12 {
		return
	}
	c.month = 1
	c.year++
}

// Freeze stops SecondElapsed from advancing the calendar, for editing.
func (c *Calendar) Freeze() { c.frozen = true }

// Unfreeze lets SecondElapsed advance the calendar again.
func (c *Calendar) Unfreeze() { c.frozen = false }

// IsFrozen reports whether the calendar is frozen.
func (c Calendar) IsFrozen() bool { return c.frozen }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SetHours sets the hour, clamped to [0, 23].
func (c *Calendar) SetHours(v int) { c.hours = clamp(v, 0, 23) }

// SetMinutes sets the minute, clamped to [0, 59].
func (c *Calendar) SetMinutes(v int) { c.minutes = clamp(v, 0, 59) }

// SetSeconds sets the second, clamped to [0, 59].
func (c *Calendar) SetSeconds(v int) { c.seconds = clamp(v, 0, 59) }

// SetDay sets the day of the month, clamped to the length of the current month.
func (c *Calendar) SetDay(v int) { c.day = clamp(v, 1, DaysInMonth(c.month, c.year)) }

// SetMonth sets the month, clamped to [1, 12].  The day is clamped to the new month's length.
func (c *Calendar) SetMonth(v int) {
	c.month = clamp(v, 1, 12)
	c.SetDay(c.day)
}

// SetYear sets the year, which can not be earlier than the base year.  The day is clamped to the
// length of the current month in the new year, which only matters for February 29th.
func (c *Calendar) SetYear(v int) {
	if v < c.baseYear {
		v = c.baseYear
	}
	c.year = v
	c.SetDay(c.day)
}

// BaseYear returns the year that tick 0 falls in.
func (c Calendar) BaseYear() int { return c.baseYear }

// Hours returns the hour, 0-23.
func (c Calendar) Hours() int { return c.hours }

// Minutes returns the minute, 0-59.
func (c Calendar) Minutes() int { return c.minutes }

// Seconds returns the second, 0-59.
func (c Calendar) Seconds() int { return c.seconds }

// Day returns the day of the month, starting at 1.
func (c Calendar) Day() int { return c.day }

// Month returns the month, 1-12.
func (c Calendar) Month() int { return c.month }

// Year returns the year, never earlier than BaseYear.
func (c Calendar) Year() int { return c.year }

// MinuteOfDay returns the number of minutes since midnight.
func (c Calendar) MinuteOfDay() int { return c.hours*60 + c.minutes }

func (c Calendar) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", c.year, c.month, c.day, c.hours, c.minutes, c.seconds)
}
