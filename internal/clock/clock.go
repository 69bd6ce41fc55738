// Package clock supplies the notion of "today" used for session and
// attendance uniqueness.
package clock

import "time"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Clock reports the current instant.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in a fixed location.
type System struct {
	Location *time.Location
}

// NewSystem returns a wall clock for the named IANA zone. An empty name or
// "Local" uses the process time zone.
func NewSystem(zone string) (System, error) {
	if zone == "" || zone == "Local" {
		return System{Location: time.Local}, nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return System{}, err
	}
	return System{Location: loc}, nil
}

func (s System) Now() time.Time {
	if s.Location == nil {
		return time.Now()
	}
	return time.Now().In(s.Location)
}

// Fixed always returns T. Used in tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

// Today returns midnight of the current calendar date in the clock's location.
func Today(c Clock) time.Time {
	return DateOf(c.Now())
}

// DateOf strips the time-of-day component.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
