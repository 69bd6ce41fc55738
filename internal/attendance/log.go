package attendance

import "time"

// Log is one user's check-in for one calendar date.
type Log struct {
	ID          string
	UserID      string
	Date        time.Time
	CheckedInAt time.Time
}

const (
	StatusPresent = "PRESENT"
	StatusAbsent  = "ABSENT"
)
