package session

import "time"

// Session is the single attendance session of one calendar date.
type Session struct {
	ID        string
	Token     string
	Date      time.Time
	CreatedAt time.Time
}
