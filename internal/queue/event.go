package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// TypeAttendanceMarked is published after a successful submission.
const TypeAttendanceMarked = "attendance.marked"

// MarkedEvent describes a recorded attendance log.
type MarkedEvent struct {
	LogID     string    `json:"logId"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	CheckedIn time.Time `json:"checkedInAt"`
}

func NewMarkedMessage(evt MarkedEvent) (Message, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return Message{}, fmt.Errorf("encode %s: %w", TypeAttendanceMarked, err)
	}
	return Message{Type: TypeAttendanceMarked, Body: body}, nil
}

// DecodeMarked parses the body of an attendance.marked message.
func DecodeMarked(msg Message) (MarkedEvent, error) {
	if msg.Type != TypeAttendanceMarked {
		return MarkedEvent{}, fmt.Errorf("unexpected message type %q", msg.Type)
	}
	var evt MarkedEvent
	if err := json.Unmarshal(msg.Body, &evt); err != nil {
		return MarkedEvent{}, fmt.Errorf("decode %s: %w", TypeAttendanceMarked, err)
	}
	return evt, nil
}
