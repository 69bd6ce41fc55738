package attendance

type SubmitResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	Time     string `json:"time"`
}

// RosterEntry is one employee's status for today. CheckInTime is null when absent.
type RosterEntry struct {
	UserID      string  `json:"userId"`
	Username    string  `json:"username"`
	Role        string  `json:"role"`
	Status      string  `json:"status"`
	CheckInTime *string `json:"checkInTime"`
	Date        string  `json:"date"`
}

type LogResponse struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Date   string `json:"date"`
	Time   string `json:"time"`
}
