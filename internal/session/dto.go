package session

import "qrattendance/internal/clock"

const (
	StatusCreated       = "created"
	StatusAlreadyExists = "already_exists"
)

type SessionResponse struct {
	ID          string `json:"id"`
	QRCodeToken string `json:"qrCodeToken"`
	Date        string `json:"date"`
}

type CreateSessionResponse struct {
	Message string          `json:"message"`
	Status  string          `json:"status"`
	Session SessionResponse `json:"session"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ToResponse renders a session for API and CLI output.
func ToResponse(s Session) SessionResponse {
	return SessionResponse{ID: s.ID, QRCodeToken: s.Token, Date: s.Date.Format(clock.DateLayout)}
}
