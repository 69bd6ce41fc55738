package session

import "qrattendance/internal/apperror"

var (
	ErrNoSessionToday    = apperror.NotFound("No session available for today")
	ErrNoSessionToDelete = apperror.NotFound("No session found for today")
)
