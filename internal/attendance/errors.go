package attendance

import "qrattendance/internal/apperror"

var (
	ErrNoSession     = apperror.Validation("No session available for today")
	ErrInvalidToken  = apperror.Validation("Invalid QR token")
	ErrAlreadyMarked = apperror.Conflict("Attendance already marked for today")
)
