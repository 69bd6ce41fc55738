package user

import "qrattendance/internal/apperror"

var (
	ErrUserNotFound        = apperror.NotFound("User not found")
	ErrMissingFields       = apperror.Validation("Username, password, and role are required")
	ErrInvalidRole         = apperror.Validation("Role must be either ADMIN or EMPLOYEE")
	ErrUsernameTaken       = apperror.Conflict("Username already exists")
	ErrPasswordRequired    = apperror.Validation("New password is required")
	ErrPasswordTooLong     = apperror.Validation("Password must be at most 72 bytes")
	ErrCredentialsRequired = apperror.Validation("Username and password are required")

	// ErrInvalidCredentials is returned for unknown users and wrong passwords alike.
	ErrInvalidCredentials = apperror.Unauthorized("Invalid username or password")
)
