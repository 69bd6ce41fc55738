package user

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type ChangePasswordRequest struct {
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse never carries the password or its hash.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

type CreateUserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Message  string `json:"message"`
}

type LoginResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// MigratePasswordsResponse counts rewritten passwords and, when some could
// not be hashed, the accounts that were skipped.
type MigratePasswordsResponse struct {
	Migrated int `json:"migrated"`
	Skipped  int `json:"skipped,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
