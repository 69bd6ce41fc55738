package store

// Constraint names referenced by repositories when mapping unique violations.
const (
	ConstraintUsername    = "uq_users_username"
	ConstraintSessionDate = "uq_attendance_sessions_date"
	ConstraintLogUserDate = "uq_attendance_logs_user_date"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		username   TEXT NOT NULL,
		password   TEXT NOT NULL,
		role       TEXT NOT NULL CHECK (role IN ('ADMIN', 'EMPLOYEE')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT ` + ConstraintUsername + ` UNIQUE (username)
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_sessions (
		id           TEXT PRIMARY KEY,
		token        TEXT NOT NULL UNIQUE,
		session_date DATE NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT ` + ConstraintSessionDate + ` UNIQUE (session_date)
	)`,
	// user_id is a logical reference only; deleting a user keeps its logs.
	`CREATE TABLE IF NOT EXISTS attendance_logs (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL,
		log_date      DATE NOT NULL,
		checked_in_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT ` + ConstraintLogUserDate + ` UNIQUE (user_id, log_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_logs_date ON attendance_logs (log_date)`,
}
