package models

import "time"

// RefreshToken is a server-stored, single-use token bound to a session.
type RefreshToken struct {
	Token     string
	UserID    string
	SessionID string
	Expires   time.Time
	CreatedAt time.Time
}

// ResetToken authorizes one password change for UserID until Expires.
type ResetToken struct {
	Token     string
	UserID    string
	Expires   time.Time
	CreatedAt time.Time
}
