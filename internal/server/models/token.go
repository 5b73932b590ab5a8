package models

import "time"

// RefreshToken is a server-stored long-lived credential, rotated on every
// refresh and removed on logout.
type RefreshToken struct {
	UserID  string
	Token   string
	Expires time.Time
}

// ResetToken is a single-use password-reset credential. Valid for one hour
// from creation; deleted when used.
type ResetToken struct {
	UserID  string
	Token   string
	Expires time.Time
}
