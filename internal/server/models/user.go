package models

import "time"

// User is an account record. Users are never hard-deleted; profile and
// settings updates mutate the row in place.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash []byte
	DisplayName  string
	IsAdmin      bool
	IsVerified   bool
	AvatarURL    string
	Bio          string

	Storage StorageSettings
	SMTP    SMTPSettings

	CreatedAt time.Time
}

// StorageSettings holds per-user S3-compatible storage credentials.
// Enabled is false when the user has not configured object storage;
// callers then fall back to local disk storage.
type StorageSettings struct {
	Enabled   bool
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// SMTPSettings holds per-user outbound mail credentials. A zero Host means
// mail is unconfigured for this user and sends short-circuit to false.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}
