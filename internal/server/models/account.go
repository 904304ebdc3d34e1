// Package models holds the server-side domain records.
package models

import "time"

// Account is a registered identity. Email and Username are unique across
// all accounts; PasswordHash is never the raw password.
type Account struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
