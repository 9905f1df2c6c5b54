// Package auth implements email/password authentication and session
// issuance.
package auth

import "time"

// User is a login account. Directory profiles are linked by email.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
