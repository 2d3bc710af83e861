package models

import "time"

// User is an account for the read API. Passwords are stored as bcrypt
// hashes only.
type User struct {
	ID             string
	Email          string
	EmailVerified  bool
	HashedPassword string
	CreatedAt      time.Time
}
