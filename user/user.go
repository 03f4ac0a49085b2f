package user

import "time"

// User is a local account backed by an external identity.
type User struct {
	// ID is the local account identifier.
	ID string `json:"id"`

	// Email is the account email, taken from the verified identity claims.
	Email string `json:"email"`

	// FirstName and LastName come from the identity's name claims.
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// IsActive controls whether the account may authenticate.
	IsActive bool `json:"is_active"`

	// ExternalID is the provider's stable subject identifier.
	ExternalID string `json:"external_id"`

	// LastLogin is updated on every successful authentication.
	LastLogin time.Time `json:"last_login"`

	// CreatedAt is when the account was provisioned.
	CreatedAt time.Time `json:"created_at"`
}
