package entity

import "time"

// Identity is the authenticated principal issued by the auth subsystem.
// It carries no application data; see Profile for that.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthSession is the backend-side session bound to an Identity.
type AuthSession struct {
	ID        string
	Identity  Identity
	CreatedAt time.Time
	ExpiresAt time.Time
}

// AuthEvent names a state transition reported by the auth subsystem.
type AuthEvent string

const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)
