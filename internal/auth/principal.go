package auth

import "time"

// Principal is the authenticated identity for one request, derived from a
// verified credential. It is never persisted on its own.
type Principal struct {
	Subject   string    `json:"subject"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
