package utils

import "time"

// SessionData is the slice of a stored session the middleware needs.
type SessionData struct {
	UserID    string
	ExpiresAt time.Time
}

func (s SessionData) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
