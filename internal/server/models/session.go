package models

import "time"

// Session is a server-side login record. The browser only holds a signed
// token referencing Token; deleting the row logs the author out.
type Session struct {
	Token     string
	Username  string
	Expires   time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.Expires)
}
