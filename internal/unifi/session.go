package unifi

import (
	"net/http"
	"time"
)

// sessionTTL is how long a login is trusted locally. UniFi OS keeps
// sessions alive for 24 hours; controllers that evict earlier are handled
// by the 401 retry path in do.
const sessionTTL = 24 * time.Hour

// session is the authenticated state for one controller. It is never
// mutated after creation; re-authentication swaps in a whole new value
// under the client mutex.
type session struct {
	csrfToken string
	cookies   []*http.Cookie
	issuedAt  time.Time
	expiresAt time.Time
}

func newSession(csrfToken string, cookies []*http.Cookie, now time.Time) *session {
	return &session{
		csrfToken: csrfToken,
		cookies:   cookies,
		issuedAt:  now,
		expiresAt: now.Add(sessionTTL),
	}
}

// valid reports whether the session can still be presented to the
// controller at the given instant. A nil session is never valid.
func (s *session) valid(now time.Time) bool {
	return s != nil && now.Before(s.expiresAt)
}
