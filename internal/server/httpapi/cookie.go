package httpapi

import (
	"net/http"
	"time"
)

// setRefreshCookie stores the raw refresh token in an HttpOnly cookie
// scoped to the auth endpoints. The cookie lives exactly as long as the
// token record does.
func (s *HTTPServer) setRefreshCookie(w http.ResponseWriter, raw string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    raw,
		Path:     s.cookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: s.cookieSameSite,
	})
}

// clearRefreshCookie instructs the client to drop the refresh cookie.
func (s *HTTPServer) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     s.cookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: s.cookieSameSite,
	})
}

// refreshTokenFromCookie extracts the raw refresh token, empty if absent.
func (s *HTTPServer) refreshTokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
