package session

import (
	"net/http"
)

const CookieName = "mw_session"

// CookieOptions defines how session cookies are issued. The secure /
// same-site branch is a process-wide configuration decision made once
// at startup, never per request.
type CookieOptions struct {
	Path     string
	Secure   bool
	SameSite http.SameSite
	Domain   string
}

// CookieOptionsFor maps the deployment mode to cookie attributes.
// Secure transport gets Secure + SameSite=None so the cookie travels
// cross-site to every allow-listed frontend; otherwise fall back to a
// Lax, non-secure cookie (browsers reject SameSite=None without
// Secure).
func CookieOptionsFor(secureTransport bool) CookieOptions {
	if secureTransport {
		return CookieOptions{
			Secure:   true,
			SameSite: http.SameSiteNoneMode,
		}
	}
	return CookieOptions{
		SameSite: http.SameSiteLaxMode,
	}
}

func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/"
	}
	return o
}

// SetCookie issues the session cookie to the client. No Expires is
// set: the cookie lives for the browser session, the server enforces
// the idle timeout.
func SetCookie(w http.ResponseWriter, cookieValue string, opts CookieOptions) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    cookieValue,
		Path:     opts.Path,
		Domain:   opts.Domain,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// ClearCookie removes the session cookie from the client.
func ClearCookie(w http.ResponseWriter, opts CookieOptions) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     opts.Path,
		Domain:   opts.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}
