package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/leasap/portal-server-go/internal/model"
)

const SessionCookie = "leasap_session"

type contextKey string

const (
	sessionContextKey   contextKey = "session"
	tokenHashContextKey contextKey = "tokenHash"
)

// GetSession returns the credential session the guard attached, or nil for
// an unguarded route.
func GetSession(ctx context.Context) *model.CredentialSession {
	if session, ok := ctx.Value(sessionContextKey).(*model.CredentialSession); ok {
		return session
	}
	return nil
}

// GetTokenHash returns the storage key of the current session. Handlers pass
// it to the upstream client and the panel sets; the raw cookie value never
// leaves this package.
func GetTokenHash(ctx context.Context) string {
	if hash, ok := ctx.Value(tokenHashContextKey).(string); ok {
		return hash
	}
	return ""
}

func withSession(ctx context.Context, session *model.CredentialSession) context.Context {
	ctx = context.WithValue(ctx, sessionContextKey, session)
	return context.WithValue(ctx, tokenHashContextKey, session.TokenHash)
}

// SessionToken reads the raw session cookie value, empty when absent.
func SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func SetSessionCookie(w http.ResponseWriter, token string, maxAge time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   SessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// ClientIP prefers the proxy-provided address. chi's RealIP rewrites
// RemoteAddr from the forwarding headers, so this is a fallback for routes
// mounted without it.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	return r.RemoteAddr
}
