package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/leasap/portal-server-go/internal/audit"
	apperrors "github.com/leasap/portal-server-go/internal/errors"
	"github.com/leasap/portal-server-go/internal/httputil"
	"github.com/leasap/portal-server-go/internal/model"
	"github.com/leasap/portal-server-go/internal/util"
)

// SessionValidator resolves a raw session cookie value to stored
// credentials. (nil, nil) means no such session.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*model.CredentialSession, error)
}

// SessionGuard protects the dashboard. Page routes redirect anonymous
// browsers to sign-in; API routes answer 401 and let the client handle it.
type SessionGuard struct {
	validator  SessionValidator
	signInPath string
}

func NewSessionGuard(validator SessionValidator, signInPath string) *SessionGuard {
	return &SessionGuard{validator: validator, signInPath: signInPath}
}

func (g *SessionGuard) resolve(r *http.Request) (*model.CredentialSession, error) {
	token := SessionToken(r)
	if token == "" {
		return nil, nil
	}
	session, err := g.validator.Validate(r.Context(), token)
	if err != nil {
		return nil, err
	}
	// A stored record without a backend token cannot serve any portal
	// call, so it counts as anonymous.
	if session != nil && !session.Authenticated() {
		return nil, nil
	}
	return session, nil
}

func (g *SessionGuard) denied(r *http.Request) {
	audit.Log(r.Context(), audit.Event{
		Type: audit.EventGuardDenied,
		IP:   ClientIP(r),
		Details: map[string]interface{}{
			"path":  r.URL.Path,
			"token": util.MaskToken(SessionToken(r)),
		},
	})
}

// API guards JSON routes. Anonymous and expired sessions both come back as
// 401 with a SESSION_EXPIRED body so the client knows to sign in again.
func (g *SessionGuard) API(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := g.resolve(r)
		if err != nil {
			log.Error().Err(err).Msg("session guard: store error")
			httputil.WriteError(w, apperrors.Storage(err))
			return
		}
		if session == nil {
			g.denied(r)
			httputil.WriteError(w, apperrors.SessionExpired())
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
	})
}

// Page guards browser navigations. An anonymous request is sent to the
// sign-in page instead of seeing an error body.
func (g *SessionGuard) Page(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := g.resolve(r)
		if err != nil {
			log.Error().Err(err).Msg("session guard: store error")
			http.Error(w, "session validation failed", http.StatusInternalServerError)
			return
		}
		if session == nil {
			g.denied(r)
			http.Redirect(w, r, g.signInPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
	})
}

// PropertyManagerOnly sits behind API and rejects realtor sessions from the
// management endpoints.
func (g *SessionGuard) PropertyManagerOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := GetSession(r.Context())
		if session == nil || !session.IsPropertyManager() {
			httputil.WriteError(w, apperrors.Forbidden("Property manager account required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
