package service

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/leasap/portal-server-go/internal/audit"
	apperrors "github.com/leasap/portal-server-go/internal/errors"
	"github.com/leasap/portal-server-go/internal/model"
	"github.com/leasap/portal-server-go/internal/repository"
	"github.com/leasap/portal-server-go/internal/supabase"
	"github.com/leasap/portal-server-go/internal/upstream"
	"github.com/leasap/portal-server-go/internal/util"
)

// AuthService owns the only two paths that populate the credential store:
// sign-in and sign-up. Clearing is owned by explicit logout here and by the
// upstream client on 401.
type AuthService struct {
	store         repository.CredentialStore
	client        *upstream.Client
	supabase      *supabase.Client
	sessionSecret string
	sessionTTL    time.Duration
}

func NewAuthService(
	store repository.CredentialStore,
	client *upstream.Client,
	supabaseClient *supabase.Client,
	sessionSecret string,
	sessionTTL time.Duration,
) *AuthService {
	return &AuthService{
		store:         store,
		client:        client,
		supabase:      supabaseClient,
		sessionSecret: sessionSecret,
		sessionTTL:    sessionTTL,
	}
}

// TokenHash derives the storage key for a browser session cookie value.
func (s *AuthService) TokenHash(token string) string {
	return util.HmacSHA256(s.sessionSecret, token)
}

// SignIn authenticates against the backend and, on success, creates a fresh
// session token whose credentials overwrite any previous record wholesale.
func (s *AuthService) SignIn(ctx context.Context, req model.SignInRequest, ip string) (string, model.Credentials, error) {
	if err := req.Validate(); err != nil {
		return "", model.Credentials{}, err
	}

	result, err := s.client.Login(ctx, req)
	if err != nil {
		audit.Log(ctx, audit.Event{Type: audit.EventLoginFailure, Email: req.Email, IP: ip})
		return "", model.Credentials{}, translateLoginError(err)
	}

	token, err := util.GenerateToken()
	if err != nil {
		return "", model.Credentials{}, err
	}

	creds := result.Credentials()
	expiresAt := time.Now().Add(s.sessionTTL)
	if err := s.store.Save(ctx, s.TokenHash(token), creds, expiresAt); err != nil {
		return "", model.Credentials{}, err
	}

	audit.Log(ctx, audit.Event{
		Type:      audit.EventLoginSuccess,
		AccountID: creds.AccountID,
		Email:     creds.Email,
		IP:        ip,
	})

	return token, creds, nil
}

// translateLoginError turns the backend's 401 into a credentials failure.
// Anything else stays an upstream error.
func translateLoginError(err error) error {
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeUpstream {
		return err
	}
	if details, ok := appErr.Details.(map[string]int); ok && details["status"] == http.StatusUnauthorized {
		return apperrors.Unauthorized("Invalid email or password")
	}
	return err
}

// SignUp submits the realtor signup form to the backend and sends the
// confirmation email best-effort: a failed email never fails the signup.
func (s *AuthService) SignUp(ctx context.Context, req model.SignUpRequest, photo io.Reader, photoName, ip string) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if err := s.client.CreateRealtor(ctx, req, photo, photoName); err != nil {
		audit.Log(ctx, audit.Event{Type: audit.EventSignupFailure, Email: req.Email, IP: ip})
		return err
	}

	audit.Log(ctx, audit.Event{Type: audit.EventSignupSuccess, Email: req.Email, IP: ip})

	if s.supabase.Enabled() {
		if err := s.supabase.Invoke(ctx, "send-signup-confirmation", map[string]string{
			"email": req.Email,
			"name":  req.Name,
		}); err != nil {
			log.Warn().Err(err).Str("email", req.Email).Msg("signup confirmation email failed")
		}
	}

	return nil
}

// Validate resolves a session cookie value to its stored credentials.
// Returns (nil, nil) when the session is unknown or expired.
func (s *AuthService) Validate(ctx context.Context, token string) (*model.CredentialSession, error) {
	if token == "" {
		return nil, nil
	}
	return s.store.Find(ctx, s.TokenHash(token))
}

// Logout clears the credential record. Idempotent: logging out twice is
// indistinguishable from logging out once.
func (s *AuthService) Logout(ctx context.Context, token, ip string) error {
	if token == "" {
		return nil
	}
	hash := s.TokenHash(token)

	session, err := s.store.Find(ctx, hash)
	if err != nil {
		return err
	}
	if err := s.store.Clear(ctx, hash); err != nil {
		return err
	}
	if session != nil {
		audit.Log(ctx, audit.Event{
			Type:      audit.EventLogout,
			AccountID: session.AccountID,
			Email:     session.Email,
			IP:        ip,
		})
	}
	return nil
}
