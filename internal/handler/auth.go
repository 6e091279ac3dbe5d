package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/leasap/portal-server-go/internal/errors"
	"github.com/leasap/portal-server-go/internal/middleware"
	"github.com/leasap/portal-server-go/internal/model"
	"github.com/leasap/portal-server-go/internal/service"
)

const maxSignupPhotoSize = 5 << 20

type AuthHandler struct {
	auth       *service.AuthService
	dashboards *service.DashboardService
	sessionTTL time.Duration
	secure     bool
}

func NewAuthHandler(auth *service.AuthService, dashboards *service.DashboardService, sessionTTL time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{
		auth:       auth,
		dashboards: dashboards,
		sessionTTL: sessionTTL,
		secure:     secure,
	}
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req model.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	token, creds, err := h.auth.SignIn(r.Context(), req, middleware.ClientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.SetSessionCookie(w, token, h.sessionTTL, h.secure)
	writeJSON(w, http.StatusOK, map[string]any{
		"user": userPayload(creds),
	})
}

// SignUp accepts the multipart signup form, optional photo included.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxSignupPhotoSize); err != nil {
		writeError(w, apperrors.ValidationError("Invalid multipart form"))
		return
	}

	req := model.SignUpRequest{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Phone:    r.FormValue("phone"),
		Gender:   r.FormValue("gender"),
		Agency:   r.FormValue("agency"),
	}

	var (
		photo     io.Reader
		photoName string
	)
	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		photo = file
		photoName = header.Filename
	}

	if err := h.auth.SignUp(r.Context(), req, photo, photoName, middleware.ClientIP(r)); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Account created. You can sign in now.",
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionToken(r)
	if token != "" {
		h.dashboards.Drop(h.auth.TokenHash(token))
		if err := h.auth.Logout(r.Context(), token, middleware.ClientIP(r)); err != nil {
			log.Error().Err(err).Msg("logout failed")
		}
	}

	middleware.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me reports the signed-in account. Runs behind the API guard.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	if session == nil {
		writeError(w, apperrors.SessionExpired())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user": userPayload(session.Credentials),
	})
}

func userPayload(creds model.Credentials) map[string]any {
	return map[string]any{
		"accountId":   creds.AccountID,
		"accountType": creds.AccountType,
		"name":        creds.Name,
		"email":       creds.Email,
		"gender":      creds.Gender,
		"authLink":    creds.AuthLink,
	}
}
