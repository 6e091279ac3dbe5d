package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/leasap/portal-server-go/internal/errors"
	"github.com/leasap/portal-server-go/internal/middleware"
	"github.com/leasap/portal-server-go/internal/model"
	"github.com/leasap/portal-server-go/internal/panel"
	"github.com/leasap/portal-server-go/internal/service"
	"github.com/leasap/portal-server-go/internal/upstream"
)

const maxListingsUploadSize = 10 << 20

// DashboardHandler serves the portal API: the six data panels plus the
// mutations that invalidate them. Every route here sits behind the session
// guard, so a token hash is always on the context.
type DashboardHandler struct {
	dashboards *service.DashboardService
	client     *upstream.Client
}

func NewDashboardHandler(dashboards *service.DashboardService, client *upstream.Client) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards, client: client}
}

func (h *DashboardHandler) Routes(guard *middleware.SessionGuard) chi.Router {
	r := chi.NewRouter()

	r.Get("/properties", h.Properties)
	r.Get("/bookings", h.Bookings)
	r.Get("/recordings", h.Recordings)
	r.Get("/chats", h.Chats)
	r.Get("/realtors", h.Realtors)
	r.Get("/assignments", h.Assignments)

	r.Patch("/properties/{listingID}/status", h.UpdateListingStatus)
	r.Patch("/properties/{listingID}/agent", h.UpdateListingAgent)
	r.Post("/upload-listings", h.UploadListings)

	r.Get("/phone/my-number", h.MyNumber)
	r.Post("/phone/buy-number", h.BuyNumber)

	r.Group(func(r chi.Router) {
		r.Use(guard.PropertyManagerOnly)
		r.Post("/realtors", h.AddRealtor)
		r.Delete("/realtors/{realtorID}", h.DeleteRealtor)
		r.Post("/assignments", h.AssignProperties)
		r.Post("/assignments/unassign", h.UnassignProperties)
	})

	return r
}

// handleErr clears the client-side session state when the backend expired
// it. The credential record is already gone by the time the error surfaces;
// this drops the cached panels and the cookie so the next navigation lands
// on sign-in.
func (h *DashboardHandler) handleErr(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, upstream.ErrSessionExpired) || apperrors.GetCode(err) == apperrors.ErrCodeSessionExpired {
		h.dashboards.Drop(middleware.GetTokenHash(r.Context()))
		middleware.ClearSessionCookie(w)
	}
	writeError(w, err)
}

func writePanelState[T any](w http.ResponseWriter, state panel.FetchState[T]) {
	writeJSON(w, http.StatusOK, state)
}

func (h *DashboardHandler) Properties(w http.ResponseWriter, r *http.Request) {
	set := h.dashboards.Panels(middleware.GetTokenHash(r.Context()))
	state, err := set.Properties.Refetch(r.Context())
	if err != nil {
		h.handleErr(w, r, err)
		return
	}
	writePanelState(w, state)
}

func (h *DashboardHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	set := h.dashboards.Panels(middleware.GetTokenHash(r.Context()))
	state, err := set.Bookings.Refetch(r.Context())
	if err != nil {
		h.handleErr(w, r, err)
		return
	}
	writePanelState(w, state)
}

func (h *DashboardHandler) Recordings(w http.ResponseWriter, r *http.Request) {
	set := h.dashboards.Panels(middleware.GetTokenHash(r.Context()))
	state, err := set.Recordings.Refetch(r.Context())
	if err != nil {
		h.handleErr(w, r, err)
		return
	}

	p := ParsePagination(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"data":    pageOf(state.Data, p),
		"loading": state.Loading,
		"error":   state.Error,
		"total":   len(state.Data),
		"limit":   p.Limit,
		"offset":  p.Offset,
	})
}

func (h *DashboardHandler) Chats(w http.ResponseWriter, r *http.Request) {
	set := h.dashboards.Panels(middleware.GetTokenHash(r.Context()))
	state, err := set.Chats.Refetch(r.Context())
	if err != nil {
		h.handleErr(w, r, err)
		return
	}

	p := ParsePagination(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"data":    pageOf(state.Data, p),
		"loading": state.Loading,
		"error":   state.Error,
		"total":   len(state.Data),
		"limit":   p.Limit,
		"offset":  p.Offset,
	})
}

func (h *DashboardHandler) Realtors(w http.ResponseWriter, r *http.Request) {
	set := h.dashboards.Panels(middleware.GetTokenHash(r.Context()))
	state, err := set.Realtors.Refetch(r.Context())
	if err != nil {
		h.handleErr(w, r, err)
		return
	}
	writePanelState(w, state)
}

func (h *DashboardHandler) Assignments(w http.ResponseWriter, r *http.Request) {
	set := h.dashboards.Panels(middleware.GetTokenHash(r.Context()))
	state, err := set.Assignments.Refetch(r.Context())
	if err != nil {
		h.handleErr(w, r, err)
		return
	}
	writePanelState(w, state)
}

func (h *DashboardHandler) AssignProperties(w http.ResponseWriter, r *http.Request) {
	var req model.AssignPropertiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	if err := h.dashboards.AssignProperties(r.Context(), middleware.GetTokenHash(r.Context()), req); err != nil {
		h.handleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *DashboardHandler) UnassignProperties(w http.ResponseWriter, r *http.Request) {
	var req model.AssignPropertiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	if err := h.dashboards.UnassignProperties(r.Context(), middleware.GetTokenHash(r.Context()), req); err != nil {
		h.handleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *DashboardHandler) AddRealtor(w http.ResponseWriter, r *http.Request) {
	var req model.AddRealtorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	if err := h.dashboards.AddRealtor(r.Context(), middleware.GetTokenHash(r.Context()), req); err != nil {
		h.handleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
}

func (h *DashboardHandler) DeleteRealtor(w http.ResponseWriter, r *http.Request) {
	realtorID := chi.URLParam(r, "realtorID")
	if realtorID == "" {
		writeError(w, apperrors.MissingRequired("realtorID"))
		return
	}

	if err := h.dashboards.DeleteRealtor(r.Context(), middleware.GetTokenHash(r.Context()), realtorID); err != nil {
		h.handleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *DashboardHandler) UpdateListingStatus(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateListingStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	if err := h.dashboards.UpdateListingStatus(r.Context(), middleware.GetTokenHash(r.Context()), chi.URLParam(r, "listingID"), req); err != nil {
		h.handleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *DashboardHandler) UpdateListingAgent(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateListingAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	if err := h.dashboards.UpdateListingAgent(r.Context(), middleware.GetTokenHash(r.Context()), chi.URLParam(r, "listingID"), req); err != nil {
		h.handleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// UploadListings passes the uploaded file straight through to the backend;
// no parsing happens here.
func (h *DashboardHandler) UploadListings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxListingsUploadSize); err != nil {
		writeError(w, apperrors.ValidationError("Invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperrors.MissingRequired("file"))
		return
	}
	defer file.Close()

	session := middleware.GetSession(r.Context())
	tokenHash := middleware.GetTokenHash(r.Context())
	if err := h.client.UploadListings(r.Context(), tokenHash, session.IsPropertyManager(), header.Filename, file); err != nil {
		h.handleErr(w, r, err)
		return
	}

	// the upload changes listings, so the properties panel is stale now
	if _, err := h.dashboards.Panels(tokenHash).Properties.Refetch(r.Context()); err != nil {
		log.Warn().Err(err).Msg("properties refetch after upload failed")
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *DashboardHandler) MyNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.client.MyNumber(r.Context(), middleware.GetTokenHash(r.Context()))
	if err != nil {
		h.handleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, number)
}

func (h *DashboardHandler) BuyNumber(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AreaCode string `json:"areaCode"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	number, err := h.client.BuyNumber(r.Context(), middleware.GetTokenHash(r.Context()), req.AreaCode)
	if err != nil {
		h.handleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, number)
}
