package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/leasap/portal-server-go/internal/errors"
	"github.com/leasap/portal-server-go/internal/model"
	"github.com/leasap/portal-server-go/internal/service"
)

type FormsHandler struct {
	forms *service.FormsService
}

func NewFormsHandler(forms *service.FormsService) *FormsHandler {
	return &FormsHandler{forms: forms}
}

func (h *FormsHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req model.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	result, err := h.forms.Contact(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	message := "Thanks for reaching out. We'll get back to you shortly."
	if !result.EmailSent {
		message = "Your message was received. Confirmation email could not be sent."
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": message,
	})
}

func (h *FormsHandler) BookDemo(w http.ResponseWriter, r *http.Request) {
	var req model.DemoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	result, err := h.forms.BookDemo(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	message := "Demo booked. Check your inbox for the details."
	if !result.EmailSent {
		message = "Demo request saved. We'll follow up by email."
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": message,
	})
}
