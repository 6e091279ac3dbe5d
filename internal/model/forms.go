package model

import (
	apperrors "github.com/leasap/portal-server-go/internal/errors"
	"github.com/leasap/portal-server-go/internal/util"
)

// Form payloads submitted from the marketing pages. Validation runs before
// any network call; a failing form never reaches the backend or Supabase.

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r SignInRequest) Validate() error {
	if r.Email == "" {
		return apperrors.MissingRequired("email")
	}
	if !util.IsValidEmail(r.Email) {
		return apperrors.InvalidInput("email", "must be a valid email address")
	}
	if r.Password == "" {
		return apperrors.MissingRequired("password")
	}
	return nil
}

type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Gender   string `json:"gender,omitempty"`
	Agency   string `json:"agency,omitempty"`
}

func (r SignUpRequest) Validate() error {
	if r.Name == "" {
		return apperrors.MissingRequired("name")
	}
	if r.Email == "" {
		return apperrors.MissingRequired("email")
	}
	if !util.IsValidEmail(r.Email) {
		return apperrors.InvalidInput("email", "must be a valid email address")
	}
	if len(r.Password) < 8 {
		return apperrors.InvalidInput("password", "must be at least 8 characters")
	}
	if r.Phone != "" && !util.IsValidPhone(r.Phone) {
		return apperrors.InvalidInput("phone", "must be a valid phone number")
	}
	return nil
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message"`
}

func (r ContactRequest) Validate() error {
	if r.Name == "" {
		return apperrors.MissingRequired("name")
	}
	if r.Email == "" {
		return apperrors.MissingRequired("email")
	}
	if !util.IsValidEmail(r.Email) {
		return apperrors.InvalidInput("email", "must be a valid email address")
	}
	if len(r.Message) < 10 {
		return apperrors.InvalidInput("message", "must be at least 10 characters")
	}
	return nil
}

type DemoRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message,omitempty"`
}

func (r DemoRequest) Validate() error {
	if r.Name == "" {
		return apperrors.MissingRequired("name")
	}
	if r.Email == "" {
		return apperrors.MissingRequired("email")
	}
	if !util.IsValidEmail(r.Email) {
		return apperrors.InvalidInput("email", "must be a valid email address")
	}
	if r.Phone != "" && !util.IsValidPhone(r.Phone) {
		return apperrors.InvalidInput("phone", "must be a valid phone number")
	}
	return nil
}

type AssignPropertiesRequest struct {
	RealtorID  string   `json:"realtor_id"`
	ListingIDs []string `json:"listing_ids"`
}

func (r AssignPropertiesRequest) Validate() error {
	if r.RealtorID == "" {
		return apperrors.MissingRequired("realtor_id")
	}
	if len(r.ListingIDs) == 0 {
		return apperrors.MissingRequired("listing_ids")
	}
	return nil
}

type AddRealtorRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

func (r AddRealtorRequest) Validate() error {
	if r.Name == "" {
		return apperrors.MissingRequired("name")
	}
	if r.Email == "" {
		return apperrors.MissingRequired("email")
	}
	if !util.IsValidEmail(r.Email) {
		return apperrors.InvalidInput("email", "must be a valid email address")
	}
	return nil
}

type UpdateListingStatusRequest struct {
	Status string `json:"status"`
}

func (r UpdateListingStatusRequest) Validate() error {
	if r.Status == "" {
		return apperrors.MissingRequired("status")
	}
	if !util.IsValidEnum(r.Status, ListingStatuses) {
		return apperrors.InvalidInput("status", "unknown listing status")
	}
	return nil
}

type UpdateListingAgentRequest struct {
	Agent *Agent `json:"agent"`
}

func (r UpdateListingAgentRequest) Validate() error {
	// nil agent means "remove the agent" and is allowed
	if r.Agent != nil && r.Agent.Email != "" && !util.IsValidEmail(r.Agent.Email) {
		return apperrors.InvalidInput("agent.email", "must be a valid email address")
	}
	return nil
}
