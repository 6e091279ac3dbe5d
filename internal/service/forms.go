package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/leasap/portal-server-go/internal/model"
	"github.com/leasap/portal-server-go/internal/supabase"
	"github.com/leasap/portal-server-go/internal/upstream"
)

// FormsService handles the public marketing forms. Each flow has exactly one
// write that matters; notification emails ride on top of it best-effort and
// a failed email downgrades the success message rather than the status.
type FormsService struct {
	client   *upstream.Client
	supabase *supabase.Client
}

func NewFormsService(client *upstream.Client, supabaseClient *supabase.Client) *FormsService {
	return &FormsService{client: client, supabase: supabaseClient}
}

// FormResult tells the handler which success message to show.
type FormResult struct {
	EmailSent bool
}

// Contact submits the contact form upstream and then tries to send the
// notification email.
func (s *FormsService) Contact(ctx context.Context, req model.ContactRequest) (FormResult, error) {
	if err := req.Validate(); err != nil {
		return FormResult{}, err
	}
	if err := s.client.Contact(ctx, req); err != nil {
		return FormResult{}, err
	}
	return FormResult{EmailSent: s.sendEmail(ctx, "send-contact-email", req)}, nil
}

// BookDemo persists the demo request and then tries to send the
// confirmation email. Persistence failing fails the flow; the email
// failing does not.
func (s *FormsService) BookDemo(ctx context.Context, req model.DemoRequest) (FormResult, error) {
	if err := req.Validate(); err != nil {
		return FormResult{}, err
	}

	if s.supabase.Enabled() {
		if err := s.supabase.InsertDemoRequest(ctx, req); err != nil {
			return FormResult{}, err
		}
	} else {
		// degraded mode without a Supabase project: the backend takes the write
		if err := s.client.BookDemo(ctx, req); err != nil {
			return FormResult{}, err
		}
	}

	return FormResult{EmailSent: s.sendEmail(ctx, "send-demo-email", req)}, nil
}

func (s *FormsService) sendEmail(ctx context.Context, function string, payload any) bool {
	if !s.supabase.Enabled() {
		return false
	}
	if err := s.supabase.Invoke(ctx, function, payload); err != nil {
		log.Warn().Err(err).Str("function", function).Msg("notification email failed")
		return false
	}
	return true
}
