package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/leasap/portal-server-go/internal/errors"
	"github.com/leasap/portal-server-go/internal/model"
)

// Client talks to the Supabase project used for secondary concerns: the
// demo_requests table and the notification email functions. It is consumed
// as an opaque collaborator; only the REST and functions contracts matter.
type Client struct {
	url     string
	anonKey string
	http    *http.Client
}

func NewClient(url, anonKey string) *Client {
	return &Client{
		url:     strings.TrimRight(url, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether a Supabase project is configured at all. The
// portal degrades gracefully when it is not: demo requests fail loudly,
// notification emails are skipped silently.
func (c *Client) Enabled() bool {
	return c != nil && c.url != ""
}

type demoRequestRow struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message,omitempty"`
}

// InsertDemoRequest writes a row into the demo_requests table. This is the
// write that matters for the book-demo flow; the confirmation email is
// best-effort on top of it.
func (c *Client) InsertDemoRequest(ctx context.Context, req model.DemoRequest) error {
	row := demoRequestRow{
		ID:      uuid.NewString(),
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Phone:   req.Phone,
		Message: req.Message,
	}
	return c.post(ctx, "/rest/v1/demo_requests", row, map[string]string{
		"Prefer": "return=minimal",
	})
}

// Invoke calls a Supabase edge function (send-contact-email,
// send-demo-email, send-signup-confirmation).
func (c *Client) Invoke(ctx context.Context, function string, payload any) error {
	return c.post(ctx, "/functions/v1/"+function, payload, nil)
}

func (c *Client) post(ctx context.Context, path string, payload any, extraHeaders map[string]string) error {
	if !c.Enabled() {
		return apperrors.Supabase(fmt.Errorf("supabase is not configured"))
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.anonKey)
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Supabase(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<14))
		log.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("supabase request failed")
		return apperrors.Supabase(fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	io.Copy(io.Discard, resp.Body)
	return nil
}
