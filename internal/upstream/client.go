package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/leasap/portal-server-go/internal/audit"
	apperrors "github.com/leasap/portal-server-go/internal/errors"
	"github.com/leasap/portal-server-go/internal/repository"
)

// ErrSessionExpired is returned whenever the backend answers 401. By the time
// a caller sees it the credential store entry is already cleared, so the only
// thing left to do is send the browser back to the sign-in page.
var ErrSessionExpired = apperrors.SessionExpired()

const defaultTimeout = 30 * time.Second

// Client is the single gateway to the external leasing backend. It injects
// the stored bearer token and owns logout-by-expiry: a 401 clears the
// session's credentials before the error reaches the caller. No other code
// path clears the store except explicit user logout.
type Client struct {
	baseURL string
	store   repository.CredentialStore
	http    *http.Client
}

func NewClient(baseURL string, store repository.CredentialStore, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		http:    &http.Client{Timeout: timeout},
	}
}

// Do performs a request against the backend. tokenHash identifies the calling
// browser session; pass an empty string for unauthenticated calls, which go
// out without an Authorization header.
func (c *Client) Do(ctx context.Context, tokenHash, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if tokenHash != "" {
		session, err := c.store.Find(ctx, tokenHash)
		if err != nil {
			return nil, apperrors.Storage(err)
		}
		if session != nil && session.AccessToken != "" {
			req.Header.Set("Authorization", "Bearer "+session.AccessToken)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && tokenHash != "" {
		resp.Body.Close()
		c.expireSession(ctx, tokenHash, method, path)
		return nil, ErrSessionExpired
	}

	return resp, nil
}

// expireSession clears the credential store entry in full so every later
// guard check fails closed, then records the forced logout.
func (c *Client) expireSession(ctx context.Context, tokenHash, method, path string) {
	if err := c.store.Clear(ctx, tokenHash); err != nil {
		log.Error().Err(err).Msg("failed to clear credentials after 401")
	}
	log.Warn().Str("method", method).Str("path", path).Msg("backend rejected session, credentials cleared")
	audit.Log(ctx, audit.Event{
		Type:    audit.EventSessionExpired,
		Details: map[string]interface{}{"path": path},
	})
}

// JSON performs a request with a JSON body (nil for none) and decodes a 2xx
// response into out (which may be nil). Non-2xx responses are converted to an
// AppError carrying the backend's body-level detail or message field.
func (c *Client) JSON(ctx context.Context, tokenHash, method, path string, payload, out any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	resp, err := c.Do(ctx, tokenHash, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// FetchRaw returns the raw 2xx response body for panel extractors, which
// need to handle the backend's inconsistent payload wrapping themselves.
func (c *Client) FetchRaw(ctx context.Context, tokenHash, path string) (json.RawMessage, error) {
	resp, err := c.Do(ctx, tokenHash, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeAPIError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

// MultipartField is one part of a multipart form submission.
type MultipartField struct {
	Name     string
	Value    string
	Filename string
	Content  io.Reader
}

// Multipart submits a multipart form (realtor signup, listing uploads) and
// decodes a 2xx response into out.
func (c *Client) Multipart(ctx context.Context, tokenHash, path string, fields []MultipartField, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, f := range fields {
		if f.Content != nil {
			part, err := writer.CreateFormFile(f.Name, f.Filename)
			if err != nil {
				return fmt.Errorf("create form file: %w", err)
			}
			if _, err := io.Copy(part, f.Content); err != nil {
				return fmt.Errorf("copy form file: %w", err)
			}
			continue
		}
		if err := writer.WriteField(f.Name, f.Value); err != nil {
			return fmt.Errorf("write form field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	resp, err := c.Do(ctx, tokenHash, http.MethodPost, path, &buf, writer.FormDataContentType())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeAPIError extracts the backend's error convention: a JSON body with a
// human-readable detail or message string.
func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	message := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			message = payload.Detail
		} else if payload.Message != "" {
			message = payload.Message
		}
	}
	if message == "" {
		message = fmt.Sprintf("backend returned status %d", resp.StatusCode)
	}

	return apperrors.Upstream(message, resp.StatusCode)
}
