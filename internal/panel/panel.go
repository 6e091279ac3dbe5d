package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	apperrors "github.com/leasap/portal-server-go/internal/errors"
)

// FetchFunc loads the raw payload for a panel.
type FetchFunc func(ctx context.Context) (json.RawMessage, error)

// Extractor converts a raw payload into the panel's data. The backend is
// inconsistent about wrapping lists in named objects, so each panel carries
// its own extractor instead of a shared decode.
type Extractor[T any] func(raw json.RawMessage) (T, error)

// FetchState is a point-in-time view of a panel.
type FetchState[T any] struct {
	Data    T      `json:"data"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// Panel is one independent dashboard data section. A failed refetch keeps
// the last successful data and records an error message; concurrent
// refetches are allowed, but each carries a monotonically increasing request
// id and only the latest one may write its result back, so a slow stale
// response can never overwrite a fresher one.
type Panel[T any] struct {
	resource string
	fetch    FetchFunc
	extract  Extractor[T]

	mu       sync.Mutex
	latestID uint64
	data     T
	loading  bool
	errMsg   string
}

func New[T any](resource string, fetch FetchFunc, extract Extractor[T]) *Panel[T] {
	return &Panel[T]{
		resource: resource,
		fetch:    fetch,
		extract:  extract,
	}
}

// Refetch loads the panel once and returns the resulting state. The error
// return is non-nil only for session expiry, which callers must propagate so
// the browser is sent back to sign-in; everything else lands in the state's
// Error field.
func (p *Panel[T]) Refetch(ctx context.Context) (FetchState[T], error) {
	p.mu.Lock()
	p.latestID++
	id := p.latestID
	p.loading = true
	p.mu.Unlock()

	raw, err := p.fetch(ctx)

	var data T
	if err == nil {
		data, err = p.extract(raw)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if id != p.latestID {
		// superseded by a newer refetch; discard this response entirely
		return p.snapshotLocked(), sessionExpiryOnly(err)
	}

	p.loading = false
	if err != nil {
		p.errMsg = errorMessage(err, p.resource)
		return p.snapshotLocked(), sessionExpiryOnly(err)
	}

	p.data = data
	p.errMsg = ""
	return p.snapshotLocked(), nil
}

// Snapshot returns the current state without fetching.
func (p *Panel[T]) Snapshot() FetchState[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Panel[T]) snapshotLocked() FetchState[T] {
	return FetchState[T]{
		Data:    p.data,
		Loading: p.loading,
		Error:   p.errMsg,
	}
}

// errorMessage prefers the backend's body-level message and falls back to a
// generic per-resource string.
func errorMessage(err error, resource string) string {
	if appErr, ok := apperrors.AsAppError(err); ok && appErr.Message != "" {
		return appErr.Message
	}
	return fmt.Sprintf("could not load %s", resource)
}

// sessionExpiryOnly passes through session expiry and swallows everything
// else; transient failures are panel-local.
func sessionExpiryOnly(err error) error {
	if apperrors.GetCode(err) == apperrors.ErrCodeSessionExpired {
		return err
	}
	return nil
}

// List builds an extractor that accepts either a bare JSON array or an
// object wrapping the array under the given key.
func List[T any](key string) Extractor[[]T] {
	return func(raw json.RawMessage) ([]T, error) {
		var direct []T
		if err := json.Unmarshal(raw, &direct); err == nil {
			return direct, nil
		}

		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("unexpected payload shape: %w", err)
		}
		inner, ok := wrapped[key]
		if !ok {
			return nil, fmt.Errorf("payload has no %q key", key)
		}
		var out []T
		if err := json.Unmarshal(inner, &out); err != nil {
			return nil, fmt.Errorf("decode %q list: %w", key, err)
		}
		return out, nil
	}
}
