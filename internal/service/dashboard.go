package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/leasap/portal-server-go/internal/model"
	"github.com/leasap/portal-server-go/internal/panel"
	"github.com/leasap/portal-server-go/internal/upstream"
)

// Backend is the slice of the upstream client the dashboard consumes.
// Narrowed to an interface so tests can observe refetch fanout.
type Backend interface {
	FetchRaw(ctx context.Context, tokenHash, path string) (json.RawMessage, error)
	AssignProperties(ctx context.Context, tokenHash string, req model.AssignPropertiesRequest) error
	UnassignProperties(ctx context.Context, tokenHash string, req model.AssignPropertiesRequest) error
	AddRealtor(ctx context.Context, tokenHash string, req model.AddRealtorRequest) error
	DeleteRealtor(ctx context.Context, tokenHash, realtorID string) error
	UpdateListingStatus(ctx context.Context, tokenHash, listingID, status string) error
	UpdateListingAgent(ctx context.Context, tokenHash, listingID string, agent *model.Agent) error
}

var _ Backend = (*upstream.Client)(nil)

// PanelSet is the six independent data panels one signed-in session sees.
// Panels share nothing but the session; each owns its loading/error state.
type PanelSet struct {
	Properties  *panel.Panel[[]model.Property]
	Bookings    *panel.Panel[[]model.Booking]
	Recordings  *panel.Panel[[]model.Recording]
	Chats       *panel.Panel[[]model.ChatThread]
	Realtors    *panel.Panel[[]model.Realtor]
	Assignments *panel.Panel[[]model.Assignment]
}

// DashboardService builds panel sets lazily per session and routes
// mutations, refetching every panel a mutation could have invalidated.
// There is no automatic dependency tracking; the fanout is explicit.
type DashboardService struct {
	backend Backend

	mu   sync.Mutex
	sets map[string]*PanelSet
}

func NewDashboardService(backend Backend) *DashboardService {
	return &DashboardService{
		backend: backend,
		sets:    make(map[string]*PanelSet),
	}
}

// Panels returns the session's panel set, creating it on first use.
func (s *DashboardService) Panels(tokenHash string) *PanelSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	if set, ok := s.sets[tokenHash]; ok {
		return set
	}
	set := s.newPanelSet(tokenHash)
	s.sets[tokenHash] = set
	return set
}

// Drop discards a session's panels on logout or expiry.
func (s *DashboardService) Drop(tokenHash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sets, tokenHash)
}

// Hashes lists the sessions that currently hold panel sets, for the cleanup
// job to check against the credential store.
func (s *DashboardService) Hashes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	hashes := make([]string, 0, len(s.sets))
	for hash := range s.sets {
		hashes = append(hashes, hash)
	}
	return hashes
}

func (s *DashboardService) newPanelSet(tokenHash string) *PanelSet {
	fetch := func(path string) panel.FetchFunc {
		return func(ctx context.Context) (json.RawMessage, error) {
			return s.backend.FetchRaw(ctx, tokenHash, path)
		}
	}

	return &PanelSet{
		Properties:  panel.New("properties", fetch(upstream.PathApartments), extractProperties),
		Bookings:    panel.New("bookings", fetch(upstream.PathBookings), panel.List[model.Booking]("bookings")),
		Recordings:  panel.New("recordings", fetch(upstream.PathRecordings), panel.List[model.Recording]("recordings")),
		Chats:       panel.New("chats", fetch(upstream.PathChatHistory), panel.List[model.ChatThread]("chats")),
		Realtors:    panel.New("realtors", fetch(upstream.PathRealtors), panel.List[model.Realtor]("realtors")),
		Assignments: panel.New("assignments", fetch(upstream.PathAssignments), panel.List[model.Assignment]("assignments")),
	}
}

// extractProperties unwraps the apartments payload and runs metadata
// normalization over every record.
func extractProperties(raw json.RawMessage) ([]model.Property, error) {
	rawList, err := panel.List[map[string]any]("apartments")(raw)
	if err != nil {
		return nil, err
	}
	return model.NormalizeProperties(rawList), nil
}

// refetchAll refetches the given panels sequentially. Session expiry stops
// the fanout (every later call would fail the same way); panel-local errors
// do not.
func refetchAll(ctx context.Context, refetchers ...func(context.Context) error) error {
	for _, refetch := range refetchers {
		if err := refetch(ctx); err != nil {
			return err
		}
	}
	return nil
}

func refetcher[T any](p *panel.Panel[T]) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := p.Refetch(ctx)
		return err
	}
}

// AssignProperties assigns listings to a realtor, then refetches the three
// panels whose displayed data the assignment invalidates: properties,
// realtors, and assignments.
func (s *DashboardService) AssignProperties(ctx context.Context, tokenHash string, req model.AssignPropertiesRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.backend.AssignProperties(ctx, tokenHash, req); err != nil {
		return err
	}
	set := s.Panels(tokenHash)
	return refetchAll(ctx,
		refetcher(set.Properties),
		refetcher(set.Realtors),
		refetcher(set.Assignments),
	)
}

// UnassignProperties mirrors AssignProperties, including the fanout.
func (s *DashboardService) UnassignProperties(ctx context.Context, tokenHash string, req model.AssignPropertiesRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.backend.UnassignProperties(ctx, tokenHash, req); err != nil {
		return err
	}
	set := s.Panels(tokenHash)
	return refetchAll(ctx,
		refetcher(set.Properties),
		refetcher(set.Realtors),
		refetcher(set.Assignments),
	)
}

func (s *DashboardService) AddRealtor(ctx context.Context, tokenHash string, req model.AddRealtorRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.backend.AddRealtor(ctx, tokenHash, req); err != nil {
		return err
	}
	set := s.Panels(tokenHash)
	return refetchAll(ctx, refetcher(set.Realtors))
}

// DeleteRealtor removes a realtor; their assignments disappear with them,
// so both panels plus properties refresh.
func (s *DashboardService) DeleteRealtor(ctx context.Context, tokenHash, realtorID string) error {
	if err := s.backend.DeleteRealtor(ctx, tokenHash, realtorID); err != nil {
		return err
	}
	set := s.Panels(tokenHash)
	return refetchAll(ctx,
		refetcher(set.Properties),
		refetcher(set.Realtors),
		refetcher(set.Assignments),
	)
}

func (s *DashboardService) UpdateListingStatus(ctx context.Context, tokenHash, listingID string, req model.UpdateListingStatusRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.backend.UpdateListingStatus(ctx, tokenHash, listingID, req.Status); err != nil {
		return err
	}
	set := s.Panels(tokenHash)
	return refetchAll(ctx, refetcher(set.Properties))
}

// UpdateListingAgent updates or removes (nil agent) a listing's agent.
func (s *DashboardService) UpdateListingAgent(ctx context.Context, tokenHash, listingID string, req model.UpdateListingAgentRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.backend.UpdateListingAgent(ctx, tokenHash, listingID, req.Agent); err != nil {
		return err
	}
	set := s.Panels(tokenHash)
	return refetchAll(ctx, refetcher(set.Properties))
}
