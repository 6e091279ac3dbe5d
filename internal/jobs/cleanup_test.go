package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leasap/portal-server-go/internal/model"
	"github.com/leasap/portal-server-go/internal/repository"
	"github.com/leasap/portal-server-go/internal/service"
)

type stubBackend struct{}

func (stubBackend) FetchRaw(ctx context.Context, tokenHash, path string) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func (stubBackend) AssignProperties(ctx context.Context, tokenHash string, req model.AssignPropertiesRequest) error {
	return nil
}

func (stubBackend) UnassignProperties(ctx context.Context, tokenHash string, req model.AssignPropertiesRequest) error {
	return nil
}

func (stubBackend) AddRealtor(ctx context.Context, tokenHash string, req model.AddRealtorRequest) error {
	return nil
}

func (stubBackend) DeleteRealtor(ctx context.Context, tokenHash, realtorID string) error {
	return nil
}

func (stubBackend) UpdateListingStatus(ctx context.Context, tokenHash, listingID, status string) error {
	return nil
}

func (stubBackend) UpdateListingAgent(ctx context.Context, tokenHash, listingID string, agent *model.Agent) error {
	return nil
}

func TestCleanupJob(t *testing.T) {
	t.Run("creates job with correct interval", func(t *testing.T) {
		job := NewCleanupJob(repository.NewMemoryCredentialStore(), service.NewDashboardService(stubBackend{}), 5*time.Minute)

		assert.NotNil(t, job)
		assert.Equal(t, 5*time.Minute, job.interval)
	})

	t.Run("starts and stops without panic", func(t *testing.T) {
		job := NewCleanupJob(repository.NewMemoryCredentialStore(), service.NewDashboardService(stubBackend{}), 100*time.Millisecond)

		job.Start()
		time.Sleep(50 * time.Millisecond)
		job.Stop()
	})

	t.Run("removes expired sessions and their panels", func(t *testing.T) {
		ctx := context.Background()
		store := repository.NewMemoryCredentialStore()
		dashboards := service.NewDashboardService(stubBackend{})

		creds := model.Credentials{AccessToken: "at", AccountID: "r-1", AccountType: model.AccountTypeRealtor}
		require.NoError(t, store.Save(ctx, "hash-live", creds, time.Now().Add(time.Hour)))
		require.NoError(t, store.Save(ctx, "hash-stale", creds, time.Now().Add(-time.Minute)))

		livePanels := dashboards.Panels("hash-live")
		dashboards.Panels("hash-stale")

		job := NewCleanupJob(store, dashboards, time.Hour)
		job.cleanup()

		assert.Equal(t, 1, store.Len())
		assert.ElementsMatch(t, []string{"hash-live"}, dashboards.Hashes())
		assert.Same(t, livePanels, dashboards.Panels("hash-live"))
	})
}
