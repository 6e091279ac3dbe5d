package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/leasap/portal-server-go/internal/repository"
	"github.com/leasap/portal-server-go/internal/service"
)

// CleanupJob removes expired credential sessions and the panel sets they
// left behind. Panels normally die on logout or a 401; this catches sessions
// that simply went stale without another request.
type CleanupJob struct {
	store      repository.CredentialStore
	dashboards *service.DashboardService
	interval   time.Duration
	done       chan struct{}
}

func NewCleanupJob(store repository.CredentialStore, dashboards *service.DashboardService, interval time.Duration) *CleanupJob {
	return &CleanupJob{
		store:      store,
		dashboards: dashboards,
		interval:   interval,
		done:       make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := j.store.DeleteExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to cleanup credential sessions")
	} else if count > 0 {
		log.Info().Int64("count", count).Msg("cleaned up credential sessions")
	}

	j.prunePanels(ctx)
}

// prunePanels drops panel sets whose credential record no longer exists.
func (j *CleanupJob) prunePanels(ctx context.Context) {
	var dropped int
	for _, hash := range j.dashboards.Hashes() {
		session, err := j.store.Find(ctx, hash)
		if err != nil {
			log.Error().Err(err).Msg("panel prune: store lookup failed")
			return
		}
		if session == nil {
			j.dashboards.Drop(hash)
			dropped++
		}
	}
	if dropped > 0 {
		log.Info().Int("count", dropped).Msg("pruned orphaned panel sets")
	}
}
