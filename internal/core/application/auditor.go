package application

import (
	"context"
	"time"

	"github.com/tokengate/tokengated/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// RegistryAuditor periodically re-checks the registry's structural
// invariants. Violations indicate a storage-level defect and are only
// reported, never repaired.
type RegistryAuditor struct {
	store     *Store
	scheduler ports.SchedulerService
	interval  time.Duration
}

func NewRegistryAuditor(
	store *Store, scheduler ports.SchedulerService, interval time.Duration,
) *RegistryAuditor {
	return &RegistryAuditor{
		store:     store,
		scheduler: scheduler,
		interval:  interval,
	}
}

func (a *RegistryAuditor) Start() error {
	if err := a.scheduler.ScheduleTaskEvery(a.interval, a.audit); err != nil {
		return err
	}
	a.scheduler.Start()
	return nil
}

func (a *RegistryAuditor) Stop() {
	a.scheduler.Stop()
}

func (a *RegistryAuditor) audit() {
	ctx := context.Background()

	registry, err := a.store.Registry(ctx)
	if err != nil {
		err.Log().Warn("registry audit: failed to load registry")
		return
	}
	if err := registry.Validate(); err != nil {
		log.WithError(err).Error("registry audit: invariant violation")
		return
	}

	log.WithField("extensions", len(registry.Sequence)).Debug("registry audit passed")
}
