package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
	"github.com/tokengate/tokengated/internal/core/domain"
)

const (
	registryStoreDir = "registry"
	// registryKey is the fixed slot the registry lives under. It is
	// independent of which logic is bound, so upgrades never relocate
	// extension registrations.
	registryKey = "registry"
)

type registryRepository struct {
	store *badgerhold.Store
}

func NewRegistryRepository(config ...interface{}) (domain.RegistryRepository, error) {
	if len(config) != 2 {
		return nil, fmt.Errorf("invalid config")
	}
	baseDir, ok := config[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid base directory")
	}
	var logger badger.Logger
	if config[1] != nil {
		logger, ok = config[1].(badger.Logger)
		if !ok {
			return nil, fmt.Errorf("invalid logger")
		}
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, registryStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry store: %s", err)
	}

	return &registryRepository{store}, nil
}

func (r *registryRepository) Get(ctx context.Context) (*domain.Registry, error) {
	var registry domain.Registry
	err := r.store.Get(registryKey, &registry)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get registry: %w", err)
	}
	return &registry, nil
}

func (r *registryRepository) Update(ctx context.Context, registry *domain.Registry) error {
	if err := r.store.Upsert(registryKey, registry); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = r.store.Upsert(registryKey, registry)
				attempts++
			}
		}
		return err
	}
	return nil
}

func (r *registryRepository) Close() {
	// nolint:all
	r.store.Close()
}
