package domain

import "context"

// RegistryRepository persists the whole registry under a fixed key, so its
// state survives logic upgrades and every save is all-or-nothing.
type RegistryRepository interface {
	Get(ctx context.Context) (*Registry, error)
	Update(ctx context.Context, registry *Registry) error
	Close()
}
