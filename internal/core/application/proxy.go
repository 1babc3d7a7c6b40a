package application

import (
	"context"
	"sync"

	"github.com/tokengate/tokengated/internal/core/domain"
	"github.com/tokengate/tokengated/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Proxy is the stable public entry point of the token. It owns the store and
// the manager principal; the logic bound to it can be swapped by the manager
// without losing persistent state.
type Proxy struct {
	store   *Store
	manager string

	mu    sync.RWMutex
	logic Logic
}

func NewProxy(manager string, logic Logic, store *Store) *Proxy {
	return &Proxy{
		store:   store,
		manager: manager,
		logic:   logic,
	}
}

func (p *Proxy) Store() *Store {
	return p.store
}

// CurrentLogic returns the id and version of the bound logic.
func (p *Proxy) CurrentLogic() (string, string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.logic.Id(), p.logic.Version()
}

func (p *Proxy) currentLogic() Logic {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.logic
}

func (p *Proxy) checkManager(caller string) errors.Error {
	if caller != p.manager {
		return errors.UNAUTHORIZED.New("caller is not the manager").
			WithMetadata(errors.PrincipalMetadata{Principal: caller})
	}
	return nil
}

// UpgradeTo rebinds the logic and hands the storage writer identity over to
// it in one step: there is no window where the old logic can still write or
// the new one cannot.
func (p *Proxy) UpgradeTo(ctx context.Context, caller string, newLogic Logic) errors.Error {
	if err := p.checkManager(caller); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	oldVersion := p.logic.Version()
	p.logic = newLogic
	p.store.handoff(newLogic.Id())

	log.WithField("old_version", oldVersion).
		WithField("new_version", newLogic.Version()).
		Info("upgraded token logic")
	return nil
}

func (p *Proxy) RegisterExtension(
	ctx context.Context, caller, extension string,
) (bool, errors.Error) {
	return p.forward(caller, func(logic Logic) errors.Error {
		return logic.RegisterExtension(ctx, p.store, extension)
	})
}

func (p *Proxy) EnableExtension(
	ctx context.Context, caller, extension string,
) (bool, errors.Error) {
	return p.forward(caller, func(logic Logic) errors.Error {
		return logic.EnableExtension(ctx, p.store, extension)
	})
}

func (p *Proxy) DisableExtension(
	ctx context.Context, caller, extension string,
) (bool, errors.Error) {
	return p.forward(caller, func(logic Logic) errors.Error {
		return logic.DisableExtension(ctx, p.store, extension)
	})
}

func (p *Proxy) RemoveExtension(
	ctx context.Context, caller, extension string,
) (bool, errors.Error) {
	return p.forward(caller, func(logic Logic) errors.Error {
		return logic.RemoveExtension(ctx, p.store, extension)
	})
}

func (p *Proxy) Issue(
	ctx context.Context, caller, address, partition string, amount uint64,
) errors.Error {
	if err := p.checkManager(caller); err != nil {
		return err
	}
	return p.currentLogic().Issue(ctx, p.store, address, partition, amount)
}

func (p *Proxy) forward(caller string, call func(Logic) errors.Error) (bool, errors.Error) {
	if err := p.checkManager(caller); err != nil {
		return false, err
	}
	if err := call(p.currentLogic()); err != nil {
		return false, err
	}
	return true, nil
}

// AllExtensions is an unauthenticated read straight from shared storage, it
// does not go through the bound logic.
func (p *Proxy) AllExtensions(ctx context.Context) ([]domain.ExtensionRecord, errors.Error) {
	registry, err := p.store.Registry(ctx)
	if err != nil {
		return nil, err
	}
	return registry.Entries(), nil
}

func (p *Proxy) Transfer(ctx context.Context, req domain.TransferRequest) errors.Error {
	return p.currentLogic().Transfer(ctx, p.store, req)
}

func (p *Proxy) Balance(
	ctx context.Context, address, partition string,
) (uint64, errors.Error) {
	return p.store.Balance(ctx, address, partition)
}
