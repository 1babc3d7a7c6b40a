package application

import (
	"context"
	"sync"

	"github.com/tokengate/tokengated/internal/core/domain"
	"github.com/tokengate/tokengated/internal/core/ports"
	"github.com/tokengate/tokengated/pkg/errors"
)

// Store mediates every access to the token's persistent state. Reads are
// open, writes are restricted to the single logic implementation currently
// holding the writer identity. The proxy reassigns the writer when the bound
// logic changes, so at any time exactly one logic can mutate storage.
type Store struct {
	repos ports.RepoManager

	mu     sync.RWMutex
	writer string
}

func NewStore(repos ports.RepoManager, writer string) *Store {
	return &Store{repos: repos, writer: writer}
}

func (s *Store) Writer() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writer
}

func (s *Store) handoff(writer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = writer
}

func (s *Store) checkWriter(caller string) errors.Error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if caller != s.writer {
		return errors.WRITE_ACCESS_DENIED.New(
			"%s is not the current storage writer", caller,
		).WithMetadata(errors.WriterMetadata{Caller: caller, Writer: s.writer})
	}
	return nil
}

// Registry loads the registry from its fixed storage slot. A missing record
// decodes as an empty registry.
func (s *Store) Registry(ctx context.Context) (*domain.Registry, errors.Error) {
	registry, err := s.repos.Registry().Get(ctx)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	if registry == nil {
		registry = domain.NewRegistry()
	}
	registry.Rehydrate()
	return registry, nil
}

func (s *Store) SaveRegistry(
	ctx context.Context, caller string, registry *domain.Registry,
) errors.Error {
	if err := s.checkWriter(caller); err != nil {
		return err
	}
	if err := s.repos.Registry().Update(ctx, registry); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	return nil
}

func (s *Store) Balance(
	ctx context.Context, address, partition string,
) (uint64, errors.Error) {
	account, err := s.repos.Ledger().GetAccount(ctx, address, partition)
	if err != nil {
		return 0, errors.INTERNAL_ERROR.Wrap(err)
	}
	if account == nil {
		return 0, nil
	}
	return account.Balance, nil
}

func (s *Store) Accounts(ctx context.Context) ([]domain.Account, errors.Error) {
	accounts, err := s.repos.Ledger().GetAccounts(ctx)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	return accounts, nil
}

func (s *Store) Credit(
	ctx context.Context, caller, address, partition string, amount uint64,
) errors.Error {
	if err := s.checkWriter(caller); err != nil {
		return err
	}
	if err := s.repos.Ledger().CreditAccount(ctx, address, partition, amount); err != nil {
		return toError(err)
	}
	return nil
}

// ApplyTransfer runs the balance mutation and the onApplied callback as one
// all-or-nothing unit: if onApplied fails, the mutation is discarded.
func (s *Store) ApplyTransfer(
	ctx context.Context, caller string, req domain.TransferRequest, onApplied func() error,
) errors.Error {
	if err := s.checkWriter(caller); err != nil {
		return err
	}
	if err := s.repos.Ledger().ApplyTransfer(ctx, req, onApplied); err != nil {
		return toError(err)
	}
	return nil
}
