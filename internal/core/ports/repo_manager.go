package ports

import "github.com/tokengate/tokengated/internal/core/domain"

type RepoManager interface {
	Registry() domain.RegistryRepository
	Ledger() domain.LedgerRepository
	Close()
}
