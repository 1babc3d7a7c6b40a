package db

import (
	"fmt"

	"github.com/tokengate/tokengated/internal/core/domain"
	"github.com/tokengate/tokengated/internal/core/ports"
	badgerdb "github.com/tokengate/tokengated/internal/infrastructure/db/badger"
)

var (
	registryStoreTypes = map[string]func(...interface{}) (domain.RegistryRepository, error){
		"badger": badgerdb.NewRegistryRepository,
	}
	ledgerStoreTypes = map[string]func(...interface{}) (domain.LedgerRepository, error){
		"badger": badgerdb.NewLedgerRepository,
	}
)

type ServiceConfig struct {
	DbType   string
	DbConfig []interface{}
}

type service struct {
	registryRepo domain.RegistryRepository
	ledgerRepo   domain.LedgerRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	registryFactory, ok := registryStoreTypes[config.DbType]
	if !ok {
		return nil, fmt.Errorf("unsupported db type %s", config.DbType)
	}
	ledgerFactory := ledgerStoreTypes[config.DbType]

	registryRepo, err := registryFactory(config.DbConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry repository: %s", err)
	}
	ledgerRepo, err := ledgerFactory(config.DbConfig...)
	if err != nil {
		registryRepo.Close()
		return nil, fmt.Errorf("failed to open ledger repository: %s", err)
	}

	return &service{
		registryRepo: registryRepo,
		ledgerRepo:   ledgerRepo,
	}, nil
}

func (s *service) Registry() domain.RegistryRepository {
	return s.registryRepo
}

func (s *service) Ledger() domain.LedgerRepository {
	return s.ledgerRepo
}

func (s *service) Close() {
	s.registryRepo.Close()
	s.ledgerRepo.Close()
}
