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
	tgerrors "github.com/tokengate/tokengated/pkg/errors"
)

const ledgerStoreDir = "ledger"

type ledgerRepository struct {
	store *badgerhold.Store
}

func NewLedgerRepository(config ...interface{}) (domain.LedgerRepository, error) {
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
		dir = filepath.Join(baseDir, ledgerStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger store: %s", err)
	}

	return &ledgerRepository{store}, nil
}

func (r *ledgerRepository) GetAccount(
	ctx context.Context, address, partition string,
) (*domain.Account, error) {
	account := domain.Account{Address: address, Partition: partition}
	err := r.store.Get(account.Key(), &account)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *ledgerRepository) GetAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts := make([]domain.Account, 0)
	if err := r.store.Find(&accounts, nil); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (r *ledgerRepository) CreditAccount(
	ctx context.Context, address, partition string, amount uint64,
) error {
	var err error
	for range maxRetries {
		err = func() error {
			tx := r.store.Badger().NewTransaction(true)
			defer tx.Discard()

			account, err := r.txGetAccount(tx, address, partition)
			if err != nil {
				return err
			}
			account.Balance += amount
			if err := r.store.TxUpsert(tx, account.Key(), account); err != nil {
				return err
			}

			return tx.Commit()
		}()
		if err == nil {
			return nil
		}
		if errors.Is(err, badger.ErrConflict) {
			time.Sleep(100 * time.Millisecond)
			continue
		}
		return err
	}
	return err
}

func (r *ledgerRepository) ApplyTransfer(
	ctx context.Context, req domain.TransferRequest, onApplied func() error,
) error {
	var err error
	for range maxRetries {
		err = func() error {
			tx := r.store.Badger().NewTransaction(true)
			defer tx.Discard()

			source, err := r.txGetAccount(tx, req.From, req.Partition)
			if err != nil {
				return err
			}
			if source.Balance < req.Amount {
				return tgerrors.BALANCE_TOO_LOW.New(
					"account %s holds %d, transfer needs %d",
					req.From, source.Balance, req.Amount,
				).WithMetadata(tgerrors.BalanceMetadata{
					Account:   req.From,
					Partition: req.Partition,
					Amount:    req.Amount,
					Balance:   source.Balance,
				})
			}
			source.Balance -= req.Amount
			if err := r.store.TxUpsert(tx, source.Key(), source); err != nil {
				return err
			}

			// A redemption burns the amount, there is no destination credit.
			if !req.IsRedemption() {
				dest, err := r.txGetAccount(tx, req.To, req.Partition)
				if err != nil {
					return err
				}
				dest.Balance += req.Amount
				if err := r.store.TxUpsert(tx, dest.Key(), dest); err != nil {
					return err
				}
			}

			if err := onApplied(); err != nil {
				return err
			}

			return tx.Commit()
		}()
		if err == nil {
			return nil
		}
		if errors.Is(err, badger.ErrConflict) {
			time.Sleep(100 * time.Millisecond)
			continue
		}
		return err
	}
	return err
}

func (r *ledgerRepository) txGetAccount(
	tx *badger.Txn, address, partition string,
) (*domain.Account, error) {
	account := domain.Account{Address: address, Partition: partition}
	err := r.store.TxGet(tx, account.Key(), &account)
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *ledgerRepository) Close() {
	// nolint:all
	r.store.Close()
}
