package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tokengate/tokengated/internal/core/domain"
	"github.com/tokengate/tokengated/internal/core/ports"
	"github.com/tokengate/tokengated/internal/infrastructure/db"
	"github.com/tokengate/tokengated/pkg/errors"
)

// An empty base directory opens the stores in memory.
func newTestRepoManager(t *testing.T) ports.RepoManager {
	t.Helper()
	svc, err := db.NewService(db.ServiceConfig{
		DbType:   "badger",
		DbConfig: []interface{}{"", nil},
	})
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func TestUnsupportedDbType(t *testing.T) {
	_, err := db.NewService(db.ServiceConfig{DbType: "sqlite"})
	require.Error(t, err)
}

func TestRegistryRepository(t *testing.T) {
	ctx := context.Background()
	svc := newTestRepoManager(t)
	repo := svc.Registry()

	// missing record decodes as no registry, not an error
	registry, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, registry)

	registry = domain.NewRegistry()
	require.Nil(t, registry.Register("ext-1"))
	require.Nil(t, registry.Register("ext-2"))
	require.Nil(t, registry.Disable("ext-2"))
	require.NoError(t, repo.Update(ctx, registry))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	got.Rehydrate()
	require.Equal(t, []string{"ext-1", "ext-2"}, got.ListAll())
	require.Equal(t, domain.ExtensionEnabled, got.State("ext-1"))
	require.Equal(t, domain.ExtensionDisabled, got.State("ext-2"))
	require.Equal(t, 1, got.Indexes["ext-2"])
	require.NoError(t, got.Validate())

	// the registry lives in a fixed slot, updating overwrites in place
	require.Nil(t, got.Remove("ext-1"))
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.Get(ctx)
	require.NoError(t, err)
	got.Rehydrate()
	require.Equal(t, []string{"ext-2"}, got.ListAll())
	require.NoError(t, got.Validate())
}

func TestEmptyRegistryRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestRepoManager(t)
	repo := svc.Registry()

	require.NoError(t, repo.Update(ctx, domain.NewRegistry()))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)

	// gob drops empty maps, the caller restores them before use
	got.Rehydrate()
	require.Nil(t, got.Register("ext-1"))
	require.NoError(t, got.Validate())
}

func TestLedgerCreditAndLookup(t *testing.T) {
	ctx := context.Background()
	svc := newTestRepoManager(t)
	repo := svc.Ledger()

	account, err := repo.GetAccount(ctx, "alice", "")
	require.NoError(t, err)
	require.Nil(t, account)

	require.NoError(t, repo.CreditAccount(ctx, "alice", "", 100))
	require.NoError(t, repo.CreditAccount(ctx, "alice", "", 50))
	require.NoError(t, repo.CreditAccount(ctx, "alice", "reg-d", 10))

	account, err = repo.GetAccount(ctx, "alice", "")
	require.NoError(t, err)
	require.NotNil(t, account)
	require.Equal(t, uint64(150), account.Balance)

	accounts, err := repo.GetAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
}

func TestLedgerApplyTransfer(t *testing.T) {
	ctx := context.Background()
	svc := newTestRepoManager(t)
	repo := svc.Ledger()

	require.NoError(t, repo.CreditAccount(ctx, "alice", "", 100))

	noop := func() error { return nil }
	err := repo.ApplyTransfer(ctx, domain.TransferRequest{
		Id: "t1", From: "alice", To: "bob", Amount: 40,
	}, noop)
	require.NoError(t, err)

	alice, err := repo.GetAccount(ctx, "alice", "")
	require.NoError(t, err)
	require.Equal(t, uint64(60), alice.Balance)
	bob, err := repo.GetAccount(ctx, "bob", "")
	require.NoError(t, err)
	require.Equal(t, uint64(40), bob.Balance)
}

func TestLedgerApplyTransferInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	svc := newTestRepoManager(t)
	repo := svc.Ledger()

	require.NoError(t, repo.CreditAccount(ctx, "alice", "", 10))

	err := repo.ApplyTransfer(ctx, domain.TransferRequest{
		Id: "t1", From: "alice", To: "bob", Amount: 40,
	}, func() error { return nil })
	require.Error(t, err)
	require.True(t, errors.BALANCE_TOO_LOW.Is(err))

	alice, gErr := repo.GetAccount(ctx, "alice", "")
	require.NoError(t, gErr)
	require.Equal(t, uint64(10), alice.Balance)
}

func TestLedgerApplyTransferDiscardedOnCallbackFailure(t *testing.T) {
	ctx := context.Background()
	svc := newTestRepoManager(t)
	repo := svc.Ledger()

	require.NoError(t, repo.CreditAccount(ctx, "alice", "", 100))

	rejection := errors.TRANSFER_REJECTED.New("rejected after execution")
	err := repo.ApplyTransfer(ctx, domain.TransferRequest{
		Id: "t1", From: "alice", To: "bob", Amount: 40,
	}, func() error { return rejection })
	require.Error(t, err)
	require.True(t, errors.TRANSFER_REJECTED.Is(err))

	// nothing was committed
	alice, gErr := repo.GetAccount(ctx, "alice", "")
	require.NoError(t, gErr)
	require.Equal(t, uint64(100), alice.Balance)
	bob, gErr := repo.GetAccount(ctx, "bob", "")
	require.NoError(t, gErr)
	require.Nil(t, bob)
}

func TestLedgerRedemption(t *testing.T) {
	ctx := context.Background()
	svc := newTestRepoManager(t)
	repo := svc.Ledger()

	require.NoError(t, repo.CreditAccount(ctx, "alice", "", 100))

	err := repo.ApplyTransfer(ctx, domain.TransferRequest{
		Id: "t1", From: "alice", Amount: 30,
	}, func() error { return nil })
	require.NoError(t, err)

	alice, gErr := repo.GetAccount(ctx, "alice", "")
	require.NoError(t, gErr)
	require.Equal(t, uint64(70), alice.Balance)

	accounts, gErr := repo.GetAccounts(ctx)
	require.NoError(t, gErr)
	require.Len(t, accounts, 1)
}
