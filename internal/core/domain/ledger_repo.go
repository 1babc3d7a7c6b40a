package domain

import "context"

type LedgerRepository interface {
	GetAccount(ctx context.Context, address, partition string) (*Account, error)
	GetAccounts(ctx context.Context) ([]Account, error)
	CreditAccount(ctx context.Context, address, partition string, amount uint64) error
	// ApplyTransfer debits the source, credits the destination (unless the
	// request is a redemption) and invokes onApplied, all inside a single
	// transaction. If onApplied returns an error the balance mutation is
	// discarded.
	ApplyTransfer(ctx context.Context, req TransferRequest, onApplied func() error) error
	Close()
}
