package ports

import (
	"context"

	"github.com/tokengate/tokengated/internal/core/domain"
)

// Extension is foreign code reachable through an address. The only contract
// every extension must honor is the capability handshake; everything else is
// negotiated through it at registration time.
type Extension interface {
	Address() string
	SupportsCapability(ctx context.Context, capability domain.Capability) (bool, error)
}

// TransferHooks is the contract negotiated under
// domain.CapabilityTransferHooks. A false return rejects the transfer, an
// error aborts the whole transaction.
type TransferHooks interface {
	ValidateTransfer(ctx context.Context, req domain.TransferRequest) (bool, error)
	OnTransferExecuted(ctx context.Context, req domain.TransferRequest) (bool, error)
}

// ExtensionResolver turns a registered address back into live extension code.
type ExtensionResolver interface {
	Resolve(ctx context.Context, address string) (Extension, error)
}
