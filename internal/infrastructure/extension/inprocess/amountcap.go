package inprocess

import (
	"context"

	"github.com/tokengate/tokengated/internal/core/domain"
)

// amountCap rejects transfers above a fixed per-transfer amount.
type amountCap struct {
	address string
	max     uint64
}

func NewAmountCap(address string, max uint64) *amountCap {
	return &amountCap{address: address, max: max}
}

func (c *amountCap) Address() string {
	return c.address
}

func (c *amountCap) SupportsCapability(
	ctx context.Context, capability domain.Capability,
) (bool, error) {
	switch capability {
	case domain.CapabilityIntrospection, domain.CapabilityTransferHooks:
		return true, nil
	default:
		return false, nil
	}
}

func (c *amountCap) ValidateTransfer(
	ctx context.Context, req domain.TransferRequest,
) (bool, error) {
	return req.Amount <= c.max, nil
}

func (c *amountCap) OnTransferExecuted(
	ctx context.Context, req domain.TransferRequest,
) (bool, error) {
	return true, nil
}
