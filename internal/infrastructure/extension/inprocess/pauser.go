package inprocess

import (
	"context"
	"sync/atomic"

	"github.com/tokengate/tokengated/internal/core/domain"
)

// pauser rejects every transfer while paused. Observation hooks keep running
// so a pause never hides executed transfers.
type pauser struct {
	address string
	paused  atomic.Bool
}

func NewPauser(address string) *pauser {
	return &pauser{address: address}
}

func (p *pauser) Address() string {
	return p.address
}

func (p *pauser) Pause() {
	p.paused.Store(true)
}

func (p *pauser) Resume() {
	p.paused.Store(false)
}

func (p *pauser) SupportsCapability(
	ctx context.Context, capability domain.Capability,
) (bool, error) {
	switch capability {
	case domain.CapabilityIntrospection, domain.CapabilityTransferHooks:
		return true, nil
	default:
		return false, nil
	}
}

func (p *pauser) ValidateTransfer(
	ctx context.Context, req domain.TransferRequest,
) (bool, error) {
	return !p.paused.Load(), nil
}

func (p *pauser) OnTransferExecuted(
	ctx context.Context, req domain.TransferRequest,
) (bool, error) {
	return true, nil
}
