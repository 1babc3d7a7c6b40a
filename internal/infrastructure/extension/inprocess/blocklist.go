package inprocess

import (
	"context"

	"github.com/tokengate/tokengated/internal/core/domain"
	log "github.com/sirupsen/logrus"
)

// blocklist rejects any transfer whose source, destination or operator is on
// a fixed list of addresses.
type blocklist struct {
	address string
	blocked map[string]struct{}
}

func NewBlocklist(address string, blocked []string) *blocklist {
	set := make(map[string]struct{}, len(blocked))
	for _, addr := range blocked {
		set[addr] = struct{}{}
	}
	return &blocklist{address: address, blocked: set}
}

func (b *blocklist) Address() string {
	return b.address
}

func (b *blocklist) SupportsCapability(
	ctx context.Context, capability domain.Capability,
) (bool, error) {
	switch capability {
	case domain.CapabilityIntrospection, domain.CapabilityTransferHooks:
		return true, nil
	default:
		return false, nil
	}
}

func (b *blocklist) ValidateTransfer(
	ctx context.Context, req domain.TransferRequest,
) (bool, error) {
	for _, addr := range []string{req.From, req.To, req.Operator} {
		if _, ok := b.blocked[addr]; ok {
			log.WithField("address", addr).Debugf("blocklist rejected transfer %s", req.Id)
			return false, nil
		}
	}
	return true, nil
}

func (b *blocklist) OnTransferExecuted(
	ctx context.Context, req domain.TransferRequest,
) (bool, error) {
	return true, nil
}
