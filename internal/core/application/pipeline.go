package application

import (
	"context"

	"github.com/tokengate/tokengated/internal/core/domain"
	"github.com/tokengate/tokengated/internal/core/ports"
	"github.com/tokengate/tokengated/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// hookPipeline invokes the transfer hooks of every enabled extension in
// registration order, stopping at the first one that rejects. Iteration runs
// over a snapshot of the registry taken before any foreign code is invoked:
// a hook re-entering the registry mid-run only affects later runs.
type hookPipeline struct {
	resolver ports.ExtensionResolver
}

func newHookPipeline(resolver ports.ExtensionResolver) *hookPipeline {
	return &hookPipeline{resolver: resolver}
}

func (p *hookPipeline) validateTransfer(
	ctx context.Context, registry *domain.Registry, req domain.TransferRequest,
) (bool, errors.Error) {
	return p.run(ctx, registry, req, "validate", func(hooks ports.TransferHooks) (bool, error) {
		return hooks.ValidateTransfer(ctx, req)
	})
}

func (p *hookPipeline) executeAfterTransfer(
	ctx context.Context, registry *domain.Registry, req domain.TransferRequest,
) (bool, errors.Error) {
	return p.run(ctx, registry, req, "after", func(hooks ports.TransferHooks) (bool, error) {
		return hooks.OnTransferExecuted(ctx, req)
	})
}

func (p *hookPipeline) run(
	ctx context.Context, registry *domain.Registry, req domain.TransferRequest,
	phase string, invoke func(ports.TransferHooks) (bool, error),
) (bool, errors.Error) {
	for _, entry := range registry.Entries() {
		if entry.State != domain.ExtensionEnabled {
			continue
		}

		extension, err := p.resolver.Resolve(ctx, entry.Address)
		if err != nil {
			return false, errors.EXTENSION_UNREACHABLE.Wrap(err).
				WithMetadata(errors.ExtensionMetadata{Extension: entry.Address})
		}
		hooks, ok := extension.(ports.TransferHooks)
		if !ok {
			return false, errors.CAPABILITY_MISMATCH.New(
				"extension %s does not implement transfer hooks", entry.Address,
			).WithMetadata(errors.CapabilityMetadata{
				Extension:  entry.Address,
				Capability: string(domain.CapabilityTransferHooks),
			})
		}

		approved, err := invoke(hooks)
		if err != nil {
			return false, errors.EXTENSION_UNREACHABLE.Wrap(err).
				WithMetadata(errors.ExtensionMetadata{Extension: entry.Address})
		}
		if !approved {
			log.WithField("extension", entry.Address).
				WithField("phase", phase).
				Debugf("transfer %s rejected", req.Id)
			return false, nil
		}
	}
	return true, nil
}
