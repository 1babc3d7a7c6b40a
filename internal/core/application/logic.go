package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/tokengate/tokengated/internal/core/domain"
	"github.com/tokengate/tokengated/internal/core/ports"
	"github.com/tokengate/tokengated/pkg/errors"
)

// Logic is the mutable half of the token: every state change goes through the
// implementation currently bound to the proxy. Implementations receive the
// store on every call instead of holding their own state, so an upgrade
// swaps behavior without touching persistent data.
type Logic interface {
	Id() string
	Version() string
	Transfer(ctx context.Context, store *Store, req domain.TransferRequest) errors.Error
	Issue(
		ctx context.Context, store *Store, address, partition string, amount uint64,
	) errors.Error
	RegisterExtension(ctx context.Context, store *Store, extension string) errors.Error
	EnableExtension(ctx context.Context, store *Store, extension string) errors.Error
	DisableExtension(ctx context.Context, store *Store, extension string) errors.Error
	RemoveExtension(ctx context.Context, store *Store, extension string) errors.Error
}

const (
	LogicVersionStandard = "standard"
	// LogicVersionStrict additionally requires redemptions to be initiated by
	// the holder itself.
	LogicVersionStrict = "strict"
)

var supportedLogicVersions = map[string]func(ports.ExtensionResolver) Logic{
	LogicVersionStandard: NewStandardLogic,
	LogicVersionStrict:   NewStrictLogic,
}

func NewLogic(version string, resolver ports.ExtensionResolver) (Logic, errors.Error) {
	factory, ok := supportedLogicVersions[version]
	if !ok {
		return nil, errors.UNKNOWN_LOGIC_VERSION.New(
			"unknown logic version %s", version,
		).WithMetadata(errors.LogicMetadata{Version: version})
	}
	return factory(resolver), nil
}

func NewStandardLogic(resolver ports.ExtensionResolver) Logic {
	return &tokenLogic{
		id:       uuid.NewString(),
		version:  LogicVersionStandard,
		pipeline: newHookPipeline(resolver),
		resolver: resolver,
	}
}

func NewStrictLogic(resolver ports.ExtensionResolver) Logic {
	return &tokenLogic{
		id:                uuid.NewString(),
		version:           LogicVersionStrict,
		pipeline:          newHookPipeline(resolver),
		resolver:          resolver,
		strictRedemptions: true,
	}
}

type tokenLogic struct {
	id                string
	version           string
	pipeline          *hookPipeline
	resolver          ports.ExtensionResolver
	strictRedemptions bool
}

func (l *tokenLogic) Id() string {
	return l.id
}

func (l *tokenLogic) Version() string {
	return l.version
}

func (l *tokenLogic) Transfer(
	ctx context.Context, store *Store, req domain.TransferRequest,
) errors.Error {
	if len(req.From) == 0 {
		return errors.INVALID_TRANSFER.New("transfer %s has no source", req.Id).
			WithMetadata(errors.TransferMetadata{TransferId: req.Id})
	}
	if req.Amount == 0 {
		return errors.INVALID_TRANSFER.New("transfer %s has zero amount", req.Id).
			WithMetadata(errors.TransferMetadata{TransferId: req.Id})
	}
	if l.strictRedemptions && req.IsRedemption() && req.Operator != req.From {
		return errors.INVALID_TRANSFER.New(
			"redemption %s must be initiated by the holder", req.Id,
		).WithMetadata(errors.TransferMetadata{TransferId: req.Id})
	}

	registry, err := store.Registry(ctx)
	if err != nil {
		return err
	}
	approved, err := l.pipeline.validateTransfer(ctx, registry, req)
	if err != nil {
		return err
	}
	if !approved {
		return errors.TRANSFER_REJECTED.New(
			"transfer %s rejected by validation", req.Id,
		).WithMetadata(errors.TransferMetadata{TransferId: req.Id})
	}

	return store.ApplyTransfer(ctx, l.id, req, func() error {
		// After-hooks iterate their own snapshot, so a registration made by a
		// validation hook is already visible here.
		current, err := store.Registry(ctx)
		if err != nil {
			return err
		}
		approved, err := l.pipeline.executeAfterTransfer(ctx, current, req)
		if err != nil {
			return err
		}
		if !approved {
			return errors.TRANSFER_REJECTED.New(
				"transfer %s rejected after execution", req.Id,
			).WithMetadata(errors.TransferMetadata{TransferId: req.Id})
		}
		return nil
	})
}

func (l *tokenLogic) Issue(
	ctx context.Context, store *Store, address, partition string, amount uint64,
) errors.Error {
	return store.Credit(ctx, l.id, address, partition, amount)
}

func (l *tokenLogic) RegisterExtension(
	ctx context.Context, store *Store, extension string,
) errors.Error {
	registry, err := store.Registry(ctx)
	if err != nil {
		return err
	}
	if registry.State(extension) != domain.ExtensionNotRegistered {
		return errors.EXTENSION_ALREADY_REGISTERED.New(
			"extension %s is already registered", extension,
		).WithMetadata(errors.ExtensionMetadata{Extension: extension})
	}

	if err := l.handshake(ctx, extension); err != nil {
		return err
	}

	if err := registry.Register(extension); err != nil {
		return err
	}
	return store.SaveRegistry(ctx, l.id, registry)
}

// handshake actively queries the candidate for the capabilities every
// registered extension must support, instead of trusting it to implement
// them. The outcome is stored by registering, it is not re-checked on every
// pipeline run.
func (l *tokenLogic) handshake(ctx context.Context, extension string) errors.Error {
	candidate, err := l.resolver.Resolve(ctx, extension)
	if err != nil {
		return errors.CAPABILITY_MISMATCH.Wrap(err).
			WithMetadata(errors.CapabilityMetadata{
				Extension:  extension,
				Capability: string(domain.CapabilityIntrospection),
			})
	}

	for _, capability := range []domain.Capability{
		domain.CapabilityIntrospection, domain.CapabilityTransferHooks,
	} {
		supported, err := candidate.SupportsCapability(ctx, capability)
		if err != nil {
			return errors.EXTENSION_UNREACHABLE.Wrap(err).
				WithMetadata(errors.ExtensionMetadata{Extension: extension})
		}
		if !supported {
			return errors.CAPABILITY_MISMATCH.New(
				"extension %s does not support capability %s", extension, capability,
			).WithMetadata(errors.CapabilityMetadata{
				Extension:  extension,
				Capability: string(capability),
			})
		}
	}
	return nil
}

func (l *tokenLogic) EnableExtension(
	ctx context.Context, store *Store, extension string,
) errors.Error {
	return l.updateRegistry(ctx, store, func(registry *domain.Registry) errors.Error {
		return registry.Enable(extension)
	})
}

func (l *tokenLogic) DisableExtension(
	ctx context.Context, store *Store, extension string,
) errors.Error {
	return l.updateRegistry(ctx, store, func(registry *domain.Registry) errors.Error {
		return registry.Disable(extension)
	})
}

func (l *tokenLogic) RemoveExtension(
	ctx context.Context, store *Store, extension string,
) errors.Error {
	return l.updateRegistry(ctx, store, func(registry *domain.Registry) errors.Error {
		return registry.Remove(extension)
	})
}

// updateRegistry is a load-mutate-save round trip: a failed mutation never
// reaches the store, so no partial registry state is ever persisted.
func (l *tokenLogic) updateRegistry(
	ctx context.Context, store *Store, mutate func(*domain.Registry) errors.Error,
) errors.Error {
	registry, err := store.Registry(ctx)
	if err != nil {
		return err
	}
	if err := mutate(registry); err != nil {
		return err
	}
	return store.SaveRegistry(ctx, l.id, registry)
}
