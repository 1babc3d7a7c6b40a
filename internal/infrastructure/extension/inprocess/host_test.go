package inprocess

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tokengate/tokengated/internal/core/domain"
	"github.com/tokengate/tokengated/internal/core/ports"
)

func TestResolveHostedExtension(t *testing.T) {
	ctx := context.Background()
	resolver := NewExtensionResolver(
		NewPauser("pauser"),
		NewBlocklist("blocklist", nil),
	)

	extension, err := resolver.Resolve(ctx, "pauser")
	require.NoError(t, err)
	require.Equal(t, "pauser", extension.Address())

	_, err = resolver.Resolve(ctx, "unknown")
	require.Error(t, err)
}

func TestBuiltinsSupportRequiredCapabilities(t *testing.T) {
	ctx := context.Background()
	builtins := []ports.Extension{
		NewBlocklist("blocklist", nil),
		NewPauser("pauser"),
		NewAmountCap("amountcap", 100),
	}

	for _, extension := range builtins {
		for _, capability := range []domain.Capability{
			domain.CapabilityIntrospection, domain.CapabilityTransferHooks,
		} {
			supported, err := extension.SupportsCapability(ctx, capability)
			require.NoError(t, err, extension.Address())
			require.True(t, supported, extension.Address())
		}
		supported, err := extension.SupportsCapability(ctx, domain.Capability("unknown"))
		require.NoError(t, err)
		require.False(t, supported)

		_, ok := extension.(ports.TransferHooks)
		require.True(t, ok, extension.Address())
	}
}

func TestBlocklist(t *testing.T) {
	ctx := context.Background()
	blocked := NewBlocklist("blocklist", []string{"mallory"})

	fixtures := []struct {
		name     string
		req      domain.TransferRequest
		approved bool
	}{
		{
			name:     "clean transfer",
			req:      domain.TransferRequest{From: "alice", To: "bob"},
			approved: true,
		},
		{
			name:     "blocked source",
			req:      domain.TransferRequest{From: "mallory", To: "bob"},
			approved: false,
		},
		{
			name:     "blocked destination",
			req:      domain.TransferRequest{From: "alice", To: "mallory"},
			approved: false,
		},
		{
			name:     "blocked operator",
			req:      domain.TransferRequest{From: "alice", To: "bob", Operator: "mallory"},
			approved: false,
		},
	}

	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			approved, err := blocked.ValidateTransfer(ctx, f.req)
			require.NoError(t, err)
			require.Equal(t, f.approved, approved)

			approved, err = blocked.OnTransferExecuted(ctx, f.req)
			require.NoError(t, err)
			require.True(t, approved)
		})
	}
}

func TestPauser(t *testing.T) {
	ctx := context.Background()
	pauser := NewPauser("pauser")
	req := domain.TransferRequest{From: "alice", To: "bob", Amount: 10}

	approved, err := pauser.ValidateTransfer(ctx, req)
	require.NoError(t, err)
	require.True(t, approved)

	pauser.Pause()
	approved, err = pauser.ValidateTransfer(ctx, req)
	require.NoError(t, err)
	require.False(t, approved)

	// observation keeps running while paused
	approved, err = pauser.OnTransferExecuted(ctx, req)
	require.NoError(t, err)
	require.True(t, approved)

	pauser.Resume()
	approved, err = pauser.ValidateTransfer(ctx, req)
	require.NoError(t, err)
	require.True(t, approved)
}

func TestAmountCap(t *testing.T) {
	ctx := context.Background()
	capped := NewAmountCap("amountcap", 100)

	for amount, approved := range map[uint64]bool{99: true, 100: true, 101: false} {
		got, err := capped.ValidateTransfer(ctx, domain.TransferRequest{
			From: "alice", To: "bob", Amount: amount,
		})
		require.NoError(t, err)
		require.Equal(t, approved, got)
	}
}
