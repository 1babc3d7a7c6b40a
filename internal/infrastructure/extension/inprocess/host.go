package inprocess

import (
	"context"
	"fmt"
	"sync"

	"github.com/tokengate/tokengated/internal/core/ports"
)

// host resolves extension addresses to extensions running inside the daemon
// process. Hosting an extension only makes it resolvable, registration
// against the token is a separate administrative step.
type host struct {
	mu         sync.RWMutex
	extensions map[string]ports.Extension
}

func NewExtensionResolver(extensions ...ports.Extension) ports.ExtensionResolver {
	hosted := make(map[string]ports.Extension, len(extensions))
	for _, extension := range extensions {
		hosted[extension.Address()] = extension
	}
	return &host{extensions: hosted}
}

func (h *host) Resolve(ctx context.Context, address string) (ports.Extension, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	extension, ok := h.extensions[address]
	if !ok {
		return nil, fmt.Errorf("no extension hosted at %s", address)
	}
	return extension, nil
}
