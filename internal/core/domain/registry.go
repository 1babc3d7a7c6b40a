package domain

import (
	"fmt"

	"github.com/tokengate/tokengated/pkg/errors"
)

// Registry tracks every known extension, its lifecycle state and its position
// in the registration order. It is a pure state machine: the capability
// handshake and hook invocations happen in the application layer, the registry
// only records their outcome.
//
// Positions are not stable across removals: Remove swaps the last extension
// into the freed slot, so callers must never cache an index.
type Registry struct {
	Sequence []string
	States   map[string]ExtensionState
	Indexes  map[string]int
}

func NewRegistry() *Registry {
	return &Registry{
		Sequence: make([]string, 0),
		States:   make(map[string]ExtensionState),
		Indexes:  make(map[string]int),
	}
}

func (r *Registry) State(extension string) ExtensionState {
	state, ok := r.States[extension]
	if !ok {
		return ExtensionNotRegistered
	}
	return state
}

// Register appends the extension to the sequence and marks it enabled.
func (r *Registry) Register(extension string) errors.Error {
	if r.State(extension) != ExtensionNotRegistered {
		return errors.EXTENSION_ALREADY_REGISTERED.New(
			"extension %s is already registered", extension,
		).WithMetadata(errors.ExtensionMetadata{Extension: extension})
	}

	r.Indexes[extension] = len(r.Sequence)
	r.Sequence = append(r.Sequence, extension)
	r.States[extension] = ExtensionEnabled
	return nil
}

// Enable is only reachable from the disabled state, registering already
// implies enabled.
func (r *Registry) Enable(extension string) errors.Error {
	state := r.State(extension)
	if state == ExtensionNotRegistered {
		return errors.EXTENSION_NOT_REGISTERED.New(
			"extension %s is not registered", extension,
		).WithMetadata(errors.ExtensionMetadata{Extension: extension})
	}
	if state != ExtensionDisabled {
		return errors.INVALID_STATE_TRANSITION.New(
			"cannot enable extension %s in state %s", extension, state,
		).WithMetadata(errors.StateTransitionMetadata{
			Extension: extension, State: state.String(),
		})
	}

	r.States[extension] = ExtensionEnabled
	return nil
}

func (r *Registry) Disable(extension string) errors.Error {
	state := r.State(extension)
	if state == ExtensionNotRegistered {
		return errors.EXTENSION_NOT_REGISTERED.New(
			"extension %s is not registered", extension,
		).WithMetadata(errors.ExtensionMetadata{Extension: extension})
	}
	if state != ExtensionEnabled {
		return errors.INVALID_STATE_TRANSITION.New(
			"cannot disable extension %s in state %s", extension, state,
		).WithMetadata(errors.StateTransitionMetadata{
			Extension: extension, State: state.String(),
		})
	}

	r.States[extension] = ExtensionDisabled
	return nil
}

// Remove deletes the extension in O(1) by moving the last extension of the
// sequence into the freed slot. The relative order of every other extension
// is preserved, the moved one changes position.
func (r *Registry) Remove(extension string) errors.Error {
	if r.State(extension) == ExtensionNotRegistered {
		return errors.EXTENSION_NOT_REGISTERED.New(
			"extension %s is not registered", extension,
		).WithMetadata(errors.ExtensionMetadata{Extension: extension})
	}

	idx := r.Indexes[extension]
	last := r.Sequence[len(r.Sequence)-1]

	// Self-assignment when removing the last extension, harmless. The index
	// entry written for it is deleted right after.
	r.Sequence[idx] = last
	r.Indexes[last] = idx
	delete(r.Indexes, extension)
	r.Sequence = r.Sequence[:len(r.Sequence)-1]
	delete(r.States, extension)
	return nil
}

// ListAll returns the registered extensions in registration order modulo
// removals, both enabled and disabled ones.
func (r *Registry) ListAll() []string {
	return append(make([]string, 0, len(r.Sequence)), r.Sequence...)
}

// Entries returns a point-in-time copy of every registered extension with its
// state. Hook pipelines iterate over this snapshot so that a reentrant
// register/remove triggered from inside a hook cannot skip or duplicate
// invocations within the same run.
func (r *Registry) Entries() []ExtensionRecord {
	entries := make([]ExtensionRecord, 0, len(r.Sequence))
	for i, addr := range r.Sequence {
		entries = append(entries, ExtensionRecord{
			Address: addr,
			State:   r.State(addr),
			Index:   i,
		})
	}
	return entries
}

// Rehydrate restores the lookup structures after a decode: empty slices and
// maps may come back nil from storage.
func (r *Registry) Rehydrate() {
	if r.Sequence == nil {
		r.Sequence = make([]string, 0)
	}
	if r.States == nil {
		r.States = make(map[string]ExtensionState)
	}
	if r.Indexes == nil {
		r.Indexes = make(map[string]int)
	}
}

// Validate re-checks the structural invariants tying sequence, state map and
// index map together.
func (r *Registry) Validate() error {
	if len(r.Sequence) != len(r.States) {
		return fmt.Errorf(
			"sequence length %d does not match state count %d",
			len(r.Sequence), len(r.States),
		)
	}
	if len(r.Sequence) != len(r.Indexes) {
		return fmt.Errorf(
			"sequence length %d does not match index count %d",
			len(r.Sequence), len(r.Indexes),
		)
	}
	seen := make(map[string]struct{}, len(r.Sequence))
	for i, addr := range r.Sequence {
		if _, ok := seen[addr]; ok {
			return fmt.Errorf("duplicate extension %s in sequence", addr)
		}
		seen[addr] = struct{}{}

		idx, ok := r.Indexes[addr]
		if !ok {
			return fmt.Errorf("extension %s has no index entry", addr)
		}
		if idx != i {
			return fmt.Errorf(
				"extension %s index entry %d does not match position %d", addr, idx, i,
			)
		}
		if r.State(addr) == ExtensionNotRegistered {
			return fmt.Errorf("extension %s is in sequence but has no state", addr)
		}
	}
	return nil
}
