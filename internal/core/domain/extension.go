package domain

type ExtensionState int

const (
	ExtensionNotRegistered ExtensionState = iota
	ExtensionEnabled
	ExtensionDisabled
)

func (s ExtensionState) String() string {
	switch s {
	case ExtensionEnabled:
		return "enabled"
	case ExtensionDisabled:
		return "disabled"
	default:
		return "not_registered"
	}
}

// Capability identifies a contract a candidate extension is asked to support
// during the registration handshake.
type Capability string

const (
	// CapabilityIntrospection is the handshake protocol itself. A candidate
	// that cannot answer capability queries cannot be registered.
	CapabilityIntrospection Capability = "introspection"
	// CapabilityTransferHooks is the transfer validation/observation contract.
	CapabilityTransferHooks Capability = "transfer-hooks"
)

// ExtensionRecord is the registry's view of one registered extension.
type ExtensionRecord struct {
	Address string
	State   ExtensionState
	Index   int
}
