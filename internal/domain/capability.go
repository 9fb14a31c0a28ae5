package domain

// Capability names an optional feature a collection may support
type Capability string

const (
	CapabilityNFCTags      Capability = "nfc_tags"
	CapabilityBLETags      Capability = "ble_tags"
	CapabilityRandomObject Capability = "random_object"
	CapabilitySaveObject   Capability = "save_object"
)

// ParseCapability converts a string to a Capability. ok is false for
// names that are not known.
func ParseCapability(s string) (Capability, bool) {
	switch Capability(s) {
	case CapabilityNFCTags, CapabilityBLETags, CapabilityRandomObject, CapabilitySaveObject:
		return Capability(s), true
	default:
		return "", false
	}
}

// Capabilities is the set of flags a collection is configured with
type Capabilities struct {
	NFCTags      bool `yaml:"nfc_tags" json:"nfc_tags"`
	BLETags      bool `yaml:"ble_tags" json:"ble_tags"`
	RandomObject bool `yaml:"random_object" json:"random_object"`
	SaveObject   bool `yaml:"save_object" json:"save_object"`
}

// SaveResponse is the outcome of saving an object
type SaveResponse string

const (
	SaveSuccess SaveResponse = "success"
	SaveNoop    SaveResponse = "noop"
)
