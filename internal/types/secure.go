package types

// secretMask replaces credential values wherever they could leak: fmt
// formatting, JSON encoding, structured log fields.
const secretMask = "***REDACTED***"

// SecretString holds a credential (the vision API key) that must never reach
// logs or serialized output. Both fmt and encoding/json see the mask; call
// Unmask at the one place the raw value goes on the wire.
type SecretString string

func (s SecretString) String() string { return secretMask }

func (s SecretString) MarshalJSON() ([]byte, error) {
	return []byte(`"` + secretMask + `"`), nil
}

// Unmask returns the raw value, for building the Authorization header.
func (s SecretString) Unmask() string { return string(s) }
