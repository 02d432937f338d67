package protocol

// Config provides the protocol's tunable parameters. Zero values are
// replaced by defaults in NewLedger.
type Config struct {
	// CooldownSeconds is the shared cooldown duration for both action
	// classes (submission and decryption request). Zero disables the gate.
	// The owner can change it at runtime with SetCooldown.
	CooldownSeconds uint64 `json:"cooldown_seconds"`

	// ScoreDivisor is the public constant the content×interaction product
	// is divided by. Fixed at 100 in the reference protocol.
	ScoreDivisor uint64 `json:"score_divisor"`

	// CleartextWidth is the expected byte width of a single decrypted
	// value in an oracle result.
	CleartextWidth int `json:"cleartext_width"`
}

const (
	// DefaultCooldownSeconds is the initial submission/decryption cooldown.
	DefaultCooldownSeconds = 60

	// DefaultScoreDivisor is the protocol's fixed scoring divisor.
	DefaultScoreDivisor = 100

	// DefaultCleartextWidth matches the 256-bit encrypted integer model:
	// each decrypted value is a 32-byte big-endian integer.
	DefaultCleartextWidth = 32
)

// DefaultConfig returns the reference protocol parameters.
func DefaultConfig() *Config {
	return &Config{
		CooldownSeconds: DefaultCooldownSeconds,
		ScoreDivisor:    DefaultScoreDivisor,
		CleartextWidth:  DefaultCleartextWidth,
	}
}
