package hierarchy

// Config holds indenter configuration
type Config struct {
	// OrdinalSlack is how far a numbered block's ordinal may advance past
	// an open class's last ordinal and still continue it. A slack of 2
	// tolerates one item lost to a merge.
	// Default: 2
	OrdinalSlack int

	// SizeTolerance is the size difference below which two classes count
	// as the same size.
	// Default: 1.0
	SizeTolerance float64

	// IndentTolerance is how much further left a class must start to
	// outrank another on indentation alone.
	// Default: 20
	IndentTolerance float64

	// CollapseSingletons removes levels used by exactly one block.
	// Default: true
	CollapseSingletons bool
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		OrdinalSlack:       2,
		SizeTolerance:      1.0,
		IndentTolerance:    20,
		CollapseSingletons: true,
	}
}
