// Package numerator provides domain contracts for document auto-numbering.
package numerator

// Strategy defines the numbering generation strategy.
type Strategy int

const (
	// StrategyStrict bumps the sequence row for every number inside the
	// caller's transaction, so a rolled back document releases its number.
	StrategyStrict Strategy = iota

	// StrategyCached allocates ranges of numbers in memory.
	// May produce gaps if the process restarts.
	StrategyCached
)

// Options configuration for number generation.
type Options struct {
	Strategy Strategy
	// RangeSize is the number of values reserved at once by StrategyCached (default 50).
	RangeSize int64
}

// DefaultOptions returns standard options (Strict).
func DefaultOptions() *Options {
	return &Options{Strategy: StrategyStrict}
}

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "SUP", "WO")
	Prefix string

	IncludeYear bool

	// PadWidth is the minimum number width (default 5)
	PadWidth int

	// ResetPeriod: "year", "month", "never"
	ResetPeriod string
}

// DefaultConfig returns PREFIX-YEAR-NNNNN numbering reset yearly.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: "year",
	}
}
