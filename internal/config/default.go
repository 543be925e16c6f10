package config

import "time"

// Default configuration values.
const (
	DefaultAllowed     = "a-zA-Z0-9 ,."
	DefaultPlaceholder = "_"
	DefaultPairWorkers = 1

	DefaultEncoding = "base64"
	DefaultPattern  = "*.txt"
	DefaultSettle   = 250 * time.Millisecond

	DefaultOutputFormat = "table"

	DefaultGCInterval = 10 * time.Minute

	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Engine: EngineSection{
			Allowed:     DefaultAllowed,
			Placeholder: DefaultPlaceholder,
			PairWorkers: DefaultPairWorkers,
		},
		Input: InputSection{
			Encoding: DefaultEncoding,
			Pattern:  DefaultPattern,
			Settle:   DefaultSettle,
		},
		Output: OutputSection{
			Format: DefaultOutputFormat,
		},
		State: StateSection{
			SyncWrites: true,
			GCInterval: DefaultGCInterval,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
