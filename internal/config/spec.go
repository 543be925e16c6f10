package config

import "time"

// Config is the root configuration for padbreak.
type Config struct {
	Engine  EngineSection  `koanf:"engine" json:"engine" yaml:"engine"`
	Cribs   CribsSection   `koanf:"cribs" json:"cribs" yaml:"cribs"`
	Input   InputSection   `koanf:"input" json:"input" yaml:"input"`
	Output  OutputSection  `koanf:"output" json:"output" yaml:"output"`
	State   StateSection   `koanf:"state" json:"state" yaml:"state"`
	Metrics MetricsSection `koanf:"metrics" json:"metrics" yaml:"metrics"`
	Log     LogSection     `koanf:"log" json:"log" yaml:"log"`
}

// EngineSection configures the recovery engine.
type EngineSection struct {
	// Allowed is the plausible plaintext character class, e.g. "a-zA-Z0-9 ,.".
	Allowed string `koanf:"allowed" json:"allowed" yaml:"allowed"`

	// Placeholder is the single byte rendered for unrecovered positions.
	Placeholder string `koanf:"placeholder" json:"placeholder" yaml:"placeholder"`

	// Workers bounds concurrent crib searches. 0 means GOMAXPROCS.
	Workers int `koanf:"workers" json:"workers" yaml:"workers"`

	// PairWorkers splits the pair scan of one crib. 1 means sequential.
	PairWorkers int `koanf:"pair_workers" json:"pair_workers" yaml:"pair_workers"`
}

// CribsSection configures the crib dictionary.
type CribsSection struct {
	// File is a crib file, one crib per line. Empty uses the built-in list.
	File string `koanf:"file" json:"file" yaml:"file"`
}

// InputSection configures batch loading.
type InputSection struct {
	Encoding string `koanf:"encoding" json:"encoding" yaml:"encoding"`
	Pattern  string `koanf:"pattern" json:"pattern" yaml:"pattern"`
	Workers  int    `koanf:"workers" json:"workers" yaml:"workers"`

	// Settle is how long a new file must stay unchanged before watch
	// processes it.
	Settle time.Duration `koanf:"settle" json:"settle" yaml:"settle"`
}

// OutputSection configures report rendering.
type OutputSection struct {
	// Format is table, json or yaml.
	Format string `koanf:"format" json:"format" yaml:"format"`

	// ShowPlaintext adds decrypted message previews to the report.
	ShowPlaintext bool `koanf:"show_plaintext" json:"show_plaintext" yaml:"show_plaintext"`

	// Progress shows the crib progress bar on stderr.
	Progress bool `koanf:"progress" json:"progress" yaml:"progress"`
}

// StateSection configures history persistence.
type StateSection struct {
	// Dir is the history directory. Empty keeps history in memory only.
	Dir string `koanf:"dir" json:"dir" yaml:"dir"`

	SyncWrites bool          `koanf:"sync_writes" json:"sync_writes" yaml:"sync_writes"`
	GCInterval time.Duration `koanf:"gc_interval" json:"gc_interval" yaml:"gc_interval"`

	// Passphrase seals history exports. Empty writes plain backups.
	Passphrase string `koanf:"passphrase" json:"passphrase" yaml:"passphrase"`
}

// MetricsSection configures Prometheus metrics.
type MetricsSection struct {
	// Textfile is written after recover finishes (node_exporter format).
	Textfile string `koanf:"textfile" json:"textfile" yaml:"textfile"`

	// Addr serves /metrics while watch runs.
	Addr string `koanf:"addr" json:"addr" yaml:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Format string `koanf:"format" json:"format" yaml:"format"`
}
