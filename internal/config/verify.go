package config

import (
	"fmt"
	"slices"

	"github.com/yndnr/padbreak/internal/core/domain"
	"github.com/yndnr/padbreak/internal/ingest"
	"github.com/yndnr/padbreak/internal/telemetry/logger"
)

// OutputFormats lists the accepted output.format values.
var OutputFormats = []string{"table", "json", "yaml"}

// Verify validates the configuration.
//
// An allowed class that parses to the empty set is not an error here: the
// engine reports it as a configuration conflict and still runs.
func Verify(cfg *Config) error {
	if err := verifyEngine(&cfg.Engine); err != nil {
		return err
	}
	if err := verifyInput(&cfg.Input); err != nil {
		return err
	}
	if !slices.Contains(OutputFormats, cfg.Output.Format) {
		return invalid("output.format", "must be one of %v, got %q", OutputFormats, cfg.Output.Format)
	}
	if cfg.State.GCInterval < 0 {
		return invalid("state.gc_interval", "must not be negative")
	}
	return verifyLog(&cfg.Log)
}

func verifyEngine(cfg *EngineSection) error {
	if _, err := domain.ParseByteSet(cfg.Allowed); err != nil {
		return invalid("engine.allowed", "%v", err)
	}
	if len(cfg.Placeholder) != 1 {
		return invalid("engine.placeholder", "must be exactly one byte, got %q", cfg.Placeholder)
	}
	if cfg.Workers < 0 {
		return invalid("engine.workers", "must not be negative")
	}
	if cfg.PairWorkers < 1 {
		return invalid("engine.pair_workers", "must be at least 1")
	}
	return nil
}

func verifyInput(cfg *InputSection) error {
	if !ingest.ValidEncoding(cfg.Encoding) {
		return invalid("input.encoding", "must be base64 or hex, got %q", cfg.Encoding)
	}
	if cfg.Pattern == "" {
		return invalid("input.pattern", "is required")
	}
	if cfg.Workers < 0 {
		return invalid("input.workers", "must not be negative")
	}
	if cfg.Settle < 0 {
		return invalid("input.settle", "must not be negative")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		return invalid("log.level", "%v", err)
	}
	if cfg.Format != "json" && cfg.Format != "text" {
		return invalid("log.format", "must be json or text, got %q", cfg.Format)
	}
	return nil
}

func invalid(key, format string, args ...any) error {
	return domain.ErrInvalidConfig.WithDetails(key + " " + fmt.Sprintf(format, args...))
}

// EngineOptions converts the engine section into domain options.
func (c *Config) EngineOptions() (domain.Options, error) {
	allowed, err := domain.ParseByteSet(c.Engine.Allowed)
	if err != nil {
		return domain.Options{}, err
	}
	if len(c.Engine.Placeholder) != 1 {
		return domain.Options{}, invalid("engine.placeholder", "must be exactly one byte, got %q", c.Engine.Placeholder)
	}
	return domain.Options{
		Allowed:     allowed,
		Placeholder: c.Engine.Placeholder[0],
	}, nil
}

// IngestOptions converts the input section into loader options.
func (c *Config) IngestOptions() ingest.Options {
	opts := ingest.DefaultOptions()
	opts.Encoding = c.Input.Encoding
	opts.Pattern = c.Input.Pattern
	if c.Input.Workers > 0 {
		opts.Workers = c.Input.Workers
	}
	return opts
}
