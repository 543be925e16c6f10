package command

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/padbreak/internal/cli/output"
	"github.com/yndnr/padbreak/internal/core/domain"
	"github.com/yndnr/padbreak/internal/core/service"
	"github.com/yndnr/padbreak/internal/ingest"
	"github.com/yndnr/padbreak/internal/storage"
	"github.com/yndnr/padbreak/internal/telemetry/metric"
)

// engineFlags are shared by recover and watch.
func engineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "allowed",
			Usage: `Allowed plaintext character class (default "a-zA-Z0-9 ,.")`,
		},
		&cli.StringFlag{
			Name:  "placeholder",
			Usage: "Byte printed for unrecovered positions",
		},
		&cli.StringFlag{
			Name:  "cribs",
			Usage: "Crib file, one crib per line (default: built-in list)",
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"j"},
			Usage:   "Concurrent crib searches (0 = number of CPUs)",
		},
		&cli.IntFlag{
			Name:  "pair-workers",
			Usage: "Goroutines scanning message pairs of one crib",
		},
		&cli.StringFlag{
			Name:  "encoding",
			Usage: "Ciphertext line encoding: base64, hex",
		},
		&cli.StringFlag{
			Name:  "pattern",
			Usage: `Batch file glob inside a directory (default "*.txt")`,
		},
		&cli.StringFlag{
			Name:  "state-dir",
			Usage: "Persist the batch history in this directory",
		},
		&cli.BoolFlag{
			Name:  "resume",
			Usage: "Continue the history stored in --state-dir",
		},
		&cli.BoolFlag{
			Name:  "show-plaintext",
			Usage: "Include decrypted previews in the report",
		},
		&cli.BoolFlag{
			Name:  "progress",
			Usage: "Show crib progress on stderr",
		},
	}
}

// recoverySession bundles an engine with its optional persistence.
type recoverySession struct {
	engine  *service.Engine
	metrics *metric.Registry
	kv      *storage.BadgerEngine
	store   *storage.HistoryStore
	bar     *output.ProgressBar

	// processed holds labels of batches restored from the store.
	processed map[string]struct{}
}

// openSession builds the engine described by rt.Config. With a state
// directory the history is persisted through the engine's history sink,
// and with resume the stored history is restored first.
func openSession(ctx context.Context, rt *Runtime, resume bool) (*recoverySession, error) {
	cfg := rt.Config

	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}
	dict, err := ingest.LoadDictionary(cfg.Cribs.File)
	if err != nil {
		return nil, err
	}

	s := &recoverySession{
		metrics:   metric.NewRegistry(),
		processed: make(map[string]struct{}),
	}

	engineOpts := []service.EngineOption{
		service.WithPairWorkers(cfg.Engine.PairWorkers),
		service.WithLogger(rt.Log),
		service.WithMetrics(s.metrics),
	}
	if cfg.Engine.Workers > 0 {
		engineOpts = append(engineOpts, service.WithWorkers(cfg.Engine.Workers))
	}
	if cfg.Output.Progress {
		s.bar = output.NewProgressBar(rt.Err, output.DefaultRefreshRate)
		engineOpts = append(engineOpts, service.WithProgress(s.bar.Update))
	}

	var restored []domain.BatchRecord
	if cfg.State.Dir != "" {
		if err := s.openStore(ctx, rt); err != nil {
			return nil, err
		}
		restored, err = s.prepareHistory(ctx, runMeta(opts, dict), resume)
		if err != nil {
			s.Close()
			return nil, err
		}
		engineOpts = append(engineOpts, service.WithHistorySink(s.store))
	} else if resume {
		return nil, fmt.Errorf("--resume requires --state-dir")
	}

	s.engine = service.NewEngine(opts, dict, engineOpts...)
	if len(restored) > 0 {
		s.engine.Restore(restored)
		for _, r := range restored {
			s.processed[r.Label] = struct{}{}
		}
	}
	return s, nil
}

func (s *recoverySession) openStore(ctx context.Context, rt *Runtime) error {
	cfg := rt.Config
	if err := os.MkdirAll(cfg.State.Dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	kvCfg := storage.DefaultKVConfig(cfg.State.Dir)
	kvCfg.Badger.SyncWrites = cfg.State.SyncWrites
	kvCfg.Badger.GCInterval = cfg.State.GCInterval

	kv, err := storage.NewBadgerEngine(kvCfg, rt.Log)
	if err != nil {
		return err
	}
	s.kv = kv.RegisterMetrics(s.metrics.Prometheus())
	s.store = storage.NewHistoryStore(kv)
	return nil
}

// prepareHistory checks that the store matches the engine configuration
// and returns the records to restore.
func (s *recoverySession) prepareHistory(ctx context.Context, meta storage.RunMeta, resume bool) ([]domain.BatchRecord, error) {
	stored, ok, err := s.store.LoadMeta(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.store.SaveMeta(ctx, meta)
	}

	n, err := s.store.Len(ctx)
	if err != nil {
		return nil, err
	}
	if !resume {
		if n > 0 {
			return nil, domain.ErrInvalidConfig.WithDetails(
				fmt.Sprintf("state dir already holds %d batches; pass --resume or use a new directory", n))
		}
		return nil, s.store.SaveMeta(ctx, meta)
	}
	if stored.Allowed != meta.Allowed || stored.Placeholder != meta.Placeholder || stored.Cribs != meta.Cribs {
		return nil, domain.ErrInvalidConfig.WithDetails(fmt.Sprintf(
			"stored history was built with allowed=%q placeholder=%q cribs=%d, current allowed=%q placeholder=%q cribs=%d",
			stored.Allowed, stored.Placeholder, stored.Cribs, meta.Allowed, meta.Placeholder, meta.Cribs))
	}
	return s.store.List(ctx)
}

func runMeta(opts domain.Options, dict domain.Dictionary) storage.RunMeta {
	return storage.RunMeta{
		Allowed:     opts.Allowed.String(),
		Placeholder: string(opts.Placeholder),
		Cribs:       dict.Len(),
	}
}

// Skip reports whether a batch with this label was restored from the store.
func (s *recoverySession) Skip(label string) bool {
	_, ok := s.processed[label]
	return ok
}

// Process runs one batch through the engine.
func (s *recoverySession) Process(ctx context.Context, rt *Runtime, batch *domain.Batch) (*service.BatchReport, error) {
	rep, err := s.engine.ProcessBatch(ctx, batch)
	if s.bar != nil {
		s.bar.Finish()
	}
	if err != nil {
		return nil, err
	}
	s.processed[batch.Label] = struct{}{}

	rt.Log.Info("batch processed",
		"batch_id", rep.Record.ID,
		"label", rep.Record.Label,
		"messages", rep.Record.Messages,
		"resolved", len(rep.Record.Key),
		"conflicts", rep.Record.Conflicts,
		"revoked", len(rep.Revoked),
		"elapsed", rep.Elapsed)
	return rep, nil
}

// Report builds the result document.
func (s *recoverySession) Report(batches []*domain.Batch, showPlaintext bool) *output.Report {
	r := output.NewReport(s.engine.Finalize(), s.engine.History())
	r.AddWarnings(s.engine.Warnings()...)
	if showPlaintext {
		for _, b := range batches {
			for i, msg := range b.Messages {
				r.AddPlaintext(b.Label, i, s.engine.Decrypt(msg))
			}
		}
	}
	return r
}

// Close releases the store.
func (s *recoverySession) Close() error {
	if s.kv == nil {
		return nil
	}
	return s.kv.Close()
}
