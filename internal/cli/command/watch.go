package command

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/padbreak/internal/cli/output"
	"github.com/yndnr/padbreak/internal/core/domain"
	"github.com/yndnr/padbreak/internal/infra/dirwatch"
	"github.com/yndnr/padbreak/internal/infra/shutdown"
	"github.com/yndnr/padbreak/internal/ingest"
	"github.com/yndnr/padbreak/internal/telemetry/logger"
)

// shutdownTimeout bounds the hooks that close the store and the metrics
// listener.
const shutdownTimeout = 10 * time.Second

// WatchCommand returns the watch command.
func WatchCommand() *cli.Command {
	flags := append(engineFlags(),
		&cli.DurationFlag{
			Name:  "settle",
			Usage: "Quiet period before a new file is read",
		},
		&cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "Serve Prometheus metrics on this address, e.g. 127.0.0.1:9464",
		},
	)
	return &cli.Command{
		Name:      "watch",
		Usage:     "Process a batch directory, then every batch file added to it",
		ArgsUsage: "BATCH_DIR",
		Flags:     flags,
		Action:    watchAction,
	}
}

func watchAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: padbreak watch [flags] BATCH_DIR", 2)
	}
	dir := c.Args().First()

	rt, err := loadRuntime(c)
	if err != nil {
		return err
	}
	cfg := rt.Config
	ingestOpts := cfg.IngestOptions()

	ctx, stop := shutdown.WithSignals(c.Context)
	defer stop()
	ctx = logger.WithRunID(logger.WithLogger(ctx, rt.Log), ulid.Make().String())

	session, err := openSession(ctx, rt, c.Bool("resume"))
	if err != nil {
		return err
	}

	h := shutdown.NewHandler(shutdownTimeout)
	h.OnShutdown(func(context.Context) error {
		rt.Log.Info("closing history store")
		return session.Close()
	})

	if addr := cfg.Metrics.Addr; addr != "" {
		srv := serveMetrics(rt, addr, session.metrics.Handler())
		h.OnShutdown(func(ctx context.Context) error {
			rt.Log.Info("stopping metrics listener", "addr", addr)
			return srv.Shutdown(ctx)
		})
	}

	var loaded []*domain.Batch
	process := func(path string) error {
		batch, err := ingest.LoadBatchFile(path, ingestOpts)
		if err != nil {
			return err
		}
		if session.Skip(batch.Label) {
			logger.L(ctx).Info("skipping batch already in history", "label", batch.Label)
			return nil
		}
		rep, err := session.Process(logger.WithBatchID(ctx, batch.ID), rt, batch)
		if err != nil {
			return err
		}
		loaded = append(loaded, batch)

		final := session.engine.Finalize()
		return rt.Print(output.BatchEvent{
			Batch:           output.SummarizeBatch(rep.Record),
			RevokedPrevious: rep.Revoked,
			Key: output.KeySummary{
				Length: final.Len(),
				Known:  final.KnownCount(),
				Hex:    final.Hex(),
			},
		})
	}

	runErr := watchDir(ctx, rt, dir, ingestOpts, process)

	if shutdownErr := h.Shutdown(); shutdownErr != nil {
		rt.Log.Error("shutdown error", "error", shutdownErr)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	rt.Log.Info("watch stopped", "batches", len(loaded))
	return rt.Print(session.Report(loaded, cfg.Output.ShowPlaintext))
}

// listBatchFiles lists the batch files present when a watch starts.
var listBatchFiles = ingest.ListBatchFiles

// watchDir processes the batch files already in dir, then new ones until
// ctx is cancelled. A batch that fails to load is logged and skipped;
// cancellation and storage failures stop the watch.
func watchDir(ctx context.Context, rt *Runtime, dir string, opts ingest.Options, process func(string) error) error {
	w, err := dirwatch.New(dir,
		dirwatch.WithLogger(rt.Log),
		dirwatch.WithSettle(rt.Config.Input.Settle),
		dirwatch.WithFilter(func(path string) bool { return ingest.MatchesPattern(path, opts) }),
	)
	if err != nil {
		return err
	}

	// The watcher is already subscribed, so a file created while listing
	// shows up either here or as an event; Ignore drops the duplicate.
	existing, err := listBatchFiles(dir, opts)
	if err != nil {
		w.Stop()
		return err
	}
	w.Ignore(existing...)

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	// handle returns only the errors that end the watch.
	handle := func(path string) error {
		err := process(path)
		if err == nil || errors.Is(err, domain.ErrBatchCancelled) || errors.Is(err, domain.ErrStorage) {
			return err
		}
		rt.Log.Error("batch skipped", "file", filepath.Base(path), "error", err)
		return nil
	}

	for _, path := range existing {
		if err := handle(path); err != nil {
			w.Stop()
			return err
		}
	}

	w.OnFile(func(path string) {
		if err := handle(path); err != nil {
			cancel(err)
		}
	})

	rt.Log.Info("waiting for new batches", "dir", dir, "pattern", opts.Pattern)
	if err := w.Run(ctx); err != nil {
		if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
			return cause
		}
		return err
	}
	return nil
}

func serveMetrics(rt *Runtime, addr string, handler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		rt.Log.Info("metrics listener started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.Log.Error("metrics listener error", "error", err)
		}
	}()
	return srv
}
