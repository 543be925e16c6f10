package command

import (
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/padbreak/internal/core/domain"
	"github.com/yndnr/padbreak/internal/infra/shutdown"
	"github.com/yndnr/padbreak/internal/ingest"
	"github.com/yndnr/padbreak/internal/telemetry/logger"
)

// RecoverCommand returns the recover command.
func RecoverCommand() *cli.Command {
	flags := append(engineFlags(),
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "Write Prometheus metrics in textfile format when done",
		},
	)
	return &cli.Command{
		Name:      "recover",
		Usage:     "Recover the keystream from a batch file or a directory of batches",
		ArgsUsage: "BATCH_PATH",
		Flags:     flags,
		Action:    recoverAction,
	}
}

func recoverAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: padbreak recover [flags] BATCH_PATH", 2)
	}

	rt, err := loadRuntime(c)
	if err != nil {
		return err
	}
	cfg := rt.Config

	ctx, stop := shutdown.WithSignals(c.Context)
	defer stop()
	ctx = logger.WithRunID(logger.WithLogger(ctx, rt.Log), ulid.Make().String())

	batches, err := ingest.LoadBatches(ctx, c.Args().First(), cfg.IngestOptions())
	if err != nil {
		return err
	}

	session, err := openSession(ctx, rt, c.Bool("resume"))
	if err != nil {
		return err
	}
	defer session.Close()

	for _, batch := range batches {
		if session.Skip(batch.Label) {
			logger.L(ctx).Info("skipping batch already in history", "label", batch.Label)
			continue
		}
		if _, err := session.Process(logger.WithBatchID(ctx, batch.ID), rt, batch); err != nil {
			if errors.Is(err, domain.ErrBatchCancelled) {
				logger.L(ctx).Warn("recovery interrupted, history kept up to the previous batch",
					"label", batch.Label)
			}
			return err
		}
	}

	if path := cfg.Metrics.Textfile; path != "" {
		if err := session.metrics.WriteTextfile(path); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	return rt.Print(session.Report(batches, cfg.Output.ShowPlaintext))
}
