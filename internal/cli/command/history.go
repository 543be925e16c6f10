package command

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/padbreak/internal/cli/output"
	"github.com/yndnr/padbreak/internal/core/domain"
	"github.com/yndnr/padbreak/internal/core/service"
	"github.com/yndnr/padbreak/internal/storage"
	"github.com/yndnr/padbreak/pkg/crypto/adaptive"
)

// HistoryCommand returns the history subcommand group.
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect and move a persisted batch history",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "state-dir",
				Usage: "History directory (defaults to state.dir from the configuration)",
			},
		},
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List batch records in processing order",
				Action:  historyList,
			},
			{
				Name:   "report",
				Usage:  "Merge the stored key maps and print the recovery report",
				Action: historyReport,
			},
			{
				Name:      "show",
				Usage:     "Show one batch record",
				ArgsUsage: "BATCH_ID",
				Action:    historyShow,
			},
			{
				Name:      "export",
				Usage:     "Write a backup of the history",
				ArgsUsage: "FILE",
				Flags:     []cli.Flag{passphraseFlag()},
				Action:    historyExport,
			},
			{
				Name:      "import",
				Usage:     "Load a backup written by export",
				ArgsUsage: "FILE",
				Flags:     []cli.Flag{passphraseFlag()},
				Action:    historyImport,
			},
			{
				Name:   "gc",
				Usage:  "Reclaim space in the history store",
				Action: historyGC,
			},
		},
	}
}

func passphraseFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "passphrase",
		Usage: "Seal or open the backup with this passphrase (or PADBREAK_STATE_PASSPHRASE)",
	}
}

// openHistory opens the configured history store. Unless create is set
// the directory must already exist.
func openHistory(rt *Runtime, create bool) (*storage.BadgerEngine, *storage.HistoryStore, error) {
	dir := rt.Config.State.Dir
	if dir == "" {
		return nil, nil, cli.Exit("no history directory: pass --state-dir or set state.dir", 2)
	}
	if !create {
		if _, err := os.Stat(dir); err != nil {
			return nil, nil, fmt.Errorf("open history: %w", err)
		}
	}

	kvCfg := storage.DefaultKVConfig(dir)
	kvCfg.Badger.SyncWrites = rt.Config.State.SyncWrites
	kvCfg.Badger.GCInterval = 0
	kv, err := storage.NewBadgerEngine(kvCfg, rt.Log)
	if err != nil {
		return nil, nil, err
	}
	return kv, storage.NewHistoryStore(kv), nil
}

// withHistory runs fn against the configured history store.
func withHistory(c *cli.Context, create bool, fn func(*Runtime, *storage.BadgerEngine, *storage.HistoryStore) error) error {
	rt, err := loadRuntime(c)
	if err != nil {
		return err
	}
	kv, store, err := openHistory(rt, create)
	if err != nil {
		return err
	}
	defer kv.Close()
	return fn(rt, kv, store)
}

func historyList(c *cli.Context) error {
	return withHistory(c, false, func(rt *Runtime, _ *storage.BadgerEngine, store *storage.HistoryStore) error {
		records, err := store.List(c.Context)
		if err != nil {
			return err
		}
		list := make(output.BatchList, len(records))
		for i, r := range records {
			list[i] = output.SummarizeBatch(r)
		}
		return rt.Print(list)
	})
}

func historyReport(c *cli.Context) error {
	return withHistory(c, false, func(rt *Runtime, _ *storage.BadgerEngine, store *storage.HistoryStore) error {
		records, err := store.List(c.Context)
		if err != nil {
			return err
		}
		keys := make([]domain.KeyMap, len(records))
		length := 0
		for i, r := range records {
			keys[i] = r.Key
			length = max(length, r.Length)
		}
		return rt.Print(output.NewReport(service.Merge(keys, length), records))
	})
}

func historyShow(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: padbreak history show BATCH_ID", 2)
	}
	id := c.Args().First()
	if !domain.IsValidBatchID(id) {
		return domain.ErrInvalidConfig.WithDetails(fmt.Sprintf("malformed batch id %q", id))
	}

	return withHistory(c, false, func(rt *Runtime, _ *storage.BadgerEngine, store *storage.HistoryStore) error {
		rec, err := store.Get(c.Context, id)
		if err != nil {
			return err
		}
		return rt.Print(output.BatchList{output.SummarizeBatch(rec)})
	})
}

func historyExport(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: padbreak history export [--passphrase P] FILE", 2)
	}
	path := c.Args().First()

	return withHistory(c, false, func(rt *Runtime, _ *storage.BadgerEngine, store *storage.HistoryStore) error {
		var buf bytes.Buffer
		if err := store.Export(c.Context, &buf); err != nil {
			return err
		}

		data := buf.Bytes()
		sealed := rt.Config.State.Passphrase != ""
		if sealed {
			var err error
			if data, err = adaptive.Seal([]byte(rt.Config.State.Passphrase), data); err != nil {
				return fmt.Errorf("seal export: %w", err)
			}
		} else {
			rt.Log.Warn("exporting history without a passphrase; the file contains recovered key bytes")
		}

		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		rt.Log.Info("history exported", "file", path, "bytes", len(data), "sealed", sealed)
		return nil
	})
}

func historyImport(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: padbreak history import [--passphrase P] FILE", 2)
	}
	path := c.Args().First()

	return withHistory(c, true, func(rt *Runtime, _ *storage.BadgerEngine, store *storage.HistoryStore) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read import: %w", err)
		}

		if adaptive.IsSealed(data) {
			passphrase := rt.Config.State.Passphrase
			if passphrase == "" {
				return errors.New("backup is sealed: pass --passphrase")
			}
			if data, err = adaptive.Open([]byte(passphrase), data); err != nil {
				return err
			}
		}

		if err := store.Import(c.Context, bytes.NewReader(data)); err != nil {
			return err
		}
		n, err := store.Len(c.Context)
		if err != nil {
			return err
		}
		rt.Log.Info("history imported", "file", path, "batches", n)
		return nil
	})
}

// gcResult reports a history store compaction.
type gcResult struct {
	Rewrites  int    `json:"rewrites" yaml:"rewrites"`
	LSMSize   uint64 `json:"lsm_size" yaml:"lsm_size"`
	VLogSize  uint64 `json:"vlog_size" yaml:"vlog_size"`
	TotalSize uint64 `json:"total_size" yaml:"total_size"`
}

// Tables implements output.Tabler.
func (r gcResult) Tables() []*output.Table {
	t := &output.Table{Headers: []string{"REWRITES", "LSM", "VLOG", "TOTAL"}}
	t.AddRow(fmt.Sprint(r.Rewrites), fmt.Sprint(r.LSMSize), fmt.Sprint(r.VLogSize), fmt.Sprint(r.TotalSize))
	return []*output.Table{t}
}

func historyGC(c *cli.Context) error {
	return withHistory(c, false, func(rt *Runtime, kv *storage.BadgerEngine, _ *storage.HistoryStore) error {
		rewrites, err := kv.GC(c.Context)
		if err != nil {
			return err
		}
		stats, err := kv.Stats(c.Context)
		if err != nil {
			return err
		}
		return rt.Print(gcResult{
			Rewrites:  rewrites,
			LSMSize:   stats.LSMSize,
			VLogSize:  stats.ValueLogSize,
			TotalSize: stats.TotalSize,
		})
	})
}
