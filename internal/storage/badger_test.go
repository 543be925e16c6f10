package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/padbreak/internal/telemetry/logger"
)

func newMemoryEngine(t *testing.T) *BadgerEngine {
	t.Helper()
	engine, err := NewBadgerEngine(InMemoryKVConfig(), logger.Discard())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { engine.Close() })
	return engine
}

func TestNewBadgerEngine_RequiresDir(t *testing.T) {
	if _, err := NewBadgerEngine(KVConfig{}, logger.Discard()); err == nil {
		t.Error("NewBadgerEngine() without dir should fail")
	}
}

func TestBadgerEngine_BasicOperations(t *testing.T) {
	engine := newMemoryEngine(t)
	ctx := context.Background()

	t.Run("Set and Get", func(t *testing.T) {
		if err := engine.Set(ctx, []byte("k"), []byte("v")); err != nil {
			t.Fatal(err)
		}
		got, err := engine.Get(ctx, []byte("k"))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "v" {
			t.Errorf("expected v, got %s", got)
		}
	})

	t.Run("Get non-existent key", func(t *testing.T) {
		_, err := engine.Get(ctx, []byte("missing"))
		if !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := engine.Set(ctx, []byte("gone"), []byte("x")); err != nil {
			t.Fatal(err)
		}
		if err := engine.Delete(ctx, []byte("gone")); err != nil {
			t.Fatal(err)
		}
		if _, err := engine.Get(ctx, []byte("gone")); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
		}
	})

	t.Run("SetMany", func(t *testing.T) {
		err := engine.SetMany(ctx, []Entry{
			{Key: []byte("m1"), Value: []byte("1")},
			{Key: []byte("m2"), Value: []byte("2")},
		})
		if err != nil {
			t.Fatal(err)
		}
		for _, k := range []string{"m1", "m2"} {
			if _, err := engine.Get(ctx, []byte(k)); err != nil {
				t.Errorf("Get(%s) error = %v", k, err)
			}
		}
	})
}

func TestBadgerEngine_Scan(t *testing.T) {
	engine := newMemoryEngine(t)
	ctx := context.Background()

	for i := 5; i >= 0; i-- {
		if err := engine.Set(ctx, []byte(fmt.Sprintf("batch/%02d", i)), []byte{byte(i)}); err != nil {
			t.Fatal(err)
		}
	}
	if err := engine.Set(ctx, []byte("meta/run"), []byte("{}")); err != nil {
		t.Fatal(err)
	}

	t.Run("prefix in key order", func(t *testing.T) {
		var keys []string
		err := engine.Scan(ctx, []byte("batch/"), func(key, _ []byte) bool {
			keys = append(keys, string(key))
			return true
		})
		if err != nil {
			t.Fatal(err)
		}
		want := "batch/00 batch/01 batch/02 batch/03 batch/04 batch/05"
		if got := strings.Join(keys, " "); got != want {
			t.Errorf("Scan() keys = %s, want %s", got, want)
		}
	})

	t.Run("stop early", func(t *testing.T) {
		n := 0
		err := engine.Scan(ctx, []byte("batch/"), func(_, _ []byte) bool {
			n++
			return n < 2
		})
		if err != nil {
			t.Fatal(err)
		}
		if n != 2 {
			t.Errorf("callback ran %d times, want 2", n)
		}
	})
}

func TestBadgerEngine_BackupRestore(t *testing.T) {
	src := newMemoryEngine(t)
	ctx := context.Background()
	if err := src.Set(ctx, []byte("batch/a"), []byte("payload")); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := src.Backup(ctx, &buf); err != nil {
		t.Fatalf("Backup() error = %v", err)
	}

	dst := newMemoryEngine(t)
	if err := dst.Restore(ctx, &buf); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	got, err := dst.Get(ctx, []byte("batch/a"))
	if err != nil || string(got) != "payload" {
		t.Errorf("Get() after restore = (%q, %v)", got, err)
	}
}

func TestBadgerEngine_OnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	cfg := DefaultKVConfig(dir)
	cfg.Badger.GCInterval = 0
	engine, err := NewBadgerEngine(cfg, logger.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if err := engine.Set(ctx, []byte("k"), []byte("persisted")); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.GC(ctx); err != nil {
		t.Errorf("GC() error = %v", err)
	}
	if err := engine.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewBadgerEngine(cfg, logger.Discard())
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, []byte("k"))
	if err != nil || string(got) != "persisted" {
		t.Errorf("Get() after reopen = (%q, %v)", got, err)
	}
}

func TestBadgerEngine_Close(t *testing.T) {
	engine, err := NewBadgerEngine(InMemoryKVConfig(), logger.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if err := engine.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := engine.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := engine.Get(context.Background(), []byte("k")); !errors.Is(err, ErrClosed) {
		t.Errorf("Get() after Close = %v, want ErrClosed", err)
	}
}

func TestBadgerEngine_StatsAndMetrics(t *testing.T) {
	engine := newMemoryEngine(t)
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	engine.RegisterMetrics(reg)

	if n, err := engine.GC(ctx); err != nil || n != 0 {
		t.Errorf("GC() on in-memory store = (%d, %v), want (0, nil)", n, err)
	}

	stats, err := engine.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalSize != stats.LSMSize+stats.ValueLogSize {
		t.Errorf("TotalSize = %d, want LSMSize + ValueLogSize", stats.TotalSize)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	if len(families) != 4 {
		t.Errorf("registered %d metric families, want 4", len(families))
	}
}
