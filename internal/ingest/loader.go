package ingest

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yndnr/padbreak/internal/core/domain"
)

// DefaultPattern matches batch files in a directory.
const DefaultPattern = "*.txt"

// maxLineBytes bounds a single encoded ciphertext line.
const maxLineBytes = 4 << 20

// Options controls batch loading.
type Options struct {
	// Encoding is the ciphertext line encoding (base64 or hex).
	Encoding string

	// Pattern is the file glob applied inside a batch directory.
	Pattern string

	// Workers bounds the files read concurrently.
	Workers int
}

// DefaultOptions returns base64 lines in *.txt files.
func DefaultOptions() Options {
	return Options{
		Encoding: EncodingBase64,
		Pattern:  DefaultPattern,
		Workers:  runtime.GOMAXPROCS(0),
	}
}

// ListBatchFiles returns the files in dir matching opts.Pattern in lexical
// order. Subdirectories are ignored.
func ListBatchFiles(dir string, opts Options) ([]string, error) {
	pattern := opts.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, domain.ErrInvalidConfig.WithDetails(fmt.Sprintf("bad pattern %q", pattern)).WithCause(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read batch dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(pattern, e.Name()); ok {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// MatchesPattern reports whether path's base name matches opts.Pattern.
func MatchesPattern(path string, opts Options) bool {
	pattern := opts.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	ok, _ := filepath.Match(pattern, filepath.Base(path))
	return ok
}

// LoadBatchDir loads every batch file of dir. Files are read concurrently;
// the result keeps lexical file order and batch IDs are assigned in that
// order.
func LoadBatchDir(ctx context.Context, dir string, opts Options) ([]*domain.Batch, error) {
	files, err := ListBatchFiles(dir, opts)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, domain.ErrNoBatches.WithDetails(filepath.Join(dir, opts.Pattern))
	}

	raw := make([][][]byte, len(files))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lines, err := readCiphertexts(path, opts.Encoding)
			if err != nil {
				return err
			}
			raw[i] = lines
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	batches := make([]*domain.Batch, len(files))
	for i, path := range files {
		b, err := domain.NewBatch(filepath.Base(path), raw[i])
		if err != nil {
			return nil, err
		}
		batches[i] = b
	}
	return batches, nil
}

// LoadBatchFile loads one batch file. The batch label is the file name.
func LoadBatchFile(path string, opts Options) (*domain.Batch, error) {
	lines, err := readCiphertexts(path, opts.Encoding)
	if err != nil {
		return nil, err
	}
	return domain.NewBatch(filepath.Base(path), lines)
}

// LoadBatches loads a single file, or every batch file when path is a
// directory.
func LoadBatches(ctx context.Context, path string, opts Options) ([]*domain.Batch, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if info.IsDir() {
		return LoadBatchDir(ctx, path, opts)
	}
	b, err := LoadBatchFile(path, opts)
	if err != nil {
		return nil, err
	}
	return []*domain.Batch{b}, nil
}

func readCiphertexts(path, encoding string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close()

	var out [][]byte
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b, err := DecodeLine(line, encoding)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", filepath.Base(path), lineNo, err)
		}
		out = append(out, b)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return out, nil
}

// LoadDictionary reads a crib file, one crib per line. An empty path
// returns the built-in dictionary.
func LoadDictionary(path string) (domain.Dictionary, error) {
	if path == "" {
		return domain.DefaultDictionary(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return domain.Dictionary{}, fmt.Errorf("open crib file: %w", err)
	}
	defer f.Close()

	d, err := domain.ParseDictionary(f)
	if err != nil {
		return domain.Dictionary{}, fmt.Errorf("read crib file: %w", err)
	}
	return d, nil
}
