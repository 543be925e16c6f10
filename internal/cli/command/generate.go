package command

import (
	"bufio"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/padbreak/internal/cli/output"
	"github.com/yndnr/padbreak/internal/ingest"
	"github.com/yndnr/padbreak/pkg/padgen"
)

// KeyFileName is the file generate writes the keystream to.
const KeyFileName = "key.hex"

// GenerateCommand returns the generate command.
func GenerateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"gen"},
		Usage:     "Encrypt plaintext lines into a many-time-pad test corpus",
		ArgsUsage: "PLAINTEXT_FILE (- for stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "seed",
				Usage:    "Secret the keystream is derived from",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "out",
				Aliases:  []string{"d"},
				Usage:    "Directory to write batch files and " + KeyFileName + " to",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "batches",
				Aliases: []string{"n"},
				Usage:   "Number of batch files",
				Value:   2,
			},
			&cli.StringFlag{
				Name:  "encoding",
				Usage: "Ciphertext line encoding: base64, hex",
			},
		},
		Action: generateAction,
	}
}

// generatedBatch describes one written file.
type generatedBatch struct {
	File     string `json:"file" yaml:"file"`
	Messages int    `json:"messages" yaml:"messages"`
}

type generateResult struct {
	Batches []generatedBatch `json:"batches" yaml:"batches"`
	KeyFile string           `json:"key_file" yaml:"key_file"`
	KeyLen  int              `json:"key_length" yaml:"key_length"`
}

// Tables implements output.Tabler.
func (r generateResult) Tables() []*output.Table {
	t := &output.Table{Headers: []string{"FILE", "MESSAGES"}}
	for _, b := range r.Batches {
		t.AddRow(b.File, fmt.Sprint(b.Messages))
	}
	t.AddRow(r.KeyFile, fmt.Sprintf("%d key bytes", r.KeyLen))
	return []*output.Table{t}
}

func generateAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: padbreak generate --seed SECRET --out DIR PLAINTEXT_FILE", 2)
	}

	rt, err := loadRuntime(c)
	if err != nil {
		return err
	}
	encoding := rt.Config.Input.Encoding

	lines, err := readPlaintexts(c.Args().First(), c.App.Reader)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return fmt.Errorf("no plaintext lines in %s", c.Args().First())
	}

	pad, err := padgen.New([]byte(c.String("seed")))
	if err != nil {
		return err
	}

	dir := c.String("out")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	groups := padgen.Split(lines, c.Int("batches"))
	result := generateResult{}
	maxLen := 0
	for i, group := range groups {
		name := fmt.Sprintf("batch-%03d.txt", i+1)
		path := filepath.Join(dir, name)
		if err := writeBatchFile(path, pad.EncryptAll(group), encoding, i+1, len(groups)); err != nil {
			return err
		}
		for _, p := range group {
			maxLen = max(maxLen, len(p))
		}
		result.Batches = append(result.Batches, generatedBatch{File: path, Messages: len(group)})
	}

	result.KeyFile = filepath.Join(dir, KeyFileName)
	result.KeyLen = maxLen
	key := hex.EncodeToString(pad.Keystream(maxLen)) + "\n"
	if err := os.WriteFile(result.KeyFile, []byte(key), 0o600); err != nil {
		return fmt.Errorf("write key: %w", err)
	}

	rt.Log.Info("corpus generated", "batches", len(groups), "messages", len(lines), "key_bytes", maxLen)
	return rt.Print(result)
}

// readPlaintexts reads non-empty lines from path, or from stdin for "-".
func readPlaintexts(path string, stdin io.Reader) ([][]byte, error) {
	var r io.Reader
	if path == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open plaintexts: %w", err)
		}
		defer f.Close()
		r = f
	}

	var lines [][]byte
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		lines = append(lines, []byte(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read plaintexts: %w", err)
	}
	return lines, nil
}

func writeBatchFile(path string, ciphertexts [][]byte, encoding string, n, total int) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# padbreak synthetic batch %d/%d, %s\n", n, total, encoding)
	for _, c := range ciphertexts {
		if strings.EqualFold(encoding, ingest.EncodingHex) {
			b.WriteString(hex.EncodeToString(c))
		} else {
			b.WriteString(base64.StdEncoding.EncodeToString(c))
		}
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write batch: %w", err)
	}
	return nil
}
