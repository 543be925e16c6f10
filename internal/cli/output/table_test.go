package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable_Render(t *testing.T) {
	table := &Table{Title: "BATCHES"}
	table.SetHeaders("ID", "LABEL")
	table.AddRow("pbb-1", "first.txt")
	table.AddRow("pbb-22", "b.txt")

	var buf bytes.Buffer
	if err := table.Render(&buf); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"BATCHES",
		"ID      LABEL",
		"pbb-1   first.txt",
		"pbb-22  b.txt",
	}
	if len(lines) != len(want) {
		t.Fatalf("Render() lines = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestTable_NoHeaders(t *testing.T) {
	table := &Table{Title: "T", Headers: []string{"A"}}
	table.AddRow("x")

	var buf bytes.Buffer
	if err := table.RenderWithOptions(&buf, true); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "x\n" {
		t.Errorf("RenderWithOptions(noHeaders) = %q, want %q", buf.String(), "x\n")
	}
}

func TestTableFormatter_Fallback(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"a": 1`) {
		t.Errorf("non-tabular data should fall back to JSON, got %q", buf.String())
	}

	buf.Reset()
	if err := (&TableFormatter{}).Format(&buf, nil); err != nil || buf.Len() != 0 {
		t.Errorf("Format(nil) = (%q, %v)", buf.String(), err)
	}
}

func TestPrintable(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"attack at dawn", "attack at dawn"},
		{"line\nbreak", "line.break"},
		{"bell\x07\x1b[2J", "bell..[2J"},
		{"caf\u00e9", "caf\u00e9"},
	}
	for _, tt := range tests {
		if got := Printable(tt.in); got != tt.want {
			t.Errorf("Printable(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIntsOrDash(t *testing.T) {
	if got := intsOrDash(nil); got != "-" {
		t.Errorf("intsOrDash(nil) = %q", got)
	}
	if got := intsOrDash([]int{4, 9}); got != "4,9" {
		t.Errorf("intsOrDash([4 9]) = %q", got)
	}
}
