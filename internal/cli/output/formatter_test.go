package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"text", FormatTable, false},
		{"", FormatTable, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatJSON, "*output.JSONFormatter"},
		{FormatYAML, "*output.YAMLFormatter"},
		{FormatTable, "*output.TableFormatter"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f := NewFormatter(tt.format)
			switch tt.want {
			case "*output.JSONFormatter":
				if _, ok := f.(*JSONFormatter); !ok {
					t.Errorf("NewFormatter(%q) = %T", tt.format, f)
				}
			case "*output.YAMLFormatter":
				if _, ok := f.(*YAMLFormatter); !ok {
					t.Errorf("NewFormatter(%q) = %T", tt.format, f)
				}
			default:
				if _, ok := f.(*TableFormatter); !ok {
					t.Errorf("NewFormatter(%q) = %T", tt.format, f)
				}
			}
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, sampleReport()); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	key := decoded["key"].(map[string]any)
	if key["hex"] != "0x????c3c3c3????" {
		t.Errorf("key.hex = %v", key["hex"])
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("JSON output should be indented")
	}
}

func TestJSONFormatter_NoHTMLEscape(t *testing.T) {
	var buf bytes.Buffer
	preview := PlaintextPreview{Batch: "b", Text: "a<b>&c"}
	if err := (&JSONFormatter{}).Format(&buf, preview); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"a<b>&c"`) {
		t.Errorf("text escaped: %s", buf.String())
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLFormatter{}).Format(&buf, sampleReport()); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var decoded struct {
		Key struct {
			Known int `yaml:"known"`
		} `yaml:"key"`
		Batches []struct {
			Label   string `yaml:"label"`
			Revoked []int  `yaml:"revoked"`
		} `yaml:"batches"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, buf.String())
	}
	if decoded.Key.Known != 3 {
		t.Errorf("key.known = %d, want 3", decoded.Key.Known)
	}
	if len(decoded.Batches) != 2 || decoded.Batches[0].Label != "b1.txt" {
		t.Errorf("batches = %+v", decoded.Batches)
	}
	if !strings.Contains(buf.String(), "\n  known: 3") {
		t.Errorf("YAML output should use two-space indentation:\n%s", buf.String())
	}
}
