package ingest

import (
	"errors"
	"testing"

	"github.com/yndnr/padbreak/internal/core/domain"
)

func TestDecodeLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		encoding string
		want     string
		wantErr  error
	}{
		{"base64 padded", "aGVsbG8=", "base64", "hello", nil},
		{"base64 unpadded", "aGVsbG8", "base64", "hello", nil},
		{"base64 url-safe", "_-8", "base64", "\xff\xef", nil},
		{"base64 default encoding", " aGk= \r", "", "hi", nil},
		{"base64 invalid", "!!!", "base64", "", domain.ErrDecode},
		{"hex", "68656c6c6f", "hex", "hello", nil},
		{"hex prefixed upper", "0xFF00", "HEX", "\xff\x00", nil},
		{"hex odd length", "abc", "hex", "", domain.ErrDecode},
		{"unknown encoding", "abc", "rot13", "", domain.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeLine(tt.line, tt.encoding)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeLine() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeLine() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("DecodeLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidEncoding(t *testing.T) {
	for name, want := range map[string]bool{"base64": true, "HEX": true, "": false, "b32": false} {
		if got := ValidEncoding(name); got != want {
			t.Errorf("ValidEncoding(%q) = %v, want %v", name, got, want)
		}
	}
}
