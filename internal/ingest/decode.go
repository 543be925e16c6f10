package ingest

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/yndnr/padbreak/internal/core/domain"
)

// Supported line encodings.
const (
	EncodingBase64 = "base64"
	EncodingHex    = "hex"
)

var base64Encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// DecodeLine decodes one ciphertext line. Surrounding whitespace is
// ignored. Base64 input may be padded or unpadded, standard or URL-safe;
// hex input may carry a "0x" prefix.
func DecodeLine(line, encoding string) ([]byte, error) {
	line = strings.TrimSpace(line)

	switch strings.ToLower(encoding) {
	case "", EncodingBase64:
		var firstErr error
		for _, enc := range base64Encodings {
			b, err := enc.DecodeString(line)
			if err == nil {
				return b, nil
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		return nil, domain.ErrDecode.WithDetails("base64").WithCause(firstErr)

	case EncodingHex:
		line = strings.TrimPrefix(strings.TrimPrefix(line, "0x"), "0X")
		b, err := hex.DecodeString(line)
		if err != nil {
			return nil, domain.ErrDecode.WithDetails("hex").WithCause(err)
		}
		return b, nil

	default:
		return nil, domain.ErrInvalidConfig.WithDetails(fmt.Sprintf("unknown encoding %q", encoding))
	}
}

// ValidEncoding reports whether name is a supported encoding.
func ValidEncoding(name string) bool {
	switch strings.ToLower(name) {
	case EncodingBase64, EncodingHex:
		return true
	}
	return false
}
