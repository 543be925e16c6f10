package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter writes indented JSON. Plaintext previews may hold '<', '>'
// or '&', which are written unescaped.
type JSONFormatter struct{}

// Format implements Formatter.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
