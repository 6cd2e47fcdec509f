package clausewitz

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/pdxkit/clausewitz/internal/parser"
	"github.com/pdxkit/clausewitz/script"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode returns data as text. A leading byte-order mark is stripped.
// Files that are not valid UTF-8 are read as Windows-1252, the encoding
// of older game files.
func Decode(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

// Parse decodes and parses one script file held in memory. On a syntax
// error it returns a nil document and a *script.SyntaxError.
func Parse(data []byte, opts ...Option) (*script.Document, error) {
	cfg := newConfig(opts)
	return parse(data, cfg.filename, cfg)
}

// ParseFile reads and parses the file at path.
func ParseFile(path string, opts ...Option) (*script.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	cfg := newConfig(opts)
	name := cfg.filename
	if name == "" {
		name = path
	}
	return parse(data, name, cfg)
}

func parse(data []byte, filename string, cfg config) (*script.Document, error) {
	text := Decode(data)
	return parser.New([]byte(text), filename, cfg.logger, cfg.diagConfig).Parse()
}
