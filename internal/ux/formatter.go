package ux

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Formatter renders one command result.
type Formatter interface {
	Format(data any) error
}

// FormatterOptions configures NewFormatter. A nil Writer means stdout.
type FormatterOptions struct {
	Writer  io.Writer
	NoColor bool
	// Compact drops indentation from JSON output, including the JSON that
	// text output falls back to.
	Compact bool
}

// Formats lists the accepted --format values.
var Formats = []string{"text", "json", "yaml"}

type encodeFunc func(w io.Writer, data any, compact bool) error

var encoders = map[string]encodeFunc{
	"":     encodeText,
	"text": encodeText,
	"json": encodeJSON,
	"yaml": encodeYAML,
}

type formatter struct {
	w       io.Writer
	compact bool
	encode  encodeFunc
}

func (f *formatter) Format(data any) error {
	return f.encode(f.w, data, f.compact)
}

// NewFormatter returns the Formatter for format. An empty format is text.
func NewFormatter(format string, opts *FormatterOptions) (Formatter, error) {
	encode, ok := encoders[format]
	if !ok {
		return nil, fmt.Errorf("unknown format: %s (supported: %s)", format, strings.Join(Formats, ", "))
	}

	f := &formatter{w: os.Stdout, encode: encode}
	if opts != nil {
		if opts.Writer != nil {
			f.w = opts.Writer
		}
		f.compact = opts.Compact
	}
	return f, nil
}

// encodeJSON keeps non-ASCII text such as accented messages unescaped.
func encodeJSON(w io.Writer, data any, compact bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(data)
}

func encodeYAML(w io.Writer, data any, _ bool) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// encodeText prints messages and views as lines and everything else as JSON.
func encodeText(w io.Writer, data any, compact bool) error {
	switch v := data.(type) {
	case string:
		_, err := fmt.Fprintln(w, v)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(w, v.String())
		return err
	default:
		return encodeJSON(w, data, compact)
	}
}
