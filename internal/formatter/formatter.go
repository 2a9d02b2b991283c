package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/mcncl/jsontree/internal/config"
	"github.com/mcncl/jsontree/node"
)

// Options controls how a tree is rendered
type Options struct {
	// Compact drops all whitespace between tokens.
	Compact bool
	// BufferHint is the starting size of the growing output buffer.
	BufferHint int
	// FixedBuffer, when positive, renders into a buffer of exactly this many
	// bytes and fails if the output does not fit.
	FixedBuffer int
	// TrailingNewline ends the output with a newline.
	TrailingNewline bool
}

// DefaultOptions returns pretty output with a trailing newline
func DefaultOptions() Options {
	return Options{BufferHint: 256, TrailingNewline: true}
}

// OptionsFromConfig derives render options from the loaded configuration
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	hint, err := cfg.BufferHintBytes()
	if err != nil {
		return Options{}, err
	}
	fixed, err := cfg.FixedBufferBytes()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Compact:         cfg.Output.Compact,
		BufferHint:      hint,
		FixedBuffer:     fixed,
		TrailingNewline: cfg.Output.TrailingNewline,
	}, nil
}

// Formatter is responsible for rendering document trees as JSON text
type Formatter struct {
	opts Options
}

// NewFormatter creates a new Formatter instance with default options
func NewFormatter() *Formatter {
	return &Formatter{opts: DefaultOptions()}
}

// NewFormatterWithOptions creates a Formatter with custom options
func NewFormatterWithOptions(opts Options) *Formatter {
	return &Formatter{opts: opts}
}

// Format renders v according to the formatter options
func (f *Formatter) Format(v *node.Value) (string, error) {
	var (
		out string
		err error
	)
	if f.opts.FixedBuffer > 0 {
		out, err = f.formatFixed(v)
	} else {
		out, err = node.PrintBuffered(v, f.opts.BufferHint, !f.opts.Compact)
	}
	if err != nil {
		return "", fmt.Errorf("failed to render JSON: %w", err)
	}
	return f.finish(out), nil
}

func (f *Formatter) formatFixed(v *node.Value) (string, error) {
	buf := make([]byte, f.opts.FixedBuffer)
	n, err := node.PrintPreallocated(v, buf, !f.opts.Compact)
	if err != nil {
		return "", err
	}
	return string(buf[:n]), nil
}

// Minify strips whitespace and comments from JSON text without parsing it.
// data is rewritten in place.
func (f *Formatter) Minify(data []byte) string {
	return f.finish(string(node.Minify(data)))
}

// Write renders v to w
func (f *Formatter) Write(w io.Writer, v *node.Value) error {
	out, err := f.Format(v)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func (f *Formatter) finish(out string) string {
	if f.opts.TrailingNewline && !strings.HasSuffix(out, "\n") {
		return out + "\n"
	}
	return out
}
