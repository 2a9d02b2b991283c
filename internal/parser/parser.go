package parser

import (
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcncl/jsontree/internal/config"
	"github.com/mcncl/jsontree/internal/errors" // Custom errors package
	"github.com/mcncl/jsontree/internal/models"
	"github.com/mcncl/jsontree/node"
)

// Options controls how input is turned into a tree
type Options struct {
	// Strict rejects anything but whitespace after the first value.
	Strict bool
	// AllowComments strips // and /* */ comments before parsing.
	AllowComments bool
	// MaxDepth overrides the nesting limit when positive.
	MaxDepth int
	// MaxMemory caps the bytes the tree may hold. Zero means no limit.
	MaxMemory int64
}

// DefaultOptions returns strict parsing with no memory limit
func DefaultOptions() Options {
	return Options{Strict: true}
}

// OptionsFromConfig derives parse options from the loaded configuration
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	limit, err := cfg.MaxMemoryBytes()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Strict:        cfg.Parse.Strict,
		AllowComments: cfg.Parse.AllowComments,
		MaxDepth:      cfg.Parse.MaxDepth,
		MaxMemory:     limit,
	}, nil
}

// allocator builds the accounting stack for one document. The counting layer
// sits on top so it sees failures of the budget below it.
func (o Options) allocator() *node.CountingAllocator {
	var inner node.Allocator = node.HeapAllocator{}
	if o.MaxMemory > 0 {
		inner = node.NewBudgetAllocator(inner, o.MaxMemory)
	}
	return node.NewCountingAllocator(inner)
}

// ParseBytes builds a document from raw JSON bytes. data may be modified when
// comments are allowed.
func ParseBytes(data []byte, source string, opts Options) (*models.Document, error) {
	size := len(data)
	if strings.TrimSpace(string(data)) == "" {
		return nil, errors.NewInputError(fmt.Sprintf("%s is empty", source), errors.ErrEmptyInput)
	}

	if opts.AllowComments {
		data = node.Minify(data)
		if len(data) == 0 {
			return nil, errors.NewInputError(fmt.Sprintf("%s contains only comments", source), errors.ErrEmptyInput)
		}
	}

	alloc := opts.allocator()
	root, _, err := node.ParseWithLengthOptions(data, len(data), node.ParseOptions{
		RequireNullTerminated: opts.Strict,
		MaxDepth:              opts.MaxDepth,
		Allocator:             alloc,
	})
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to parse %s", source), err)
	}

	return &models.Document{
		Root:   root,
		Source: source,
		Size:   size,
		Alloc:  alloc,
	}, nil
}

// Parse reads all of reader and builds a document from it
func Parse(reader io.Reader, source string, opts Options) (*models.Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("failed to read from %s", source), err)
	}
	return ParseBytes(data, source, opts)
}

// ParseString parses JSON from a string
func ParseString(jsonString string, opts Options) (*models.Document, error) {
	if strings.TrimSpace(jsonString) == "" {
		// Provide a specific error for truly empty or whitespace-only strings
		return nil, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return ParseBytes([]byte(jsonString), "string", opts)
}

// ReadFile loads the raw bytes of a JSON file
func ReadFile(filePath string) ([]byte, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		// Check if the file doesn't exist
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	if len(data) == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}
	return data, nil
}

// ReadStdin loads JSON piped on stdin. A terminal on stdin means there is
// nothing to read.
func ReadStdin(stdin *os.File) ([]byte, error) {
	stdinInfo, err := stdin.Stat()
	if err != nil {
		return nil, errors.NewInputError("failed to access stdin", err)
	}
	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, errors.NewInputError("failed to read from stdin", err)
	}
	if len(data) == 0 {
		return nil, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return data, nil
}

// Read loads path, or stdin when path is empty or "-". It also returns a
// name for the source suitable for messages.
func Read(path string, stdin *os.File) ([]byte, string, error) {
	if path == "" || path == "-" {
		data, err := ReadStdin(stdin)
		return data, "stdin", err
	}
	data, err := ReadFile(path)
	return data, path, err
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string, opts Options) (*models.Document, error) {
	data, err := ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return ParseBytes(data, filePath, opts)
}

// Open parses path, or stdin when path is empty or "-"
func Open(path string, stdin *os.File, opts Options) (*models.Document, error) {
	data, source, err := Read(path, stdin)
	if err != nil {
		return nil, err
	}
	return ParseBytes(data, source, opts)
}
