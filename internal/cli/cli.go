// Package cli implements the jsontree commands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/mcncl/jsontree/internal/config"
	"github.com/mcncl/jsontree/internal/errors"
	"github.com/mcncl/jsontree/internal/formatter"
	"github.com/mcncl/jsontree/internal/logging"
	"github.com/mcncl/jsontree/internal/models"
	"github.com/mcncl/jsontree/internal/parser"
	"github.com/mcncl/jsontree/node"
)

// Version information
const Version = "0.1.0"

// CLI defines the command-line interface
type CLI struct {
	Config        string `help:"Path to a config file. Defaults to .jsontree.yml in the working directory or a parent." short:"c" type:"path"`
	Debug         bool   `help:"Enable debug logging." short:"d"`
	AllowComments bool   `help:"Strip // and /* */ comments before parsing." name:"allow-comments"`
	MaxMemory     string `help:"Cap the memory one document may use, e.g. 64MiB." name:"max-memory"`

	Fmt     FmtCmd     `cmd:"" help:"Reformat a JSON document."`
	Minify  MinifyCmd  `cmd:"" help:"Strip whitespace and comments without parsing."`
	Get     GetCmd     `cmd:"" help:"Print the value at a JSON pointer."`
	Diff    DiffCmd    `cmd:"" help:"Print the merge patch that turns FROM into TO."`
	Patch   PatchCmd   `cmd:"" help:"Apply a merge patch to a document."`
	Rekey   RekeyCmd   `cmd:"" help:"Rename object members throughout a document."`
	YAML    YAMLCmd    `cmd:"" name:"yaml" help:"Render a document as YAML."`
	Stats   StatsCmd   `cmd:"" help:"Summarize the shape of a document."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Overrides collects the flags that take precedence over the config file
func (c *CLI) Overrides() config.CLIOverrides {
	return config.CLIOverrides{
		Compact:       c.Fmt.Compact || c.Patch.Compact || c.Diff.Compact || c.Get.Compact,
		AllowComments: c.AllowComments,
		FixedBuffer:   c.Fmt.FixedBuffer,
		Case:          c.Rekey.Case,
		MaxMemory:     c.MaxMemory,
		Debug:         c.Debug,
	}
}

// Context holds the runtime context shared by all commands
type Context struct {
	Config *config.Config
	Logger log.Logger
	Stdin  *os.File
	Stdout io.Writer
}

// NewContext loads configuration with CLI precedence and builds the logger
func NewContext(c *CLI, stdin *os.File, stdout, stderr io.Writer) (*Context, error) {
	configPath := c.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfigWithCLI(configPath, c.Overrides())
	if err != nil {
		return nil, errors.NewConfigError("failed to load configuration", err)
	}

	logger, err := logging.New(stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, errors.NewConfigError("invalid log settings", err)
	}
	if configPath != "" {
		_ = level.Debug(logger).Log("msg", "loaded config", "path", configPath)
	}

	return &Context{
		Config: cfg,
		Logger: logger,
		Stdin:  stdin,
		Stdout: stdout,
	}, nil
}

func (ctx *Context) parseOptions() (parser.Options, error) {
	opts, err := parser.OptionsFromConfig(ctx.Config)
	if err != nil {
		return parser.Options{}, errors.NewConfigError("invalid parse settings", err)
	}
	return opts, nil
}

// read loads raw input, stripping comments when they are allowed
func (ctx *Context) read(path string) ([]byte, string, error) {
	data, source, err := parser.Read(path, ctx.Stdin)
	if err != nil {
		return nil, "", err
	}
	if ctx.Config.Parse.AllowComments {
		data = node.Minify(data)
	}
	return data, source, nil
}

// open loads and parses one document
func (ctx *Context) open(path string) (*models.Document, error) {
	opts, err := ctx.parseOptions()
	if err != nil {
		return nil, err
	}
	doc, err := parser.Open(path, ctx.Stdin, opts)
	if err != nil {
		return nil, err
	}
	_ = level.Debug(ctx.Logger).Log("msg", "parsed document", "source", doc.Source, "size", humanize.Bytes(uint64(doc.Size)))
	logging.AllocStats(ctx.Logger, "document allocations", doc.Alloc.Stats())
	return doc, nil
}

// release frees a document and reports anything left behind
func (ctx *Context) release(doc *models.Document) {
	if doc == nil {
		return
	}
	doc.Release()
	if doc.Alloc == nil {
		return
	}
	stats := doc.Alloc.Stats()
	if stats.LiveValues != 0 || stats.LiveBytes != 0 || stats.InvalidFrees != 0 {
		_ = level.Warn(ctx.Logger).Log("msg", "document not fully released", "source", doc.Source,
			"live_values", stats.LiveValues, "live_bytes", stats.LiveBytes, "invalid_frees", stats.InvalidFrees)
		return
	}
	logging.AllocStats(ctx.Logger, "document released", stats)
}

func (ctx *Context) formatter() (*formatter.Formatter, error) {
	opts, err := formatter.OptionsFromConfig(ctx.Config)
	if err != nil {
		return nil, errors.NewConfigError("invalid output settings", err)
	}
	return formatter.NewFormatterWithOptions(opts), nil
}

// write sends out to path, or to stdout when path is empty or "-"
func (ctx *Context) write(path, out string) error {
	if path != "" && path != "-" {
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		_ = level.Info(ctx.Logger).Log("msg", "output written", "path", path, "size", humanize.Bytes(uint64(len(out))))
		return nil
	}

	if _, err := io.WriteString(ctx.Stdout, out); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
