package cli

import (
	"fmt"

	"github.com/go-kit/log/level"
	"github.com/tidwall/gjson"

	"github.com/mcncl/jsontree/internal/analyzer"
	"github.com/mcncl/jsontree/internal/errors"
	"github.com/mcncl/jsontree/internal/generator"
	"github.com/mcncl/jsontree/internal/parser"
	"github.com/mcncl/jsontree/internal/transform"
	"github.com/mcncl/jsontree/mergepatch"
	"github.com/mcncl/jsontree/node"
	"github.com/mcncl/jsontree/pointer"
)

// FmtCmd reformats a document
type FmtCmd struct {
	Input       string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Compact     bool   `help:"Drop all insignificant whitespace."`
	FixedBuffer string `help:"Render into a fixed buffer of this size, e.g. 4KiB, and fail if it does not fit." name:"fixed-buffer"`
}

// Run parses the input and prints it again
func (c *FmtCmd) Run(ctx *Context) error {
	doc, err := ctx.open(c.Input)
	if err != nil {
		return err
	}
	defer ctx.release(doc)

	f, err := ctx.formatter()
	if err != nil {
		return err
	}
	out, err := f.Format(doc.Root)
	if err != nil {
		return errors.NewOutputError("failed to render document", err)
	}
	return ctx.write(c.Output, out)
}

// MinifyCmd strips whitespace and comments without building a tree
type MinifyCmd struct {
	Input  string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
}

// Run minifies the input text
func (c *MinifyCmd) Run(ctx *Context) error {
	data, source, err := parser.Read(c.Input, ctx.Stdin)
	if err != nil {
		return err
	}
	f, err := ctx.formatter()
	if err != nil {
		return err
	}
	out := f.Minify(data)
	_ = level.Debug(ctx.Logger).Log("msg", "minified", "source", source, "before", len(data), "after", len(out))
	return ctx.write(c.Output, out)
}

// GetCmd prints the value at a JSON pointer, or at a gjson path with --query
type GetCmd struct {
	Pointer    string `arg:"" optional:"" help:"RFC 6901 JSON pointer, e.g. /users/0/name. Empty selects the whole document."`
	Input      string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Query      string `help:"Select with a gjson path such as users.#.name instead of a pointer." short:"q"`
	IgnoreCase bool   `help:"Match member names without regard to ASCII case." name:"ignore-case"`
	Compact    bool   `help:"Drop all insignificant whitespace."`
}

// Run looks up the requested value
func (c *GetCmd) Run(ctx *Context) error {
	if c.Query != "" {
		return c.runQuery(ctx)
	}

	doc, err := ctx.open(c.Input)
	if err != nil {
		return err
	}
	defer ctx.release(doc)

	lookup := pointer.Get
	if c.IgnoreCase {
		lookup = pointer.GetFold
	}
	v, err := lookup(doc.Root, c.Pointer)
	if err != nil {
		return errors.NewTransformError(fmt.Sprintf("failed to resolve pointer %q", c.Pointer), err)
	}
	return ctx.render(v)
}

// runQuery validates the document with the tree parser, then selects with
// gjson and parses the selection so it prints like any other value
func (c *GetCmd) runQuery(ctx *Context) error {
	data, source, err := ctx.read(c.Input)
	if err != nil {
		return err
	}
	opts, err := ctx.parseOptions()
	if err != nil {
		return err
	}
	opts.AllowComments = false

	doc, err := parser.ParseBytes(data, source, opts)
	if err != nil {
		return err
	}
	ctx.release(doc)

	result := gjson.GetBytes(data, c.Query)
	if !result.Exists() {
		return errors.NewTransformError(fmt.Sprintf("query %q matched nothing", c.Query), pointer.ErrNotFound)
	}
	selected, err := parser.ParseString(result.Raw, opts)
	if err != nil {
		return err
	}
	defer ctx.release(selected)
	return ctx.render(selected.Root)
}

// DiffCmd prints the merge patch between two documents
type DiffCmd struct {
	From    string `arg:"" help:"Original document. Use - for stdin." type:"path"`
	To      string `arg:"" help:"Changed document. Use - for stdin." type:"path"`
	Output  string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Compact bool   `help:"Drop all insignificant whitespace."`
}

// Run generates the patch
func (c *DiffCmd) Run(ctx *Context) error {
	if c.From == "-" && c.To == "-" {
		return errors.NewInputError("only one document can come from stdin", errors.ErrInvalidFilePath)
	}
	from, err := ctx.open(c.From)
	if err != nil {
		return err
	}
	defer ctx.release(from)
	to, err := ctx.open(c.To)
	if err != nil {
		return err
	}
	defer ctx.release(to)

	patch, err := mergepatch.Generate(from.Root, to.Root)
	if err != nil {
		return errors.NewTransformError("failed to generate merge patch", err)
	}
	defer func() { _ = patch.Release() }()

	f, err := ctx.formatter()
	if err != nil {
		return err
	}
	out, err := f.Format(patch)
	if err != nil {
		return errors.NewOutputError("failed to render merge patch", err)
	}
	return ctx.write(c.Output, out)
}

// PatchCmd applies a merge patch
type PatchCmd struct {
	Target  string `arg:"" help:"Document to patch. Use - for stdin." type:"path"`
	Patch   string `arg:"" help:"RFC 7396 merge patch. Use - for stdin." type:"path"`
	Output  string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Compact bool   `help:"Drop all insignificant whitespace."`
}

// Run applies the patch and prints the result
func (c *PatchCmd) Run(ctx *Context) error {
	if c.Target == "-" && c.Patch == "-" {
		return errors.NewInputError("only one document can come from stdin", errors.ErrInvalidFilePath)
	}
	target, err := ctx.open(c.Target)
	if err != nil {
		return err
	}
	patch, err := ctx.open(c.Patch)
	if err != nil {
		ctx.release(target)
		return err
	}
	defer ctx.release(patch)

	// Apply owns the target tree from here on
	result, err := mergepatch.Apply(target.Root, patch.Root)
	if err != nil {
		return errors.NewTransformError("failed to apply merge patch", err)
	}
	defer func() { _ = result.Release() }()

	return ctx.render(result)
}

// RekeyCmd renames members throughout a document
type RekeyCmd struct {
	Input  string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Case   string `help:"Key case: snake, screaming-snake, kebab, camel, lower-camel or preserve. Overrides keys.case from the config file." enum:",snake,screaming-snake,kebab,camel,lower-camel,preserve" default:""`
}

// Run rewrites the keys and prints the result
func (c *RekeyCmd) Run(ctx *Context) error {
	doc, err := ctx.open(c.Input)
	if err != nil {
		return err
	}
	defer ctx.release(doc)

	rewriter := transform.NewKeyRewriter(ctx.Config)
	out, err := rewriter.Rekey(doc.Root)
	if err != nil {
		return errors.NewTransformError("failed to rewrite keys", err)
	}
	defer func() { _ = out.Release() }()
	_ = level.Debug(ctx.Logger).Log("msg", "rewrote keys", "case", ctx.Config.Keys.Case, "renamed", rewriter.Renamed, "skipped", rewriter.Skipped)

	f, err := ctx.formatter()
	if err != nil {
		return err
	}
	text, err := f.Format(out)
	if err != nil {
		return errors.NewOutputError("failed to render document", err)
	}
	return ctx.write(c.Output, text)
}

// YAMLCmd renders a document as YAML
type YAMLCmd struct {
	Input  string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
}

// Run converts the document
func (c *YAMLCmd) Run(ctx *Context) error {
	doc, err := ctx.open(c.Input)
	if err != nil {
		return err
	}
	defer ctx.release(doc)

	out, err := generator.NewGenerator().GenerateYAML(doc.Root)
	if err != nil {
		return errors.NewOutputError("failed to generate YAML", err)
	}
	return ctx.write(c.Output, out)
}

// StatsCmd summarizes a document
type StatsCmd struct {
	Input  string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Format string `help:"Output format: yaml or json." enum:"yaml,json" default:"yaml" short:"f"`
}

// Run analyzes the document and prints the statistics
func (c *StatsCmd) Run(ctx *Context) error {
	doc, err := ctx.open(c.Input)
	if err != nil {
		return err
	}
	defer ctx.release(doc)

	stats, err := analyzer.NewAnalyzer().Analyze(doc.Root)
	if err != nil {
		return errors.NewTransformError("failed to analyze document", err)
	}

	if c.Format == "json" {
		tree, err := node.FromGo(stats)
		if err != nil {
			return errors.NewOutputError("failed to convert statistics", err)
		}
		defer func() { _ = tree.Release() }()
		return ctx.render(tree)
	}

	out, err := generator.NewGenerator().GenerateStats(stats)
	if err != nil {
		return errors.NewOutputError("failed to render statistics", err)
	}
	return ctx.write("", out)
}

// VersionCmd prints the version
type VersionCmd struct{}

// Run prints the version
func (c *VersionCmd) Run(ctx *Context) error {
	return ctx.write("", fmt.Sprintf("jsontree version %s\n", Version))
}

// render formats v and writes it to stdout
func (ctx *Context) render(v *node.Value) error {
	f, err := ctx.formatter()
	if err != nil {
		return err
	}
	out, err := f.Format(v)
	if err != nil {
		return errors.NewOutputError("failed to render value", err)
	}
	return ctx.write("", out)
}
