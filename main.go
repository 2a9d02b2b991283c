package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/mcncl/jsontree/internal/cli"
	"github.com/mcncl/jsontree/internal/errors"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// exitCode carries a requested exit status out of kong's help handling
type exitCode int

// run parses args, executes the selected command and returns the process
// exit status
func run(args []string, stdin *os.File, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	var c cli.CLI
	parser, err := kong.New(&c,
		kong.Name("jsontree"),
		kong.Description("Parse, inspect, patch and reformat JSON documents"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { panic(exitCode(code)) }),
	)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "jsontree: %v\n", err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "jsontree: error: %v\n", err)
		var perr *kong.ParseError
		if stderrors.As(err, &perr) && perr.Context != nil {
			_ = perr.Context.PrintUsage(true)
		}
		return 1
	}

	ctx, err := cli.NewContext(&c, stdin, stdout, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		return 1
	}

	if err := kctx.Run(ctx); err != nil {
		// Use our custom error handling to provide user-friendly error messages
		_, _ = fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		_, _ = fmt.Fprintf(stderr, "\nFor help, run: jsontree --help\n")
		return 1
	}
	return 0
}
