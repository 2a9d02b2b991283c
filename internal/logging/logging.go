package logging

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/mcncl/jsontree/node"
)

// Supported log formats
const (
	FormatLogfmt = "logfmt"
	FormatJSON   = "json"
)

// New builds a leveled go-kit logger writing to w.
func New(w io.Writer, lvl, format string) (log.Logger, error) {
	allow, err := levelOption(lvl)
	if err != nil {
		return nil, err
	}

	var logger log.Logger
	switch format {
	case "", FormatLogfmt:
		logger = log.NewLogfmtLogger(log.NewSyncWriter(w))
	case FormatJSON:
		logger = log.NewJSONLogger(log.NewSyncWriter(w))
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	logger = level.NewFilter(logger, allow)
	return log.With(logger, "app", "jsontree"), nil
}

// Nop returns a logger that discards everything.
func Nop() log.Logger {
	return log.NewNopLogger()
}

func levelOption(lvl string) (level.Option, error) {
	switch lvl {
	case "debug":
		return level.AllowDebug(), nil
	case "", "info":
		return level.AllowInfo(), nil
	case "warn":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	case "none":
		return level.AllowNone(), nil
	}
	return nil, fmt.Errorf("unknown log level %q", lvl)
}

// AllocStats logs a snapshot of allocator accounting at debug level.
func AllocStats(logger log.Logger, msg string, s node.AllocStats) {
	_ = level.Debug(logger).Log(
		"msg", msg,
		"live_values", s.LiveValues,
		"total_values", s.TotalValues,
		"live_bytes", humanize.IBytes(uint64(s.LiveBytes)),
		"total_bytes", humanize.IBytes(uint64(s.TotalBytes)),
		"invalid_frees", s.InvalidFrees,
	)
}
