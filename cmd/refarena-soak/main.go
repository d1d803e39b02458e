// refarena-soak drives an arena with random operations, including nested
// visits and long-lived guards, and checks it against a map-based model.
//
// Usage:
//
//	refarena-soak [flags]
//
// Flags:
//
//	-n, --ops           Number of top-level operations (default: 100000)
//	-s, --seed          Random seed; 0 picks one from the clock
//	-c, --capacity      Initial reserved cells (default: 16)
//	    --max-cells     Upper bound on stored cells, 0 for none
//	    --check-every   Full model comparison interval in ops (default: 1)
//	    --log-level     debug, info, warn or error (default: info)
//	    --log-format    text or json (default: text)
//
// The exit status is 0 when the arena matched the model throughout, 1 on
// divergence and 2 on bad flags.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	flag "github.com/spf13/pflag"
)

type options struct {
	ops        int
	seed       uint64
	capacity   int
	maxCells   int
	checkEvery int
	logLevel   slog.Level
	logFormat  string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	opts, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(out)
			return 0
		}
		fmt.Fprintln(errOut, "error:", err)
		return 2
	}

	logger, err := newLogger(errOut, opts.logLevel, opts.logFormat)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 2
	}

	if opts.seed == 0 {
		opts.seed = uint64(time.Now().UnixNano())
	}
	logger.Info("soak: starting",
		slog.Int("ops", opts.ops),
		slog.Uint64("seed", opts.seed),
		slog.Int("capacity", opts.capacity),
		slog.Int("max_cells", opts.maxCells),
	)

	start := time.Now()
	s := newSoak(opts, logger)
	if err := s.run(); err != nil {
		logger.Error("soak: arena diverged from model",
			slog.Uint64("seed", opts.seed),
			slog.Int("op", s.stats.ops),
			slog.Any("err", err),
		)
		return 1
	}

	m := s.arena.Metrics()
	fmt.Fprintf(out, "ok: %d ops (%d nested, %d rejected) in %s, seed %d\n",
		s.stats.ops, s.stats.nested, s.stats.rejected, time.Since(start).Round(time.Millisecond), opts.seed)
	fmt.Fprintf(out, "final: stored=%d capacity=%d occupied=%d free=%d generation=%d\n",
		m.Stored, m.Capacity, m.Occupied, m.Free, m.Generation)
	return 0
}

func newFlagSet(opts *options, level *string) *flag.FlagSet {
	fs := flag.NewFlagSet("refarena-soak", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVarP(&opts.ops, "ops", "n", 100000, "Number of top-level operations")
	fs.Uint64VarP(&opts.seed, "seed", "s", 0, "Random seed; 0 picks one from the clock")
	fs.IntVarP(&opts.capacity, "capacity", "c", 16, "Initial reserved cells")
	fs.IntVar(&opts.maxCells, "max-cells", 0, "Upper bound on stored cells, 0 for none")
	fs.IntVar(&opts.checkEvery, "check-every", 1, "Full model comparison interval in ops")
	fs.StringVar(level, "log-level", "info", "debug, info, warn or error")
	fs.StringVar(&opts.logFormat, "log-format", "text", "text or json")
	return fs
}

func parseFlags(args []string) (options, error) {
	var (
		opts  options
		level string
	)
	fs := newFlagSet(&opts, &level)
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	if opts.ops < 0 {
		return options{}, errors.New("--ops must be non-negative")
	}
	if opts.capacity < 0 {
		return options{}, errors.New("--capacity must be non-negative")
	}
	if opts.maxCells < 0 {
		return options{}, errors.New("--max-cells must be non-negative")
	}
	if opts.checkEvery < 1 {
		return options{}, errors.New("--check-every must be at least 1")
	}
	if err := opts.logLevel.UnmarshalText([]byte(level)); err != nil {
		return options{}, fmt.Errorf("--log-level: %w", err)
	}
	return opts, nil
}

func newLogger(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	ho := &slog.HandlerOptions{Level: level}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, ho)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, ho)), nil
	}
	return nil, fmt.Errorf("--log-format must be text or json, got %q", format)
}

func printUsage(w io.Writer) {
	var (
		opts  options
		level string
	)
	fmt.Fprintln(w, "Usage: refarena-soak [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Runs random arena operations against a model and reports any divergence.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, newFlagSet(&opts, &level).FlagUsages())
}
