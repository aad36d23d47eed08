package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/brk"
	"github.com/joshuapare/heapkit/internal/logger"
)

// exitCorrupt mirrors the status of a process killed by SIGABRT.
const exitCorrupt = 134

var (
	// Global flags
	verbose  bool
	quiet    bool
	jsonOut  bool
	backend  string
	limit    int
	baseAddr uint64
	indexed  bool
	exactFit string
	logDir   string
)

// exit is replaced in tests.
var exit = os.Exit

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Exercise and inspect a first-fit heap allocator",
	Long: `heapctl replays allocation scripts and random workloads against a
heapkit allocator, verifies the heap invariants afterwards and prints the
resulting layout, free list and statistics.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	pf.BoolVar(&jsonOut, "json", false, "Output in JSON format")
	pf.StringVar(&backend, "backend", "sim", "Heap boundary: sim or mmap")
	pf.IntVar(&limit, "limit", brk.DefaultSimLimit, "Largest heap size in bytes (mmap: reservation size)")
	pf.Uint64Var(&baseAddr, "base", uint64(brk.DefaultSimBase), "Base address of the simulated heap")
	pf.BoolVar(&indexed, "indexed", false, "Find coalescing neighbours through start/end indexes")
	pf.StringVar(&exactFit, "exact-fit", "consume", "Exact-fit policy: consume or fail")
	pf.StringVar(&logDir, "log-dir", "", "Write debug JSON logs to this directory")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		exit(1)
	}
}

// openHeap builds the boundary and allocator the global flags describe. The
// returned closer releases both the boundary and the log file.
func openHeap() (*alloc.Allocator, func() error, error) {
	policy, err := alloc.ParseExactFitPolicy(exactFit)
	if err != nil {
		return nil, nil, err
	}

	// --log-dir replaces the global logger; otherwise logger.L keeps its
	// HEAPKIT_LOG_ALLOC behaviour.
	closeLog := func() error { return nil }
	if logDir != "" {
		closeLog, err = logger.Init(logger.Options{
			Enabled: true,
			LogDir:  logDir,
			Level:   slog.LevelDebug,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log: %w", err)
		}
	}

	var mem brk.Boundary
	closeMem := func() error { return nil }
	switch backend {
	case "sim":
		mem = brk.NewSim(brk.SimOptions{Base: brk.Addr(baseAddr), Limit: limit})
	case "mmap":
		m, err := brk.NewMapped(brk.MapOptions{Reserve: limit})
		if err != nil {
			_ = closeLog()
			return nil, nil, fmt.Errorf("failed to reserve heap: %w", err)
		}
		mem, closeMem = m, m.Close
	default:
		_ = closeLog()
		return nil, nil, fmt.Errorf("unknown backend %q (want sim or mmap)", backend)
	}
	printVerbose("Heap: %s backend, base %v, limit %d\n", backend, mem.Base(), limit)

	a := alloc.New(mem,
		alloc.WithLogger(logger.L),
		alloc.WithAbort(abortHeap),
		alloc.WithExactFit(policy),
		alloc.WithIndexedCoalesce(indexed),
		alloc.WithOnGrow(func(s alloc.Segment) {
			printVerbose("  grow %v..%v (pad %d)\n", s.Start, s.End, s.Pad)
		}),
	)
	closer := func() error {
		return errors.Join(closeMem(), closeLog())
	}
	return a, closer, nil
}

// abortHeap reports heap corruption and terminates like abort(3).
func abortHeap(err error) {
	printError("%v\n", err)
	exit(exitCorrupt)
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
