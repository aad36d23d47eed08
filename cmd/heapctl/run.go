package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/printer"
	"github.com/joshuapare/heapkit/heap/verify"
)

var runNoVerify bool

func init() {
	cmd := newRunCmd()
	cmd.Flags().BoolVar(&runNoVerify, "no-verify", false, "Skip the invariant check after the script")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <script>",
		Short: "Replay an allocation script",
		Long: `The run command replays an allocation script line by line, verifies
the heap invariants and prints usage statistics.

Script lines:
  p = alloc 200
  q = calloc 4 16
  p = realloc p 64
  write p 0xAB
  check p 0xAB
  free p

Example:
  heapctl run workload.txt
  heapctl run workload.txt --indexed -v
  heapctl run workload.txt --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(args)
		},
	}
}

func runScript(args []string) error {
	a, closer, err := replay(args[0])
	if err != nil {
		return err
	}
	defer closer()

	if !runNoVerify {
		if err := verify.AllInvariants(a); err != nil {
			return fmt.Errorf("heap invariants violated: %w", err)
		}
		printVerbose("Invariants OK\n")
	}
	if quiet {
		return nil
	}
	return newPrinter(a).PrintStats()
}

// replay parses the script at path and executes it on a fresh heap.
func replay(path string) (*alloc.Allocator, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open script: %w", err)
	}
	ops, err := parseScript(f)
	f.Close()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	printVerbose("Parsed %d operations from %s\n", len(ops), path)

	a, closer, err := openHeap()
	if err != nil {
		return nil, nil, err
	}
	s := newSession(a)
	for _, o := range ops {
		if err := s.exec(o); err != nil {
			closer()
			return nil, nil, err
		}
	}
	return a, closer, nil
}

// newPrinter returns a stdout printer honouring --json.
func newPrinter(a *alloc.Allocator) *printer.Printer {
	opts := printer.DefaultOptions()
	if jsonOut {
		opts.Format = printer.FormatJSON
	}
	return printer.New(a, os.Stdout, opts)
}
