package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/verify"
)

var (
	dumpFreeOnly  bool
	dumpMaxBlocks int
	dumpStats     bool
)

func init() {
	cmd := newDumpCmd()
	cmd.Flags().BoolVar(&dumpFreeOnly, "free-only", false, "Show only free blocks and the free list")
	cmd.Flags().IntVar(&dumpMaxBlocks, "max-blocks", 0, "Limit the number of blocks listed (0 = all)")
	cmd.Flags().BoolVar(&dumpStats, "stats", false, "Append usage statistics")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <script>",
		Short: "Replay a script and print the heap layout",
		Long: `The dump command replays an allocation script and prints every block
in address order followed by the free list in list order.

Example:
  heapctl dump workload.txt
  heapctl dump workload.txt --free-only
  heapctl dump workload.txt --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}
}

func runDump(args []string) error {
	a, closer, err := replay(args[0])
	if err != nil {
		return err
	}
	defer closer()

	// Dump still renders a broken heap; the check is informational.
	if err := verify.AllInvariants(a); err != nil {
		printError("%v\n", err)
	}

	p := newPrinter(a)
	opts := p.Options()
	opts.ShowAllocated = !dumpFreeOnly
	opts.MaxBlocks = dumpMaxBlocks
	p = p.WithOptions(opts)

	if err := p.PrintLayout(); err != nil {
		return err
	}
	if err := p.PrintFreeList(); err != nil {
		return err
	}
	if dumpStats {
		return p.PrintStats()
	}
	return nil
}
