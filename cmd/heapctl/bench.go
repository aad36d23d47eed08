package main

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/verify"
)

var (
	benchOps         int
	benchSeed        int64
	benchMaxSize     int
	benchLive        int
	benchVerifyEvery int
)

func init() {
	cmd := newBenchCmd()
	cmd.Flags().IntVar(&benchOps, "ops", 10000, "Number of operations")
	cmd.Flags().Int64Var(&benchSeed, "seed", 1, "Random seed")
	cmd.Flags().IntVar(&benchMaxSize, "max-size", 1024, "Largest request size in bytes")
	cmd.Flags().IntVar(&benchLive, "live", 256, "Most pointers held at once")
	cmd.Flags().IntVar(&benchVerifyEvery, "verify-every", 100, "Verify invariants every N operations (0 = only at the end)")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bench",
		Short: "Run a random allocation workload",
		Long: `The bench command runs a seeded random mix of alloc, calloc, realloc
and free calls, verifying the heap invariants as it goes, and reports
throughput and heap statistics.

Example:
  heapctl bench --ops 100000 --seed 7
  heapctl bench --indexed --max-size 4096
  heapctl bench --backend mmap --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench()
		},
	}
}

// BenchResult summarises one workload run.
type BenchResult struct {
	Ops       int           `json:"ops"`
	Seed      int64         `json:"seed"`
	OOM       int           `json:"out_of_memory"`
	NoFit     int           `json:"no_fit"`
	Verified  int           `json:"verified"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	OpsPerSec float64       `json:"ops_per_sec"`
	Stats     alloc.Stats   `json:"stats"`
	Usage     alloc.Usage   `json:"usage"`
}

func runBench() error {
	if benchOps < 0 || benchMaxSize < 0 || benchLive <= 0 {
		return fmt.Errorf("--ops and --max-size must be non-negative and --live positive")
	}
	a, closer, err := openHeap()
	if err != nil {
		return err
	}
	defer closer()

	res, err := benchmark(a, rand.New(rand.NewSource(benchSeed)))
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(res)
	}
	printInfo("Ran %d operations (seed %d) in %v, %.0f ops/s\n", res.Ops, res.Seed, res.Elapsed, res.OpsPerSec)
	printInfo("Out of memory: %d, exact fit refused: %d, verified %d times\n", res.OOM, res.NoFit, res.Verified)
	if quiet {
		return nil
	}
	return newPrinter(a).PrintStats()
}

func benchmark(a *alloc.Allocator, rng *rand.Rand) (*BenchResult, error) {
	res := &BenchResult{Ops: benchOps, Seed: benchSeed}
	live := make([]alloc.Ptr, 0, benchLive)

	check := func(step int) error {
		if err := verify.AllInvariants(a); err != nil {
			return fmt.Errorf("op %d: %w", step, err)
		}
		res.Verified++
		return nil
	}
	failed := func(err error) error {
		switch {
		case errors.Is(err, alloc.ErrNoMemory):
			res.OOM++
		case errors.Is(err, alloc.ErrNoFit):
			res.NoFit++
		default:
			return err
		}
		return nil
	}

	start := time.Now()
	for step := range benchOps {
		full := len(live) == benchLive
		switch r := rng.Intn(10); {
		case len(live) > 0 && (full || r < 4):
			i := rng.Intn(len(live))
			a.Free(live[i])
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
		case len(live) > 0 && r < 6:
			i := rng.Intn(len(live))
			p, err := a.Realloc(live[i], rng.Intn(benchMaxSize+1))
			if err != nil {
				if err := failed(err); err != nil {
					return nil, err
				}
				break
			}
			live[i] = p
		case r < 7:
			p, err := a.Calloc(1+rng.Intn(16), rng.Intn(benchMaxSize/16+1))
			if err != nil {
				if err := failed(err); err != nil {
					return nil, err
				}
				break
			}
			live = append(live, p)
		default:
			p, err := a.Alloc(rng.Intn(benchMaxSize + 1))
			if err != nil {
				if err := failed(err); err != nil {
					return nil, err
				}
				break
			}
			live = append(live, p)
		}

		if benchVerifyEvery > 0 && (step+1)%benchVerifyEvery == 0 {
			if err := check(step); err != nil {
				return nil, err
			}
		}
	}
	res.Elapsed = time.Since(start)
	if secs := res.Elapsed.Seconds(); secs > 0 {
		res.OpsPerSec = float64(benchOps) / secs
	}

	if err := check(benchOps); err != nil {
		return nil, err
	}
	res.Stats = a.Stats()
	u, err := a.Usage()
	if err != nil {
		return nil, err
	}
	res.Usage = u
	return res, nil
}
