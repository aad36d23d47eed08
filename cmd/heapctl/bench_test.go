package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBenchCommand(t *testing.T) {
	for _, idx := range []bool{false, true} {
		resetFlags(t)
		indexed = idx
		jsonOut = true

		output, err := captureOutput(t, runBench)
		require.NoError(t, err)

		var res BenchResult
		require.NoError(t, json.Unmarshal([]byte(output), &res))
		require.Equal(t, benchOps, res.Ops)
		require.Equal(t, benchOps/benchVerifyEvery+1, res.Verified)
		require.Positive(t, res.Stats.AllocCalls)
		require.Equal(t, res.Stats.GrowBytes, int64(res.Usage.HeapBytes))
	}
}

func TestBenchCommand_Deterministic(t *testing.T) {
	run := func() BenchResult {
		resetFlags(t)
		jsonOut = true
		output, err := captureOutput(t, runBench)
		require.NoError(t, err)
		var res BenchResult
		require.NoError(t, json.Unmarshal([]byte(output), &res))
		return res
	}
	a, b := run(), run()
	require.Equal(t, a.Stats, b.Stats)
	require.Equal(t, a.Usage, b.Usage)
}

func TestBenchCommand_OutOfMemoryIsCounted(t *testing.T) {
	resetFlags(t)
	limit = 4096
	jsonOut = true

	output, err := captureOutput(t, runBench)
	require.NoError(t, err)
	var res BenchResult
	require.NoError(t, json.Unmarshal([]byte(output), &res))
	require.Positive(t, res.OOM)
	require.LessOrEqual(t, res.Usage.HeapBytes, 4096)
}

func TestBenchCommand_TextOutput(t *testing.T) {
	resetFlags(t)
	output, err := captureOutput(t, runBench)
	require.NoError(t, err)
	assertContains(t, output, []string{"Ran 2000 operations (seed 1)", "Usage", "Growth:"})
}
