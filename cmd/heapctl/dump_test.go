package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDumpCommand(t *testing.T) {
	tests := []struct {
		name           string
		setup          func()
		wantContain    []string
		wantNotContain []string
		wantJSON       bool
	}{
		{
			name:        "layout",
			wantContain: []string{"Heap 0x10000..", "used  size 32", "free  cap 96", "Free list (1 blocks)"},
		},
		{
			name:           "free only",
			setup:          func() { dumpFreeOnly = true },
			wantContain:    []string{"free  cap 96"},
			wantNotContain: []string{"used"},
		},
		{
			name:        "with stats",
			setup:       func() { dumpStats = true },
			wantContain: []string{"Operations", "Splits:"},
		},
		{
			name:        "json",
			setup:       func() { jsonOut = true },
			wantJSON:    true,
			wantContain: []string{`"blocks"`, `"capacity": 96`},
		},
		{
			name:        "unaligned base",
			setup:       func() { baseAddr = 0x10004 },
			wantContain: []string{"pad 12"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			if tt.setup != nil {
				tt.setup()
			}
			path := writeScript(t, sampleScript)

			output, err := captureOutput(t, func() error {
				return runDump([]string{path})
			})
			require.NoError(t, err)
			if tt.wantJSON {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
			assertNotContains(t, output, tt.wantNotContain)
		})
	}
}
