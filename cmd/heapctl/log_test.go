package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/logger"
)

func TestRunCommand_LogDir(t *testing.T) {
	resetFlags(t)
	orig := logger.L
	t.Cleanup(func() { logger.L = orig })

	logDir = t.TempDir()
	path := writeScript(t, sampleScript)
	_, err := captureOutput(t, func() error { return runScript([]string{path}) })
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(logDir, "heapctl-"+time.Now().Format("2006-01-02")+".log"))
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"grow"`)
	require.Contains(t, string(data), `"msg":"coalesce forward"`)
}
