package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewDisabledDiscards(t *testing.T) {
	l, closer, err := New(Options{})
	require.NoError(t, err)
	require.NoError(t, closer())
	require.False(t, l.Enabled(t.Context(), slog.LevelError))
}

func TestNewTextOutput(t *testing.T) {
	var out bytes.Buffer
	l, _, err := New(Options{Enabled: true, Output: &out, Level: slog.LevelDebug})
	require.NoError(t, err)

	l.Debug("grow", "bytes", 4096)
	require.Contains(t, out.String(), "msg=grow")
	require.Contains(t, out.String(), "bytes=4096")
}

func TestNewLogDirWritesJSONAndPrunes(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, logPrefix+time.Now().AddDate(0, 0, -(retentionDays+5)).Format("2006-01-02")+logSuffix)
	require.NoError(t, os.WriteFile(stale, []byte("old\n"), 0o644))
	unrelated := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(unrelated, []byte("keep\n"), 0o644))

	l, closer, err := New(Options{Enabled: true, LogDir: dir})
	require.NoError(t, err)
	l.Info("heap ready", "base", "0x10000")
	require.NoError(t, closer())

	_, err = os.Stat(stale)
	require.True(t, os.IsNotExist(err), "stale log should be removed")
	_, err = os.Stat(unrelated)
	require.NoError(t, err, "unrelated files must be kept")

	today := filepath.Join(dir, logPrefix+time.Now().Format("2006-01-02")+logSuffix)
	data, err := os.ReadFile(today)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"heap ready"`)
}

func TestDiscardIsDisabled(t *testing.T) {
	l := Discard()
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelError} {
		require.False(t, l.Enabled(t.Context(), level), "level %v", level)
	}
}

func TestInitReplacesGlobal(t *testing.T) {
	orig := L
	t.Cleanup(func() { L = orig })

	var out bytes.Buffer
	closer, err := Init(Options{Enabled: true, Output: &out, Level: slog.LevelDebug})
	require.NoError(t, err)
	defer closer()

	L.Debug("coalesce forward", "block", "0x10000")
	require.Contains(t, out.String(), "msg=\"coalesce forward\"")
}
