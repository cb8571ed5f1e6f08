package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConsoleLevel(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := New(Options{Level: slog.LevelInfo, ConsoleWriter: &buf})
	require.NoError(t, err)
	defer closer()

	log.Debug("hidden")
	log.Info("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestNewQuietSuppressesConsole(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := New(Options{Level: slog.LevelInfo, Quiet: true, ConsoleWriter: &buf})
	require.NoError(t, err)
	defer closer()

	log.Error("silent even for errors")
	assert.Empty(t, buf.String())
}

func TestNewFileHandlerRecordsDebug(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "run_test.log")

	log, closer, err := New(Options{Level: slog.LevelWarn, FilePath: path, ConsoleWriter: &buf})
	require.NoError(t, err)

	log.Debug("file only detail")
	log.Warn("both sinks")
	require.NoError(t, closer())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file only detail")
	assert.Contains(t, string(data), "both sinks")

	out := buf.String()
	assert.NotContains(t, out, "file only detail")
	assert.Contains(t, out, "both sinks")
}

func TestNewQuietWithFileStillLogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run_q.log")
	log, closer, err := New(Options{Quiet: true, FilePath: path})
	require.NoError(t, err)

	log.Info("recorded")
	require.NoError(t, closer())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "recorded")
}

func TestRunLogPath(t *testing.T) {
	now := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)
	path := RunLogPath("logs", "drought", 2026, 1, now)
	assert.Equal(t, filepath.Join("logs", "run_drought_202601_20260115_093000.log"), path)
}

func TestPruneKeepsNewest(t *testing.T) {
	dir := t.TempDir()

	base := time.Now().Add(-time.Hour)
	var paths []string
	for i := 0; i < 8; i++ {
		p := filepath.Join(dir, RunLogPath("", "flood", 2026, 1, base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
		require.NoError(t, os.Chtimes(p, base.Add(time.Duration(i)*time.Minute), base.Add(time.Duration(i)*time.Minute)))
		paths = append(paths, p)
	}
	// An unrelated file must survive.
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))

	require.NoError(t, Prune(dir, KeepRunLogs))

	remaining, err := filepath.Glob(filepath.Join(dir, "run_*.log"))
	require.NoError(t, err)
	assert.Len(t, remaining, KeepRunLogs)
	for _, p := range paths[:3] {
		assert.NoFileExists(t, p)
	}
	for _, p := range paths[3:] {
		assert.FileExists(t, p)
	}
	assert.FileExists(t, other)
}

func TestPruneMissingDir(t *testing.T) {
	assert.NoError(t, Prune(filepath.Join(t.TempDir(), "absent"), KeepRunLogs))
}
