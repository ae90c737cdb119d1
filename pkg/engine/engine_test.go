package engine_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/robosync/pkg/config"
	"github.com/walteh/robosync/pkg/engine"
	"github.com/walteh/robosync/pkg/progress"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

// testOptions returns a fast-failing option set rooted in temp dirs
func testOptions(t *testing.T) (*config.Options, string, string) {
	src := filepath.Join(t.TempDir(), "src")
	dst := filepath.Join(t.TempDir(), "dst")
	require.NoError(t, os.MkdirAll(src, 0o755))

	opts := config.New()
	opts.Sources = []string{src}
	opts.Destination = dst
	opts.Recursive = true
	opts.Retries = 2
	opts.RetryWait = 0
	opts.ShowProgress = false
	return opts, src, dst
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// 🧪 TestCopyTree copies a nested tree and reports accurate statistics
func TestCopyTree(t *testing.T) {
	opts, src, dst := testOptions(t)
	writeFile(t, filepath.Join(src, "a.txt"), "alpha")
	writeFile(t, filepath.Join(src, "sub", "b.txt"), "bravo")
	require.NoError(t, opts.Validate())

	st, err := engine.New(opts, nil).Run(testContext(t))
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dst, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(got))

	got, err = os.ReadFile(filepath.Join(dst, "sub", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "bravo", string(got))

	assert.Equal(t, uint64(2), st.FilesCopied.Load())
	assert.Equal(t, uint64(10), st.BytesCopied.Load())
	assert.Equal(t, uint64(0), st.FilesFailed.Load())
}

// 🧪 TestIdempotence verifies a second run copies nothing further
func TestIdempotence(t *testing.T) {
	opts, src, _ := testOptions(t)
	writeFile(t, filepath.Join(src, "a.txt"), "alpha")
	writeFile(t, filepath.Join(src, "sub", "b.txt"), "bravo")
	require.NoError(t, opts.Validate())

	_, err := engine.New(opts, nil).Run(testContext(t))
	require.NoError(t, err)

	st, err := engine.New(opts, nil).Run(testContext(t))
	require.NoError(t, err)

	assert.Equal(t, uint64(0), st.FilesCopied.Load())
	assert.Equal(t, uint64(2), st.FilesSkipped.Load())
}

// 🧪 TestModTimeHeuristic re-copies only when the source is newer or
// sizes differ at equal timestamps
func TestModTimeHeuristic(t *testing.T) {
	opts, src, dst := testOptions(t)
	srcFile := filepath.Join(src, "a.txt")
	writeFile(t, srcFile, "v1")
	require.NoError(t, opts.Validate())

	_, err := engine.New(opts, nil).Run(testContext(t))
	require.NoError(t, err)

	// Touch the source forward and change content
	writeFile(t, srcFile, "v2-longer")
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(srcFile, future, future))

	st, err := engine.New(opts, nil).Run(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), st.FilesCopied.Load())

	got, err := os.ReadFile(filepath.Join(dst, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "v2-longer", string(got))
}

// 🧪 TestPatternFilter makes non-matching files invisible to the run
func TestPatternFilter(t *testing.T) {
	opts, src, dst := testOptions(t)
	opts.Patterns = []string{"*.txt"}
	writeFile(t, filepath.Join(src, "keep.txt"), "keep")
	writeFile(t, filepath.Join(src, "drop.bin"), "drop")
	require.NoError(t, opts.Validate())

	st, err := engine.New(opts, nil).Run(testContext(t))
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dst, "keep.txt"))
	assert.NoFileExists(t, filepath.Join(dst, "drop.bin"))
	assert.Equal(t, uint64(1), st.FilesCopied.Load())
	// Pattern-rejected files are neither copied nor counted
	assert.Equal(t, uint64(0), st.FilesSkipped.Load())
}

// 🧪 TestMirror purges destination entries absent from the source
func TestMirror(t *testing.T) {
	opts, src, dst := testOptions(t)
	opts.Mirror = true
	writeFile(t, filepath.Join(src, "live.txt"), "live")
	writeFile(t, filepath.Join(dst, "stale.txt"), "stale")
	writeFile(t, filepath.Join(dst, "staledir", "old.txt"), "old")
	require.NoError(t, opts.Validate())

	st, err := engine.New(opts, nil).Run(testContext(t))
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dst, "live.txt"))
	assert.NoFileExists(t, filepath.Join(dst, "stale.txt"))
	assert.NoDirExists(t, filepath.Join(dst, "staledir"))
	assert.Equal(t, uint64(1), st.FilesRemoved.Load())
	assert.Equal(t, uint64(1), st.DirsRemoved.Load())

	// Mirror closure: destination name-set equals source name-set
	srcEntries, err := os.ReadDir(src)
	require.NoError(t, err)
	dstEntries, err := os.ReadDir(dst)
	require.NoError(t, err)
	require.Len(t, dstEntries, len(srcEntries))
	for i := range srcEntries {
		assert.Equal(t, srcEntries[i].Name(), dstEntries[i].Name())
	}
}

// 🧪 TestMirrorShred securely erases purged destination files
func TestMirrorShred(t *testing.T) {
	opts, src, dst := testOptions(t)
	opts.Mirror = true
	opts.ShredFiles = true
	writeFile(t, filepath.Join(src, "live.txt"), "live")
	writeFile(t, filepath.Join(dst, "secret.txt"), "secret")
	require.NoError(t, opts.Validate())

	hub := progress.NewHub()
	st, err := engine.New(opts, hub).Run(testContext(t))
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(dst, "secret.txt"))
	assert.Equal(t, uint64(1), st.FilesRemoved.Load())

	logs := strings.Join(hub.TakeLogs(), "\n")
	assert.Contains(t, logs, "Securely removing file")
	assert.NotContains(t, logs, "secret\n", "plaintext content never logged")
}

// 🧪 TestListOnly touches nothing but still counts intended copies
func TestListOnly(t *testing.T) {
	opts, src, dst := testOptions(t)
	opts.ListOnly = true
	writeFile(t, filepath.Join(src, "a.txt"), "alpha")
	require.NoError(t, opts.Validate())

	hub := progress.NewHub()
	st, err := engine.New(opts, hub).Run(testContext(t))
	require.NoError(t, err)

	assert.NoDirExists(t, dst)
	// Documented quirk: list-only increments the copied counters
	assert.Equal(t, uint64(1), st.FilesCopied.Load())
	assert.Equal(t, uint64(5), st.BytesCopied.Load())

	logs := strings.Join(hub.TakeLogs(), "\n")
	assert.Contains(t, logs, "Would create directory")
	assert.Contains(t, logs, "Would copy file")
}

// 🧪 TestEmptyDirHandling skips empty source directories unless
// include-empty is set
func TestEmptyDirHandling(t *testing.T) {
	opts, src, dst := testOptions(t)
	require.NoError(t, os.MkdirAll(filepath.Join(src, "hollow"), 0o755))
	require.NoError(t, opts.Validate())

	st, err := engine.New(opts, nil).Run(testContext(t))
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(dst, "hollow"))
	assert.Equal(t, uint64(1), st.DirsSkipped.Load())

	opts2, src2, dst2 := testOptions(t)
	opts2.IncludeEmpty = true
	require.NoError(t, os.MkdirAll(filepath.Join(src2, "hollow"), 0o755))
	require.NoError(t, opts2.Validate())

	st2, err := engine.New(opts2, nil).Run(testContext(t))
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(dst2, "hollow"))
	assert.Equal(t, uint64(0), st2.DirsSkipped.Load())
}

// 🧪 TestMoveFiles deletes sources after a successful transfer
func TestMoveFiles(t *testing.T) {
	opts, src, dst := testOptions(t)
	opts.MoveDirs = true
	writeFile(t, filepath.Join(src, "sub", "gone.txt"), "gone")
	require.NoError(t, opts.Validate())

	_, err := engine.New(opts, nil).Run(testContext(t))
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dst, "sub", "gone.txt"))
	assert.NoFileExists(t, filepath.Join(src, "sub", "gone.txt"))
	assert.NoDirExists(t, filepath.Join(src, "sub"), "emptied source directory is removed")
}

// 🧪 TestEmptyFilesPlaceholder creates zero-length stand-ins
func TestEmptyFilesPlaceholder(t *testing.T) {
	opts, src, dst := testOptions(t)
	opts.EmptyFiles = true
	writeFile(t, filepath.Join(src, "big.bin"), strings.Repeat("x", 4096))
	require.NoError(t, opts.Validate())

	_, err := engine.New(opts, nil).Run(testContext(t))
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dst, "big.bin"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}

// 🧪 TestChildrenOnly fans out direct child directories and ignores
// top-level files
func TestChildrenOnly(t *testing.T) {
	opts, src, dst := testOptions(t)
	opts.ChildrenOnly = true
	writeFile(t, filepath.Join(src, "c1", "one.txt"), "one")
	writeFile(t, filepath.Join(src, "c2", "two.txt"), "two")
	writeFile(t, filepath.Join(src, "toplevel.txt"), "ignored")
	require.NoError(t, opts.Validate())

	_, err := engine.New(opts, nil).Run(testContext(t))
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dst, "c1", "one.txt"))
	assert.FileExists(t, filepath.Join(dst, "c2", "two.txt"))
	assert.NoFileExists(t, filepath.Join(dst, "toplevel.txt"))
}

// 🧪 TestPreserveRoot nests each source under its basename
func TestPreserveRoot(t *testing.T) {
	opts, src, dst := testOptions(t)
	opts.PreserveRoot = true
	writeFile(t, filepath.Join(src, "a.txt"), "alpha")
	require.NoError(t, opts.Validate())

	_, err := engine.New(opts, nil).Run(testContext(t))
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dst, filepath.Base(src), "a.txt"))
}

// 🧪 TestPreconditionMissingSource aborts before any I/O
func TestPreconditionMissingSource(t *testing.T) {
	opts, _, dst := testOptions(t)
	opts.Sources = []string{filepath.Join(t.TempDir(), "nope")}
	require.NoError(t, opts.Validate())

	_, err := engine.New(opts, nil).Run(testContext(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
	assert.NoDirExists(t, dst)
}

// 🧪 TestPreconditionNestedDestination rejects a destination inside a
// source root to avoid infinite self-copy
func TestPreconditionNestedDestination(t *testing.T) {
	opts, src, _ := testOptions(t)
	opts.Destination = filepath.Join(src, "inner")
	require.NoError(t, os.MkdirAll(opts.Destination, 0o755))
	require.NoError(t, opts.Validate())

	_, err := engine.New(opts, nil).Run(testContext(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "own subdirectory")
}

// 🧪 TestRetryExhaustion attempts exactly the configured budget, then
// fails the file and surfaces the error
func TestRetryExhaustion(t *testing.T) {
	opts, src, dst := testOptions(t)
	opts.Retries = 3
	opts.ForceOverwrite = true
	writeFile(t, filepath.Join(src, "victim.txt"), "data")
	// A directory squatting on the destination file path makes every
	// create attempt fail
	require.NoError(t, os.MkdirAll(filepath.Join(dst, "victim.txt"), 0o755))
	require.NoError(t, opts.Validate())

	hub := progress.NewHub()
	st, err := engine.New(opts, hub).Run(testContext(t))
	require.Error(t, err)

	assert.Equal(t, uint64(1), st.FilesFailed.Load())
	assert.Equal(t, uint64(0), st.FilesCopied.Load())

	logs := strings.Join(hub.TakeLogs(), "\n")
	assert.Contains(t, logs, "Retry 1 of 3")
	assert.Contains(t, logs, "Retry 2 of 3")
	assert.NotContains(t, logs, "Retry 3 of 3", "the budget counts total attempts")
	assert.Contains(t, logs, "Failed to copy after 3 retries")
}

// 🧪 TestFailFastSiblingAbort pins the existing behavior: the first
// unrecovered file error stops the remaining siblings of its batch
func TestFailFastSiblingAbort(t *testing.T) {
	opts, src, dst := testOptions(t)
	opts.Retries = 1
	opts.ForceOverwrite = true
	writeFile(t, filepath.Join(src, "a_fails.txt"), "data")
	writeFile(t, filepath.Join(src, "b_later.txt"), "data")
	require.NoError(t, os.MkdirAll(filepath.Join(dst, "a_fails.txt"), 0o755))
	require.NoError(t, opts.Validate())

	st, err := engine.New(opts, nil).Run(testContext(t))
	require.Error(t, err)

	assert.Equal(t, uint64(1), st.FilesFailed.Load())
	assert.NoFileExists(t, filepath.Join(dst, "b_later.txt"),
		"siblings after the failure are abandoned")
}

// 🧪 TestCancelledBeforeRun returns success immediately with empty stats
func TestCancelledBeforeRun(t *testing.T) {
	opts, src, dst := testOptions(t)
	writeFile(t, filepath.Join(src, "a.txt"), "alpha")
	require.NoError(t, opts.Validate())

	hub := progress.NewHub()
	hub.Cancel()

	st, err := engine.New(opts, hub).Run(testContext(t))
	require.NoError(t, err, "cancellation is not an error")
	assert.Equal(t, uint64(0), st.FilesCopied.Load())
	assert.NoFileExists(t, filepath.Join(dst, "a.txt"))
	assert.Equal(t, progress.StateCancelled, hub.Latest().State)
}

// cancelAfterLog cancels the run as soon as the first file copy is
// announced, then records whether any log line arrives afterwards
type cancelAfterLog struct {
	progress.Null
	mu         sync.Mutex
	cancelled  bool
	lateLine   string
	triggerOn  string
	sawTrigger bool
}

func (c *cancelAfterLog) OnLog(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelled && c.sawTrigger {
		if c.lateLine == "" {
			c.lateLine = line
		}
		return
	}
	if strings.Contains(line, c.triggerOn) {
		c.sawTrigger = true
		c.cancelled = true
	}
}

func (c *cancelAfterLog) IsCancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}

// 🧪 TestCancelMidRun stops promptly after the cancel is observed and
// emits no further log lines
func TestCancelMidRun(t *testing.T) {
	opts, src, dst := testOptions(t)
	writeFile(t, filepath.Join(src, "a.txt"), "alpha")
	writeFile(t, filepath.Join(src, "z.txt"), "zulu")
	require.NoError(t, opts.Validate())

	cb := &cancelAfterLog{triggerOn: "Copying file"}
	st, err := engine.New(opts, cb).Run(testContext(t))
	require.NoError(t, err, "cancellation is not an error")

	assert.NoFileExists(t, filepath.Join(dst, "z.txt"),
		"entries after the cancel point are not processed")
	assert.LessOrEqual(t, st.FilesCopied.Load(), uint64(1))
	assert.Empty(t, cb.lateLine, "no log lines after cancellation is observed")
}

// 🧪 TestParallelCopy runs a wide directory through the worker pool
func TestParallelCopy(t *testing.T) {
	opts, src, dst := testOptions(t)
	opts.Threads = 4
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		writeFile(t, filepath.Join(src, name+".txt"), strings.Repeat(name, 100))
	}
	writeFile(t, filepath.Join(src, "deep", "nested", "i.txt"), "nested")
	require.NoError(t, opts.Validate())

	st, err := engine.New(opts, nil).Run(testContext(t))
	require.NoError(t, err)

	assert.Equal(t, uint64(9), st.FilesCopied.Load())
	assert.FileExists(t, filepath.Join(dst, "deep", "nested", "i.txt"))
}

// 🧪 TestLogFileSink appends every logged line to the log file
func TestLogFileSink(t *testing.T) {
	opts, src, _ := testOptions(t)
	logPath := filepath.Join(t.TempDir(), "run.log")
	opts.LogFile = logPath
	writeFile(t, filepath.Join(src, "a.txt"), "alpha")
	require.NoError(t, opts.Validate())

	_, err := engine.New(opts, nil).Run(testContext(t))
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "robosync - Started")
	assert.Contains(t, content, "Copying file")
	assert.Contains(t, content, "Files copied:        1")
	assert.True(t, strings.HasSuffix(content, "\n"), "lines are newline-terminated")
}

// 🧪 TestProgressTotals reports scan totals and converges at Completed
func TestProgressTotals(t *testing.T) {
	opts, src, _ := testOptions(t)
	opts.ShowProgress = true
	writeFile(t, filepath.Join(src, "a.bin"), strings.Repeat("x", 1000))
	writeFile(t, filepath.Join(src, "b.bin"), strings.Repeat("y", 500))
	require.NoError(t, opts.Validate())

	hub := progress.NewHub()
	st, err := engine.New(opts, hub).Run(testContext(t))
	require.NoError(t, err)

	final := hub.Latest()
	assert.Equal(t, progress.StateCompleted, final.State)
	assert.Equal(t, uint64(2), final.FilesTotal)
	assert.Equal(t, uint64(1500), final.BytesTotal)
	assert.Equal(t, st.FilesCopied.Load(), final.FilesDone)
	assert.Equal(t, st.BytesCopied.Load(), final.BytesDone)
}
