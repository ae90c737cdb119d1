// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package engine implements the directory synchronization core: the
// recursive descent over source trees, per-file transfer with retry,
// mirror/purge reconciliation, and the progress/cancellation plumbing
// that ties them together.
package engine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/robosync/pkg/config"
	"github.com/walteh/robosync/pkg/pattern"
	"github.com/walteh/robosync/pkg/progress"
	"github.com/walteh/robosync/pkg/shred"
	"github.com/walteh/robosync/pkg/stats"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/semaphore"
)

// 🚂 Engine drives synchronization runs for one option set. The same
// engine can run repeatedly; every run gets fresh statistics.
type Engine struct {
	opts     *config.Options
	progress progress.Callback
}

// 🏭 New creates an engine; cb may be nil for a silent run
func New(opts *config.Options, cb progress.Callback) *Engine {
	if cb == nil {
		cb = progress.Null{}
	}
	return &Engine{opts: opts, progress: cb}
}

// run is the per-execution context shared by all workers of one run.
// Everything in it is either immutable (opts, matcher) or internally
// synchronized (stats, progress, logger, sem).
type run struct {
	opts     *config.Options
	matcher  *pattern.Matcher
	progress progress.Callback
	stats    *stats.Statistics
	logger   *runLogger
	eraser   *shred.Eraser
	sem      *semaphore.Weighted // nil in sequential mode
}

func (r *run) cancelled() bool {
	return r.progress.IsCancelled()
}

// 🏃 Run executes one synchronization pass and returns its statistics.
// Precondition failures (missing source, destination nested inside a
// source) abort before any I/O. Cancellation is not an error: the run
// returns whatever statistics accumulated before the cancel was
// observed.
func (e *Engine) Run(ctx context.Context) (*stats.Statistics, error) {
	if err := e.checkPreconditions(); err != nil {
		e.progress.OnLog("ERROR: " + err.Error())
		return nil, err
	}

	logger, err := newRunLogger(e.progress, e.opts.LogFile)
	if err != nil {
		return nil, err
	}
	defer logger.Close()

	r := &run{
		opts:     e.opts,
		matcher:  pattern.New(e.opts.Patterns),
		progress: e.progress,
		stats:    stats.New(),
		logger:   logger,
		eraser:   shred.New(logger.FileOnly),
	}
	if e.opts.Threads > 1 {
		r.sem = semaphore.NewWeighted(int64(e.opts.Threads))
	}

	zerolog.Ctx(ctx).Debug().
		Strs("sources", e.opts.Sources).
		Str("destination", e.opts.Destination).
		Int("threads", e.opts.Threads).
		Msg("starting synchronization run")

	startTime := time.Now()
	logger.Log(banner(fmt.Sprintf(
		"robosync - Started: %s\nSources: %s\nDestination: %s\nPatterns: %s\nOptions: %s",
		startTime.Format("15:04:05"),
		strings.Join(e.opts.Sources, ", "),
		e.opts.Destination,
		strings.Join(r.matcher.Patterns(), " "),
		e.opts.FlagString(),
	)))

	// Scan phase: count files and bytes so the copy phase can report
	// run-level totals
	var totalFiles, totalBytes uint64
	if e.opts.ShowProgress {
		e.progress.OnProgress(progress.Snapshot{State: progress.StateScanning})
		for _, source := range e.opts.Sources {
			files, bytes := r.scan(ctx, source)
			totalFiles += files
			totalBytes += bytes
		}
		e.progress.OnProgress(progress.Snapshot{
			State:      progress.StateScanning,
			FilesTotal: totalFiles,
			BytesTotal: totalBytes,
		})
	}

	if _, err := os.Stat(e.opts.Destination); os.IsNotExist(err) {
		if !e.opts.ListOnly {
			logger.Log("Creating destination directory: " + e.opts.Destination)
			if err := os.MkdirAll(e.opts.Destination, 0o755); err != nil {
				return nil, errors.Errorf("creating destination directory: %w", err)
			}
		} else {
			logger.Log("Would create destination directory: " + e.opts.Destination)
		}
	}

	merged := &mergingCallback{
		inner:      e.progress,
		stats:      r.stats,
		totalFiles: totalFiles,
		totalBytes: totalBytes,
		startTime:  startTime,
	}
	r.progress = merged
	logger.progress = merged

	merged.OnProgress(progress.Snapshot{State: progress.StateCopying})

	if err := e.runSources(ctx, r); err != nil {
		e.progress.OnProgress(progress.Snapshot{
			State:      progress.StateFailed,
			FilesTotal: totalFiles,
			BytesTotal: totalBytes,
		})
		return r.stats, err
	}

	if r.cancelled() {
		// No further log output after a cancel is observed; the caller
		// still gets the statistics accumulated so far
		e.progress.OnProgress(progress.Snapshot{State: progress.StateCancelled})
		return r.stats, nil
	}

	elapsed := time.Since(startTime)
	logger.Log(banner(fmt.Sprintf(
		"robosync - Finished: %s\nSources: %s\nDestination: %s\n\n%s\nElapsed time: %d seconds",
		time.Now().Format("15:04:05"),
		strings.Join(e.opts.Sources, ", "),
		e.opts.Destination,
		r.stats.String(),
		int(elapsed.Seconds()),
	)))

	e.progress.OnProgress(progress.Snapshot{
		State:      progress.StateCompleted,
		FilesDone:  r.stats.FilesCopied.Load(),
		FilesTotal: totalFiles,
		BytesDone:  r.stats.BytesCopied.Load(),
		BytesTotal: totalBytes,
	})

	return r.stats, nil
}

// runSources drives the copy phase over every source root
func (e *Engine) runSources(ctx context.Context, r *run) error {
	if e.opts.ChildrenOnly {
		for _, source := range e.opts.Sources {
			info, err := os.Stat(source)
			if err != nil || !info.IsDir() {
				continue
			}
			entries, err := os.ReadDir(source)
			if err != nil {
				return errors.Errorf("reading source %s: %w", source, err)
			}
			err = r.forEachEntry(ctx, entries, func(ctx context.Context, entry fs.DirEntry) error {
				if !entry.IsDir() {
					return nil
				}
				name := entry.Name()
				r.logger.Log("Processing child directory: " + name)
				return r.syncDirectory(ctx, filepath.Join(source, name), filepath.Join(e.opts.Destination, name))
			})
			if err != nil {
				return err
			}
		}
		return nil
	}

	for _, source := range e.opts.Sources {
		dst := e.opts.Destination
		if e.opts.PreserveRoot {
			if info, err := os.Stat(source); err == nil && info.IsDir() {
				dst = filepath.Join(dst, filepath.Base(filepath.Clean(source)))
			}
		}
		if err := r.syncDirectory(ctx, source, dst); err != nil {
			return err
		}
	}
	return nil
}

// checkPreconditions rejects missing sources and a destination nested
// inside any source root. The guard is deliberately narrow: it does not
// chase symlink cycles or overlap between source roots.
func (e *Engine) checkPreconditions() error {
	dstResolved := resolvePath(e.opts.Destination)

	for _, source := range e.opts.Sources {
		if _, err := os.Stat(source); err != nil {
			return errors.Errorf("source path does not exist: %s", source)
		}

		srcResolved := resolvePath(source)
		if srcResolved != "" && dstResolved != "" && isSubpath(srcResolved, dstResolved) {
			return errors.Errorf("cannot copy source into its own subdirectory: %s -> %s",
				source, e.opts.Destination)
		}
	}
	return nil
}

// resolvePath canonicalizes a path; empty result means the path does
// not exist yet and the nesting guard cannot apply.
func resolvePath(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return ""
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return ""
	}
	return abs
}

// isSubpath reports whether child equals parent or sits below it
func isSubpath(parent, child string) bool {
	if parent == child {
		return true
	}
	return strings.HasPrefix(child, parent+string(filepath.Separator))
}

// 🔍 scan walks a source tree counting pattern-matching files and their
// bytes. Unreadable directories produce a warning, not a failure: the
// totals just come up short.
func (r *run) scan(ctx context.Context, path string) (files, bytes uint64) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, 0
	}

	if !info.IsDir() {
		if r.matcher.Matches(filepath.Base(path)) {
			return 1, uint64(info.Size())
		}
		return 0, 0
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		r.progress.OnLog(fmt.Sprintf("Warning: Could not scan directory %s: %v", path, err))
		return 0, 0
	}

	for _, entry := range entries {
		child := filepath.Join(path, entry.Name())
		if entry.IsDir() {
			if r.opts.Recursive {
				f, b := r.scan(ctx, child)
				files += f
				bytes += b
			}
			continue
		}
		if !r.matcher.Matches(entry.Name()) {
			continue
		}
		files++
		if fi, err := entry.Info(); err == nil {
			bytes += uint64(fi.Size())
		}
	}
	return files, bytes
}

// banner wraps a message in the separator rule used by the log format
func banner(msg string) string {
	const rule = "-------------------------------------------------------------------------------"
	return rule + "\n" + msg + "\n" + rule
}

// 📊 mergingCallback merges the per-file byte stream from transfers
// with the run-wide counters to present externally consistent totals.
// The counters are independently-ordered atomics, so intermediate
// snapshots only converge eventually; the final totals at Completed
// are exact.
type mergingCallback struct {
	inner      progress.Callback
	stats      *stats.Statistics
	totalFiles uint64
	totalBytes uint64
	startTime  time.Time
}

func (m *mergingCallback) OnProgress(snap progress.Snapshot) {
	snap.FilesDone = m.stats.FilesCopied.Load()
	snap.BytesDone = m.stats.BytesCopied.Load() + snap.FileDone
	snap.FilesTotal = m.totalFiles
	snap.BytesTotal = m.totalBytes

	if secs := time.Since(m.startTime).Seconds(); secs > 0 {
		snap.Speed = uint64(float64(snap.BytesDone) / secs)
	}

	m.inner.OnProgress(snap)
}

func (m *mergingCallback) OnLog(line string) { m.inner.OnLog(line) }
func (m *mergingCallback) IsCancelled() bool { return m.inner.IsCancelled() }
func (m *mergingCallback) IsPaused() bool    { return m.inner.IsPaused() }

// WaitWhilePaused defers to the wrapped callback so hub-backed runs
// park on the gate instead of polling
func (m *mergingCallback) WaitWhilePaused() {
	progress.WaitWhilePaused(m.inner)
}
