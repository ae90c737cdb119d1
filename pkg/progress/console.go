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

package progress

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/fatih/color"
)

// 🖥️ Console renders progress to a terminal with carriage-return
// updates. Pause is not supported from a plain console; cancellation is
// driven through Cancel (typically wired to SIGINT by the caller).
type Console struct {
	mu            sync.Mutex
	out           io.Writer
	cancelled     atomic.Bool
	showProgress  bool
	showFileNames bool

	percentColor *color.Color
	doneColor    *color.Color
}

// 🏭 NewConsole creates a console observer writing to out
func NewConsole(out io.Writer, showProgress, showFileNames bool) *Console {
	return &Console{
		out:           out,
		showProgress:  showProgress,
		showFileNames: showFileNames,
		percentColor:  color.New(color.FgCyan),
		doneColor:     color.New(color.FgGreen),
	}
}

// OnProgress renders the snapshot as a single overwritten line
func (c *Console) OnProgress(snap Snapshot) {
	if !c.showProgress {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch snap.State {
	case StateScanning:
		fmt.Fprintf(c.out, "\rScanning: %d files found...", snap.FilesTotal)
	case StateCopying:
		pct := c.percentColor.Sprintf("%3.0f%%", snap.Percentage())
		fmt.Fprintf(c.out, "\r%s - %d of %d files (%s/s)",
			pct, snap.FilesDone, snap.FilesTotal, humanBytes(snap.Speed))
	case StateCompleted:
		fmt.Fprintf(c.out, "\n%s\n", c.doneColor.Sprint("Completed"))
	case StateCancelled:
		fmt.Fprintf(c.out, "\nCancelled\n")
	case StateFailed:
		fmt.Fprintf(c.out, "\nFailed\n")
	}
}

// OnLog prints the line when file-name logging is enabled
func (c *Console) OnLog(line string) {
	if !c.showFileNames {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}

// IsCancelled reports whether Cancel was called
func (c *Console) IsCancelled() bool {
	return c.cancelled.Load()
}

// IsPaused always reports false for console runs
func (c *Console) IsPaused() bool {
	return false
}

// 🛑 Cancel requests cooperative cancellation
func (c *Console) Cancel() {
	c.cancelled.Store(true)
}

// humanBytes formats a byte count with a binary unit suffix
func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
