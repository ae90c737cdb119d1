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

package stats

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// 📊 Statistics holds the counters for a single synchronization run.
// All counters are monotonic and incremented atomically, so one instance
// can be shared by every worker of a run without locking. A new instance
// is created per run; never reuse one across runs.
type Statistics struct {
	DirsCreated  atomic.Uint64
	DirsSkipped  atomic.Uint64
	DirsRemoved  atomic.Uint64
	FilesCopied  atomic.Uint64
	FilesSkipped atomic.Uint64
	FilesFailed  atomic.Uint64
	FilesRemoved atomic.Uint64
	BytesCopied  atomic.Uint64
}

// 🏭 New creates a zeroed statistics block for one run
func New() *Statistics {
	return &Statistics{}
}

// AddDirCreated records a created (or would-be-created) directory
func (s *Statistics) AddDirCreated() {
	s.DirsCreated.Add(1)
}

// AddDirSkipped records a directory skipped for being empty
func (s *Statistics) AddDirSkipped() {
	s.DirsSkipped.Add(1)
}

// AddDirRemoved records a directory purged from the destination
func (s *Statistics) AddDirRemoved() {
	s.DirsRemoved.Add(1)
}

// AddFileCopied records one copied file and its size
func (s *Statistics) AddFileCopied(bytes uint64) {
	s.FilesCopied.Add(1)
	s.BytesCopied.Add(bytes)
}

// AddFileSkipped records a file left alone by the change heuristic
func (s *Statistics) AddFileSkipped() {
	s.FilesSkipped.Add(1)
}

// AddFileFailed records a file whose transfer exhausted its retries
func (s *Statistics) AddFileFailed() {
	s.FilesFailed.Add(1)
}

// AddFileRemoved records a file purged from the destination
func (s *Statistics) AddFileRemoved() {
	s.FilesRemoved.Add(1)
}

// 📝 String renders the summary block used in the finish banner
func (s *Statistics) String() string {
	var b strings.Builder
	b.WriteString("Statistics:\n")
	fmt.Fprintf(&b, "    Directories created: %d\n", s.DirsCreated.Load())
	fmt.Fprintf(&b, "    Files copied:        %d\n", s.FilesCopied.Load())
	fmt.Fprintf(&b, "    Bytes copied:        %d\n", s.BytesCopied.Load())
	fmt.Fprintf(&b, "    Directories skipped: %d\n", s.DirsSkipped.Load())
	fmt.Fprintf(&b, "    Files skipped:       %d\n", s.FilesSkipped.Load())
	fmt.Fprintf(&b, "    Files failed:        %d\n", s.FilesFailed.Load())
	fmt.Fprintf(&b, "    Directories removed: %d\n", s.DirsRemoved.Load())
	fmt.Fprintf(&b, "    Files removed:       %d\n", s.FilesRemoved.Load())
	return b.String()
}
