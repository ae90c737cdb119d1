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

// 📊 State represents the phase of a synchronization run
type State int

const (
	StateIdle State = iota
	StateScanning
	StateCopying
	StatePaused
	StateCancelled
	StateCompleted
	StateFailed
)

// String returns a string representation of State
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateCopying:
		return "copying"
	case StatePaused:
		return "paused"
	case StateCancelled:
		return "cancelled"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further state transitions can happen
func (s State) Terminal() bool {
	return s == StateCancelled || s == StateCompleted || s == StateFailed
}

// 📄 Snapshot is a point-in-time view of a run. It is recomputed on
// every callback rather than queued, so a slow consumer only ever
// observes the most recent value.
type Snapshot struct {
	State       State  // Current phase
	CurrentFile string // Path of the file being transferred
	FilesDone   uint64 // Files fully copied so far
	FilesTotal  uint64 // Files discovered by the scan (0 when scanning is off)
	BytesDone   uint64 // Bytes copied so far, including the current file
	BytesTotal  uint64 // Bytes discovered by the scan
	FileDone    uint64 // Current file's bytes copied
	FileTotal   uint64 // Current file's size
	Speed       uint64 // Instantaneous throughput in bytes per second
}

// Percentage returns run-level completion in the range 0-100
func (s Snapshot) Percentage() float64 {
	if s.BytesTotal == 0 {
		return 0
	}
	return float64(s.BytesDone) / float64(s.BytesTotal) * 100
}

// FilePercentage returns current-file completion in the range 0-100
func (s Snapshot) FilePercentage() float64 {
	if s.FileTotal == 0 {
		return 0
	}
	return float64(s.FileDone) / float64(s.FileTotal) * 100
}
