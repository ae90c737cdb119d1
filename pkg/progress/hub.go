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

import "sync"

// 🔧 Hub is a shared observer for externally driven frontends. The
// engine pushes snapshots and log lines into it; a UI thread polls the
// latest snapshot and drains the log buffer on its own schedule.
// Intermediate snapshots are overwritten rather than queued, so a slow
// poller can miss updates but always sees the newest value.
type Hub struct {
	mu        sync.Mutex
	cond      *sync.Cond
	cancelled bool
	paused    bool
	latest    Snapshot
	logs      []string
}

// 🏭 NewHub creates a hub in the idle state
func NewHub() *Hub {
	h := &Hub{}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// OnProgress overwrites the latest snapshot
func (h *Hub) OnProgress(snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = snap
}

// OnLog appends a line to the log buffer
func (h *Hub) OnLog(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logs = append(h.logs, line)
}

// IsCancelled reports whether Cancel has been called since the last Reset
func (h *Hub) IsCancelled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelled
}

// IsPaused reports the current pause flag
func (h *Hub) IsPaused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.paused
}

// ⏸️ WaitWhilePaused parks the caller on the pause gate until the run
// is resumed or cancelled
func (h *Hub) WaitWhilePaused() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for h.paused && !h.cancelled {
		h.cond.Wait()
	}
}

// 🛑 Cancel requests cooperative cancellation and wakes paused workers
func (h *Hub) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancelled = true
	h.cond.Broadcast()
}

// TogglePause flips the pause flag
func (h *Hub) TogglePause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = !h.paused
	h.cond.Broadcast()
}

// SetPaused sets the pause flag explicitly
func (h *Hub) SetPaused(paused bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = paused
	h.cond.Broadcast()
}

// Latest returns the most recent snapshot
func (h *Hub) Latest() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest
}

// TakeLogs drains and returns all buffered log lines
func (h *Hub) TakeLogs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	logs := h.logs
	h.logs = nil
	return logs
}

// PeekLogs returns a copy of the buffered log lines without draining
func (h *Hub) PeekLogs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.logs))
	copy(out, h.logs)
	return out
}

// 🔄 Reset prepares the hub for a new run
func (h *Hub) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancelled = false
	h.paused = false
	h.latest = Snapshot{}
	h.logs = nil
	h.cond.Broadcast()
}
