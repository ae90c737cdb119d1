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

import "time"

// pausePollInterval is the recheck period for callbacks that cannot
// block on pause natively.
const pausePollInterval = 50 * time.Millisecond

// 🔌 Callback is the single capability interface the engine holds for
// observation and control. Implementations must be safe for concurrent
// use by multiple workers.
type Callback interface {
	// OnProgress delivers the latest snapshot
	OnProgress(snap Snapshot)

	// OnLog delivers one human-readable log line
	OnLog(line string)

	// IsCancelled reports whether the run should stop cooperatively
	IsCancelled() bool

	// IsPaused reports whether workers should hold off on I/O
	IsPaused() bool
}

// 🔌 PauseWaiter is implemented by callbacks that can park a worker
// until the pause is lifted, instead of being polled.
type PauseWaiter interface {
	WaitWhilePaused()
}

// ⏸️ WaitWhilePaused blocks until the callback reports unpaused or
// cancelled. Callbacks implementing PauseWaiter block on their own
// gate; everything else is polled. No forward I/O may happen while
// paused, and resumption is prompt after the pause is toggled off.
func WaitWhilePaused(c Callback) {
	if w, ok := c.(PauseWaiter); ok {
		w.WaitWhilePaused()
		return
	}
	for c.IsPaused() && !c.IsCancelled() {
		time.Sleep(pausePollInterval)
	}
}

// 🔇 Null is a callback that ignores everything. Useful for headless
// runs and tests.
type Null struct{}

func (Null) OnProgress(Snapshot) {}
func (Null) OnLog(string)        {}
func (Null) IsCancelled() bool   { return false }
func (Null) IsPaused() bool      { return false }
