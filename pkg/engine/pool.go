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

package engine

import (
	"context"
	"io/fs"

	"golang.org/x/sync/errgroup"
)

// forEachEntry runs fn over sibling entries. With one thread the loop
// is fully sequential. Otherwise entries are dispatched as a batch of
// goroutines whose file I/O is gated by the run-wide semaphore; the
// first unrecovered error cancels the batch context so siblings not
// yet started are abandoned (fail-fast). No ordering is guaranteed
// among siblings.
func (r *run) forEachEntry(ctx context.Context, entries []fs.DirEntry, fn func(context.Context, fs.DirEntry) error) error {
	if r.opts.Threads <= 1 {
		for _, entry := range entries {
			if err := fn(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			if gctx.Err() != nil {
				// A sibling already failed; abort silently
				return nil
			}
			return fn(gctx, entry)
		})
	}
	return g.Wait()
}

// acquireSlot takes one worker slot from the shared pool before file
// I/O; it is a no-op in sequential mode. Returns false when the batch
// was cancelled while waiting.
func (r *run) acquireSlot(ctx context.Context) bool {
	if r.sem == nil {
		return true
	}
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	return true
}

// releaseSlot returns a worker slot to the shared pool
func (r *run) releaseSlot() {
	if r.sem != nil {
		r.sem.Release(1)
	}
}
