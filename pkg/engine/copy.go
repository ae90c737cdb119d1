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
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/robosync/pkg/progress"
	"gitlab.com/tozd/go/errors"
)

// copyBufferSize is the chunk size for streamed transfers
const copyBufferSize = 64 * 1024

// errTransferCancelled aborts a streamed copy from inside the chunk
// loop; the retry loop converts it into a silent return.
var errTransferCancelled = errors.New("transfer cancelled")

// 🔍 shouldCopy decides whether a source file needs transferring:
// always under force-overwrite, when the destination is absent, when
// the source is newer, or when timestamps tie but sizes differ.
func shouldCopy(srcInfo, dstInfo os.FileInfo, force bool) bool {
	if force {
		return true
	}
	if dstInfo == nil {
		return true
	}

	srcMod := srcInfo.ModTime()
	dstMod := dstInfo.ModTime()

	if srcMod.After(dstMod) {
		return true
	}
	if srcMod.Equal(dstMod) && srcInfo.Size() != dstInfo.Size() {
		return true
	}
	return false
}

// 📄 copyFile transfers one file, retrying transient failures up to the
// configured attempt budget with a fixed wait in between. Exhausting
// the budget counts the file failed and propagates the error, which
// fail-fasts the containing sibling batch.
func (r *run) copyFile(ctx context.Context, srcPath, dstPath string) error {
	if r.cancelled() {
		return nil
	}
	progress.WaitWhilePaused(r.progress)

	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return errors.Errorf("stating source file: %w", err)
	}
	dstInfo, _ := os.Stat(dstPath)

	if !shouldCopy(srcInfo, dstInfo, r.opts.ForceOverwrite) {
		r.stats.AddFileSkipped()
		return nil
	}

	if r.opts.ListOnly {
		r.logger.Log(fmt.Sprintf("Would copy file: %s -> %s", srcPath, dstPath))
		// Intentional quirk carried over from the original tool:
		// list-only still counts the file as copied.
		r.stats.AddFileCopied(uint64(srcInfo.Size()))
		return nil
	}

	if r.opts.LogFileNames {
		r.logger.Log(fmt.Sprintf("Copying file: %s -> %s", srcPath, dstPath))
	}

	if !r.acquireSlot(ctx) {
		return nil
	}
	defer r.releaseSlot()

	attempt := 0
	for {
		if r.cancelled() {
			return nil
		}

		err := r.copyContent(srcPath, dstPath, uint64(srcInfo.Size()))
		if err == nil {
			break
		}
		if r.cancelled() {
			// A cancel observed mid-transfer is not a failure
			return nil
		}

		attempt++
		if attempt >= r.opts.Retries {
			r.logger.Log(fmt.Sprintf("Failed to copy after %d retries: %s -> %s, Error: %v",
				r.opts.Retries, srcPath, dstPath, err))
			r.stats.AddFileFailed()
			return errors.Errorf("copying %s: %w", srcPath, err)
		}

		r.logger.Log(fmt.Sprintf("Retry %d of %d: %s -> %s, Error: %v",
			attempt, r.opts.Retries, srcPath, dstPath, err))
		time.Sleep(r.opts.RetryWait)
	}

	// Replicate the source's modification time; best effort
	os.Chtimes(dstPath, srcInfo.ModTime(), srcInfo.ModTime())

	if err := applyAttributes(dstPath, r.opts.AttributesAdd, r.opts.AttributesRemove); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", dstPath).Msg("applying attributes")
	}

	if r.opts.MoveFiles {
		if r.opts.ShredFiles {
			if err := r.eraser.EraseFile(srcPath); err != nil {
				return errors.Errorf("shredding moved source: %w", err)
			}
		} else {
			os.Remove(srcPath)
		}
	}

	r.stats.AddFileCopied(uint64(srcInfo.Size()))
	return nil
}

// 📥 copyContent streams the file in fixed-size chunks, reporting
// per-chunk byte progress. Under restartable mode every chunk is
// synced to disk before the next read.
func (r *run) copyContent(srcPath, dstPath string, total uint64) error {
	if r.opts.EmptyFiles {
		// Zero-length placeholder instead of content
		dst, err := os.Create(dstPath)
		if err != nil {
			return errors.Errorf("creating placeholder: %w", err)
		}
		return dst.Close()
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return errors.Errorf("opening source: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return errors.Errorf("creating destination: %w", err)
	}

	buf := make([]byte, copyBufferSize)
	var copied uint64

	for {
		if r.cancelled() {
			dst.Close()
			return errTransferCancelled
		}
		progress.WaitWhilePaused(r.progress)

		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				dst.Close()
				return errors.Errorf("writing chunk: %w", err)
			}
			if r.opts.Restartable {
				if err := dst.Sync(); err != nil {
					dst.Close()
					return errors.Errorf("syncing chunk: %w", err)
				}
			}

			copied += uint64(n)
			r.progress.OnProgress(progress.Snapshot{
				State:       progress.StateCopying,
				CurrentFile: srcPath,
				FileDone:    copied,
				FileTotal:   total,
			})
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			dst.Close()
			return errors.Errorf("reading chunk: %w", readErr)
		}
	}

	if err := dst.Close(); err != nil {
		return errors.Errorf("closing destination: %w", err)
	}
	return nil
}
