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
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/robosync/pkg/progress"
	"gitlab.com/tozd/go/errors"
)

// 🔄 syncDirectory reconciles one source directory with one destination
// directory: it transfers matching files, recurses into subdirectories
// when enabled, and finally purges destination entries absent from the
// source. A failure to read the source directory is fatal to the whole
// subtree.
func (r *run) syncDirectory(ctx context.Context, srcDir, dstDir string) error {
	if r.cancelled() {
		return nil
	}
	progress.WaitWhilePaused(r.progress)

	zerolog.Ctx(ctx).Debug().Str("src", srcDir).Str("dst", dstDir).Msg("reconciling directory")

	if _, err := os.Stat(dstDir); os.IsNotExist(err) {
		if !r.opts.ListOnly {
			r.logger.Log("Creating directory: " + dstDir)
			if err := os.MkdirAll(dstDir, 0o755); err != nil {
				return errors.Errorf("creating directory %s: %w", dstDir, err)
			}
		} else {
			r.logger.Log("Would create directory: " + dstDir)
		}
		r.stats.AddDirCreated()
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return errors.Errorf("reading directory %s: %w", srcDir, err)
	}

	// Capture source names before recursion; the purge step compares
	// against this set, not post-copy state
	srcNames := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		srcNames[entry.Name()] = struct{}{}
	}

	err = r.forEachEntry(ctx, entries, func(ctx context.Context, entry fs.DirEntry) error {
		if r.cancelled() {
			return nil
		}

		name := entry.Name()
		srcPath := filepath.Join(srcDir, name)

		if !entry.IsDir() {
			// Files matching no pattern are invisible to the run
			if !r.matcher.Matches(name) {
				return nil
			}
			return r.copyFile(ctx, srcPath, filepath.Join(dstDir, name))
		}

		if !r.opts.Recursive {
			return nil
		}

		if !r.opts.IncludeEmpty {
			empty, err := isDirEmpty(srcPath)
			if err != nil {
				return errors.Errorf("checking directory %s: %w", srcPath, err)
			}
			if empty {
				if r.opts.LogFileNames {
					r.logger.Log("Skipping empty directory: " + srcPath)
				}
				r.stats.AddDirSkipped()
				return nil
			}
		}

		if err := r.syncDirectory(ctx, srcPath, filepath.Join(dstDir, name)); err != nil {
			return err
		}

		if r.opts.MoveDirs && !r.opts.ListOnly {
			if empty, err := isDirEmpty(srcPath); err == nil && empty {
				os.Remove(srcPath)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if r.opts.Purge && !r.opts.ListOnly {
		return r.purgeDirectory(ctx, dstDir, srcNames)
	}
	return nil
}

// 🗑️ purgeDirectory removes destination entries whose names were not
// present among the source entries captured before recursion.
func (r *run) purgeDirectory(ctx context.Context, dstDir string, srcNames map[string]struct{}) error {
	dstEntries, err := os.ReadDir(dstDir)
	if err != nil {
		// An unreadable destination just means nothing to purge
		return nil
	}

	return r.forEachEntry(ctx, dstEntries, func(ctx context.Context, entry fs.DirEntry) error {
		if r.cancelled() {
			return nil
		}

		name := entry.Name()
		if _, ok := srcNames[name]; ok {
			return nil
		}

		path := filepath.Join(dstDir, name)

		if !r.acquireSlot(ctx) {
			return nil
		}
		defer r.releaseSlot()

		if entry.IsDir() {
			if r.opts.ShredFiles {
				r.logger.Log("Securely removing directory: " + path)
				if err := r.eraser.EraseDir(path); err != nil {
					return err
				}
			} else {
				r.logger.Log("Removing directory: " + path)
				if err := os.RemoveAll(path); err != nil {
					return errors.Errorf("removing directory %s: %w", path, err)
				}
			}
			r.stats.AddDirRemoved()
			return nil
		}

		if r.opts.ShredFiles {
			r.logger.Log("Securely removing file: " + path)
			if err := r.eraser.EraseFile(path); err != nil {
				return err
			}
		} else {
			r.logger.Log("Removing file: " + path)
			if err := os.Remove(path); err != nil {
				if os.IsNotExist(err) {
					// Already gone; silently uncounted
					return nil
				}
				return errors.Errorf("removing file %s: %w", path, err)
			}
		}
		r.stats.AddFileRemoved()
		return nil
	})
}

// isDirEmpty reports whether a directory has no entries
func isDirEmpty(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.ReadDir(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}
