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

// Package shred implements best-effort secure deletion: file contents
// are overwritten with six fixed byte patterns and one pass of random
// data before the entry is unlinked. This does not defend against
// copy-on-write or wear-leveled storage, where old blocks may survive
// the overwrite.
package shred

import (
	"crypto/rand"
	"io"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

const bufferSize = 64 * 1024

// wipePatterns are the fixed overwrite passes, applied in order before
// the final random pass.
var wipePatterns = [...]byte{0xFF, 0x00, 0xAA, 0x55, 0xF0, 0x0F}

// LogFunc receives one completion line per erased target. Plaintext
// content is never logged.
type LogFunc func(line string)

// 🗑️ Eraser overwrites and removes files and directory trees
type Eraser struct {
	logf LogFunc
}

// 🏭 New creates an eraser; logf may be nil for silent operation
func New(logf LogFunc) *Eraser {
	if logf == nil {
		logf = func(string) {}
	}
	return &Eraser{logf: logf}
}

// syncWriter is the subset of *os.File the overwrite passes need
type syncWriter interface {
	io.WriteSeeker
	Sync() error
}

// EraseFile overwrites the file's full length with each fixed pattern,
// then with random bytes, syncing after every complete pass, and
// finally unlinks it.
func (e *Eraser) EraseFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Errorf("stating file: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return errors.Errorf("opening file for overwrite: %w", err)
	}

	if err := overwrite(f, info.Size()); err != nil {
		f.Close()
		return errors.Errorf("overwriting %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.Errorf("closing file: %w", err)
	}

	if err := os.Remove(path); err != nil {
		return errors.Errorf("removing file: %w", err)
	}

	e.logf("Securely deleted file: " + path)
	return nil
}

// EraseDir erases every file below dir depth-first, then removes the
// emptied directories bottom-up.
func (e *Eraser) EraseDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Errorf("reading directory: %w", err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := e.EraseDir(path); err != nil {
				return err
			}
		} else {
			if err := e.EraseFile(path); err != nil {
				return err
			}
		}
	}

	if err := os.Remove(dir); err != nil {
		return errors.Errorf("removing directory: %w", err)
	}

	e.logf("Removed directory after secure file deletion: " + dir)
	return nil
}

// overwrite runs the seven passes against an already-open file
func overwrite(f syncWriter, size int64) error {
	buf := make([]byte, bufferSize)

	for _, pat := range wipePatterns {
		for i := range buf {
			buf[i] = pat
		}
		if err := writePass(f, buf, size); err != nil {
			return err
		}
	}

	if _, err := rand.Read(buf); err != nil {
		return errors.Errorf("generating random pass: %w", err)
	}
	return writePass(f, buf, size)
}

// writePass writes buf repeatedly from offset 0 until size bytes are
// covered, then syncs.
func writePass(f syncWriter, buf []byte, size int64) error {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return errors.Errorf("seeking to start: %w", err)
	}

	remaining := size
	for remaining > 0 {
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		if _, err := f.Write(buf[:n]); err != nil {
			return errors.Errorf("writing pass: %w", err)
		}
		remaining -= n
	}

	if err := f.Sync(); err != nil {
		return errors.Errorf("syncing pass: %w", err)
	}
	return nil
}
