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
	"os"
	"sync"

	"github.com/walteh/robosync/pkg/progress"
	"gitlab.com/tozd/go/errors"
)

// 📝 runLogger fans every log line out to the progress observer and,
// when configured, appends it newline-terminated to the log file.
type runLogger struct {
	progress progress.Callback

	mu   sync.Mutex
	file *os.File
}

// newRunLogger opens the optional log file; path may be empty
func newRunLogger(cb progress.Callback, path string) (*runLogger, error) {
	l := &runLogger{progress: cb}
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return nil, errors.Errorf("creating log file: %w", err)
		}
		l.file = f
	}
	return l, nil
}

// Log delivers a line to the observer and the log file
func (l *runLogger) Log(line string) {
	l.progress.OnLog(line)
	l.fileLine(line)
}

// FileOnly appends a line to the log file without notifying the observer
func (l *runLogger) FileOnly(line string) {
	l.fileLine(line)
}

func (l *runLogger) fileLine(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.WriteString(line + "\n")
	}
}

// Close closes the log file if one was opened
func (l *runLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
