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

package config

import (
	"fmt"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

// Defaults for the retry policy and worker pool. MTDefaultThreads is
// the shorthand used when multithreading is requested without an
// explicit count.
const (
	DefaultThreads   = 1
	MTDefaultThreads = 8
	DefaultRetries   = 1_000_000
	DefaultRetryWait = 30 * time.Second
)

// 📚 Options is the immutable per-run policy consumed by the engine.
// It must not be mutated once a run starts; every worker shares the
// same instance read-only.
type Options struct {
	Sources     []string `json:"sources" yaml:"sources"`
	Destination string   `json:"destination" yaml:"destination"`
	Patterns    []string `json:"patterns,omitempty" yaml:"patterns,omitempty"`

	Recursive    bool `json:"recursive,omitempty" yaml:"recursive,omitempty"`
	IncludeEmpty bool `json:"include_empty,omitempty" yaml:"include_empty,omitempty"`
	Restartable  bool `json:"restartable,omitempty" yaml:"restartable,omitempty"`
	BackupMode   bool `json:"backup_mode,omitempty" yaml:"backup_mode,omitempty"`
	Purge        bool `json:"purge,omitempty" yaml:"purge,omitempty"`
	Mirror       bool `json:"mirror,omitempty" yaml:"mirror,omitempty"`
	MoveFiles    bool `json:"move_files,omitempty" yaml:"move_files,omitempty"`
	MoveDirs     bool `json:"move_dirs,omitempty" yaml:"move_dirs,omitempty"`

	AttributesAdd    string `json:"attributes_add,omitempty" yaml:"attributes_add,omitempty"`
	AttributesRemove string `json:"attributes_remove,omitempty" yaml:"attributes_remove,omitempty"`

	Threads   int           `json:"threads,omitempty" yaml:"threads,omitempty"`
	Retries   int           `json:"retries,omitempty" yaml:"retries,omitempty"`
	RetryWait time.Duration `json:"retry_wait,omitempty" yaml:"retry_wait,omitempty"`

	LogFile        string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	ListOnly       bool   `json:"list_only,omitempty" yaml:"list_only,omitempty"`
	ShowProgress   bool   `json:"show_progress" yaml:"show_progress"`
	LogFileNames   bool   `json:"log_file_names" yaml:"log_file_names"`
	EmptyFiles     bool   `json:"empty_files,omitempty" yaml:"empty_files,omitempty"`
	ChildrenOnly   bool   `json:"children_only,omitempty" yaml:"children_only,omitempty"`
	ShredFiles     bool   `json:"shred_files,omitempty" yaml:"shred_files,omitempty"`
	ForceOverwrite bool   `json:"force_overwrite,omitempty" yaml:"force_overwrite,omitempty"`
	PreserveRoot   bool   `json:"preserve_root,omitempty" yaml:"preserve_root,omitempty"`
}

// 🏭 New returns options with the engine defaults applied
func New() *Options {
	return &Options{
		Threads:      DefaultThreads,
		Retries:      DefaultRetries,
		RetryWait:    DefaultRetryWait,
		ShowProgress: true,
		LogFileNames: true,
	}
}

// 🔍 Validate checks required fields and resolves composite switches.
// Mirror implies purge plus full recursion; moving directories implies
// moving files.
func (o *Options) Validate() error {
	if len(o.Sources) == 0 {
		return errors.New("at least one source is required")
	}
	if o.Destination == "" {
		return errors.New("destination is required")
	}
	if o.Threads < 1 {
		return errors.Errorf("threads must be at least 1, got %d", o.Threads)
	}
	if o.Retries < 1 {
		return errors.Errorf("retries must be at least 1, got %d", o.Retries)
	}
	if o.RetryWait < 0 {
		return errors.Errorf("retry wait must not be negative, got %s", o.RetryWait)
	}

	if o.Mirror {
		o.Purge = true
		o.Recursive = true
		o.IncludeEmpty = true
	}
	if o.MoveDirs {
		o.MoveFiles = true
	}

	return nil
}

// 📝 FlagString renders the option set in the classic switch notation
// used in the start banner
func (o *Options) FlagString() string {
	var flags []string

	if o.Recursive {
		if o.IncludeEmpty {
			flags = append(flags, "/E")
		} else {
			flags = append(flags, "/S")
		}
	}
	if o.Restartable {
		flags = append(flags, "/Z")
	}
	if o.BackupMode {
		flags = append(flags, "/B")
	}
	if o.Mirror {
		flags = append(flags, "/MIR")
	} else if o.Purge {
		flags = append(flags, "/PURGE")
	}
	if o.MoveDirs {
		flags = append(flags, "/MOVE")
	} else if o.MoveFiles {
		flags = append(flags, "/MOV")
	}
	if o.AttributesAdd != "" {
		flags = append(flags, "/A+:"+o.AttributesAdd)
	}
	if o.AttributesRemove != "" {
		flags = append(flags, "/A-:"+o.AttributesRemove)
	}
	if o.Threads != DefaultThreads {
		flags = append(flags, fmt.Sprintf("/MT:%d", o.Threads))
	}
	if o.Retries != DefaultRetries {
		flags = append(flags, fmt.Sprintf("/R:%d", o.Retries))
	}
	if o.RetryWait != DefaultRetryWait {
		flags = append(flags, fmt.Sprintf("/W:%d", int(o.RetryWait/time.Second)))
	}
	if o.ListOnly {
		flags = append(flags, "/L")
	}
	if !o.ShowProgress {
		flags = append(flags, "/NP")
	}
	if !o.LogFileNames {
		flags = append(flags, "/NFL")
	}
	if o.EmptyFiles {
		flags = append(flags, "/EMPTY")
	}
	if o.ChildrenOnly {
		flags = append(flags, "/CHILDONLY")
	}
	if o.ShredFiles {
		flags = append(flags, "/SHRED")
	}
	if o.ForceOverwrite {
		flags = append(flags, "/FORCE")
	}

	return strings.Join(flags, " ")
}

// 📝 String gives a one-line description of the job
func (o *Options) String() string {
	return fmt.Sprintf("%s -> %s [%s]",
		strings.Join(o.Sources, ", "), o.Destination, o.FlagString())
}
