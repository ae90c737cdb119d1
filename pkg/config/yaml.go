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
	"bytes"
	"context"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

func init() {
	Register(&YAMLParser{})
}

// 🔧 YAMLParser implements the Parser interface for YAML job files
type YAMLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

// 📝 Parse parses a job definition from YAML
func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Options, error) {
	// Define YAML schema. Optional scalars are pointers so absent keys
	// keep the engine defaults.
	type yamlJob struct {
		Source      string   `yaml:"source,omitempty"`
		Sources     []string `yaml:"sources,omitempty"`
		Destination string   `yaml:"destination"`
		Patterns    []string `yaml:"patterns,omitempty"`

		Recursive    bool `yaml:"recursive,omitempty"`
		IncludeEmpty bool `yaml:"include_empty,omitempty"`
		Restartable  bool `yaml:"restartable,omitempty"`
		BackupMode   bool `yaml:"backup_mode,omitempty"`
		Purge        bool `yaml:"purge,omitempty"`
		Mirror       bool `yaml:"mirror,omitempty"`
		MoveFiles    bool `yaml:"move_files,omitempty"`
		MoveDirs     bool `yaml:"move_dirs,omitempty"`

		AttributesAdd    string `yaml:"attributes_add,omitempty"`
		AttributesRemove string `yaml:"attributes_remove,omitempty"`

		Threads     *int `yaml:"threads,omitempty"`
		Retries     *int `yaml:"retries,omitempty"`
		WaitSeconds *int `yaml:"wait_seconds,omitempty"`

		LogFile        string `yaml:"log_file,omitempty"`
		ListOnly       bool   `yaml:"list_only,omitempty"`
		ShowProgress   *bool  `yaml:"show_progress,omitempty"`
		LogFileNames   *bool  `yaml:"log_file_names,omitempty"`
		EmptyFiles     bool   `yaml:"empty_files,omitempty"`
		ChildrenOnly   bool   `yaml:"children_only,omitempty"`
		ShredFiles     bool   `yaml:"shred_files,omitempty"`
		ForceOverwrite bool   `yaml:"force_overwrite,omitempty"`
		PreserveRoot   bool   `yaml:"preserve_root,omitempty"`
	}

	var job yamlJob
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&job); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	opts := New()
	opts.Sources = job.Sources
	if job.Source != "" {
		opts.Sources = append([]string{job.Source}, opts.Sources...)
	}
	opts.Destination = job.Destination
	opts.Patterns = job.Patterns
	opts.Recursive = job.Recursive
	opts.IncludeEmpty = job.IncludeEmpty
	opts.Restartable = job.Restartable
	opts.BackupMode = job.BackupMode
	opts.Purge = job.Purge
	opts.Mirror = job.Mirror
	opts.MoveFiles = job.MoveFiles
	opts.MoveDirs = job.MoveDirs
	opts.AttributesAdd = job.AttributesAdd
	opts.AttributesRemove = job.AttributesRemove
	opts.LogFile = job.LogFile
	opts.ListOnly = job.ListOnly
	opts.EmptyFiles = job.EmptyFiles
	opts.ChildrenOnly = job.ChildrenOnly
	opts.ShredFiles = job.ShredFiles
	opts.ForceOverwrite = job.ForceOverwrite
	opts.PreserveRoot = job.PreserveRoot

	if job.Threads != nil {
		opts.Threads = *job.Threads
	}
	if job.Retries != nil {
		opts.Retries = *job.Retries
	}
	if job.WaitSeconds != nil {
		opts.RetryWait = time.Duration(*job.WaitSeconds) * time.Second
	}
	if job.ShowProgress != nil {
		opts.ShowProgress = *job.ShowProgress
	}
	if job.LogFileNames != nil {
		opts.LogFileNames = *job.LogFileNames
	}

	return opts, nil
}
