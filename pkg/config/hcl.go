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
	"context"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL job files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses a job definition from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Options, error) {
	type hclJob struct {
		Sources     []string `hcl:"sources"`
		Destination string   `hcl:"destination"`
		Patterns    []string `hcl:"patterns,optional"`

		Recursive    bool `hcl:"recursive,optional"`
		IncludeEmpty bool `hcl:"include_empty,optional"`
		Restartable  bool `hcl:"restartable,optional"`
		BackupMode   bool `hcl:"backup_mode,optional"`
		Purge        bool `hcl:"purge,optional"`
		Mirror       bool `hcl:"mirror,optional"`
		MoveFiles    bool `hcl:"move_files,optional"`
		MoveDirs     bool `hcl:"move_dirs,optional"`

		AttributesAdd    string `hcl:"attributes_add,optional"`
		AttributesRemove string `hcl:"attributes_remove,optional"`

		Threads     *int `hcl:"threads,optional"`
		Retries     *int `hcl:"retries,optional"`
		WaitSeconds *int `hcl:"wait_seconds,optional"`

		LogFile        string `hcl:"log_file,optional"`
		ListOnly       bool   `hcl:"list_only,optional"`
		ShowProgress   *bool  `hcl:"show_progress,optional"`
		LogFileNames   *bool  `hcl:"log_file_names,optional"`
		EmptyFiles     bool   `hcl:"empty_files,optional"`
		ChildrenOnly   bool   `hcl:"children_only,optional"`
		ShredFiles     bool   `hcl:"shred_files,optional"`
		ForceOverwrite bool   `hcl:"force_overwrite,optional"`
		PreserveRoot   bool   `hcl:"preserve_root,optional"`
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "job.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var job hclJob
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &job)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	opts := New()
	opts.Sources = job.Sources
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
