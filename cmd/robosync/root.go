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

package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/robosync/pkg/config"
	"github.com/walteh/robosync/pkg/engine"
	"github.com/walteh/robosync/pkg/progress"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	jobFile      string
	debug        bool
	includeEmpty bool
	noProgress   bool
	noFileLog    bool
	waitSeconds  int
	threads      int
)

func newRootCmd() *cobra.Command {
	opts := config.New()

	cmd := &cobra.Command{
		Use:          "robosync SOURCE DEST [PATTERN...]",
		Short:        "Synchronize directory trees with mirror, purge, and secure-delete policies",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging()
			runCtx := logger.WithContext(cmd.Context())

			if jobFile != "" {
				loaded, err := config.Load(runCtx, jobFile)
				if err != nil {
					pterm.Error.Println(err.Error())
					return err
				}
				opts = loaded
			} else {
				if len(args) < 2 {
					return errors.New("expected SOURCE and DEST arguments (or --job)")
				}
				opts.Sources = []string{args[0]}
				opts.Destination = args[1]
				opts.Patterns = args[2:]
			}

			// Flag-derived switches apply on top of either input mode
			if includeEmpty {
				opts.Recursive = true
				opts.IncludeEmpty = true
			}
			if noProgress {
				opts.ShowProgress = false
			}
			if noFileLog {
				opts.LogFileNames = false
			}
			if cmd.Flags().Changed("wait") {
				opts.RetryWait = time.Duration(waitSeconds) * time.Second
			}
			if cmd.Flags().Changed("mt") {
				opts.Threads = threads
			}

			if err := opts.Validate(); err != nil {
				pterm.Error.Println(err.Error())
				return err
			}

			console := progress.NewConsole(os.Stdout, opts.ShowProgress, opts.LogFileNames)

			// First interrupt requests cooperative cancellation; the
			// engine unwinds at its next poll point
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				<-sigCh
				pterm.Warning.Println("interrupt received, finishing current operations")
				console.Cancel()
			}()

			pterm.Info.Printfln("robosync %s", opts.String())

			st, err := engine.New(opts, console).Run(runCtx)
			if err != nil {
				pterm.Error.Printfln("synchronization failed: %v", err)
				return err
			}

			if console.IsCancelled() {
				pterm.Warning.Printfln("cancelled after %d files (%d bytes)",
					st.FilesCopied.Load(), st.BytesCopied.Load())
				return nil
			}

			pterm.Success.Printfln("%d files copied, %d skipped, %d failed, %d removed",
				st.FilesCopied.Load(), st.FilesSkipped.Load(),
				st.FilesFailed.Load(), st.FilesRemoved.Load())
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&jobFile, "job", "j", "", "load a job file (.yaml or .hcl) instead of positional arguments")
	flags.BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	flags.BoolVarP(&opts.Recursive, "recursive", "s", false, "copy subdirectories, but not empty ones")
	flags.BoolVarP(&includeEmpty, "empty-dirs", "e", false, "copy subdirectories, including empty ones")
	flags.BoolVarP(&opts.Restartable, "restartable", "z", false, "flush after every chunk (slower but more robust)")
	flags.BoolVarP(&opts.BackupMode, "backup", "b", false, "copy files in backup mode")
	flags.BoolVar(&opts.Purge, "purge", false, "delete destination entries that no longer exist in source")
	flags.BoolVar(&opts.Mirror, "mir", false, "mirror the directory tree (purge plus all subdirectories)")
	flags.BoolVar(&opts.MoveFiles, "mov", false, "move files (delete from source after copying)")
	flags.BoolVar(&opts.MoveDirs, "move", false, "move files and directories")
	flags.StringVar(&opts.AttributesAdd, "attrs-add", "", "add attributes to copied files (RASHCN)")
	flags.StringVar(&opts.AttributesRemove, "attrs-remove", "", "remove attributes from copied files (RASHCN)")
	flags.IntVar(&threads, "mt", config.DefaultThreads, "multithreaded copying with n threads")
	flags.Lookup("mt").NoOptDefVal = "8"
	flags.IntVarP(&opts.Retries, "retries", "r", config.DefaultRetries, "number of retries on failed copies")
	flags.IntVarP(&waitSeconds, "wait", "w", 30, "wait time between retries in seconds")
	flags.StringVar(&opts.LogFile, "log", "", "append output to a log file")
	flags.BoolVarP(&opts.ListOnly, "list-only", "l", false, "list only - don't copy, timestamp or delete anything")
	flags.BoolVar(&noProgress, "no-progress", false, "don't display percentage copied")
	flags.BoolVar(&noFileLog, "no-file-log", false, "don't log file names")
	flags.BoolVar(&opts.EmptyFiles, "create-empty", false, "create zero-byte copies of files")
	flags.BoolVar(&opts.ChildrenOnly, "children-only", false, "process only direct child folders of each source")
	flags.BoolVar(&opts.ShredFiles, "shred", false, "securely overwrite files before deletion")
	flags.BoolVar(&opts.ForceOverwrite, "force", false, "copy files even when the destination is up to date")
	flags.BoolVar(&opts.PreserveRoot, "preserve-root", false, "nest each source under its directory name in the destination")

	return cmd
}

// setupLogging configures zerolog based on flags
func setupLogging() zerolog.Logger {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
	return log
}
