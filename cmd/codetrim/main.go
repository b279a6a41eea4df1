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
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/walteh/codetrim/cmd/codetrim/commands"
	"github.com/walteh/codetrim/pkg/log"
	"gitlab.com/tozd/go/errors"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr}).With().Timestamp().Logger()
	ctx = logger.WithContext(ctx)

	o, cmd := newRootCmd(stdout)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, commands.ErrFilesFailed) {
			verbosity := log.Normal
			if o.Config != nil && o.Config.Verbose {
				verbosity = log.Verbose
			}
			log.New(stderr, verbosity).Failure(err)
		}
		return 1
	}
	return 0
}
