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

package opts

import (
	"context"
	"io"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/walteh/codetrim/pkg/config"
	"github.com/walteh/codetrim/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// 🎯 RootOpts holds the dependencies shared by every command
type RootOpts struct {
	ConfigFile string
	Debug      bool
	Version    string
	Console    io.Writer

	// set by Setup
	Config *config.Config
	Logger *log.Logger
}

// 🔧 Setup resolves the configuration from the config file, the environment and
// flags, then builds the console logger. The zerolog logger is attached to the
// returned context.
func (o *RootOpts) Setup(ctx context.Context, flags *pflag.FlagSet) (context.Context, error) {
	src := config.Sources{Dir: ".", Flags: flags}
	if o.ConfigFile != "" {
		src = config.Sources{File: o.ConfigFile, Flags: flags}
	}

	cfg, err := config.Resolve(ctx, src)
	if err != nil {
		return ctx, errors.Errorf("loading config: %w", err)
	}
	o.Config = cfg

	verbosity := log.Normal
	switch {
	case cfg.Quiet:
		verbosity = log.Quiet
	case cfg.Verbose:
		verbosity = log.Verbose
	}
	// color.NoColor is already true when stdout is not a terminal
	if cfg.NoColor || color.NoColor {
		log.SetColor(false)
	}
	o.Logger = log.New(o.Console, verbosity)

	level := zerolog.WarnLevel
	switch {
	case o.Debug:
		level = zerolog.DebugLevel
	case cfg.Verbose:
		level = zerolog.InfoLevel
	case cfg.Quiet:
		level = zerolog.ErrorLevel
	}
	ctx = zerolog.Ctx(ctx).Level(level).WithContext(ctx)

	return log.NewContext(ctx, o.Logger), nil
}
