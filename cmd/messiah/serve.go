// Copyright 2026 Blink Labs Software
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
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/blinklabs-io/messiah/internal/config"
	"github.com/blinklabs-io/messiah/internal/node"
	"github.com/blinklabs-io/messiah/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

// newLogger returns the JSON logger used by the node and makes it the default
func newLogger(debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(logger)
	return logger
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return errors.New("no config found in context")
	}
	// Usage is only useful for flag and argument errors
	cmd.SilenceUsage = true
	logger := newLogger(debugLogging)
	undo, err := maxprocs.Set(
		maxprocs.Logger(func(format string, v ...any) {
			logger.Info(fmt.Sprintf(format, v...), "component", programName)
		}),
	)
	if err != nil {
		return fmt.Errorf("set GOMAXPROCS: %w", err)
	}
	defer undo()
	logger.Info(
		"starting "+programName,
		"version", version.GetVersionString(),
		"component", programName,
	)
	return node.Run(cfg, logger)
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Short:   "Run the governance ledger node",
		Long:    "Run the ledger node, serving the REST API and, when metricsPort is set, the prometheus /metrics endpoint. The node stops on SIGINT or SIGTERM.",
		GroupID: groupNode,
		Args:    cobra.NoArgs,
		RunE:    runServe,
	}
}
