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
	"fmt"
	"os"

	"github.com/blinklabs-io/messiah/internal/config"
	"github.com/spf13/cobra"
)

const programName = "messiah"

// Command groups shown in help output
const (
	groupNode        = "node"
	groupTransitions = "transitions"
	groupQueries     = "queries"
)

var (
	debugLogging bool
	configFile   string
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   programName,
		Short: "Governance ledger for proposals, submissions and rewards",
		Long: `messiah keeps a governance ledger: one-account-one-vote ballots, a
blacklist freeze period, proposals with a voting window, and bounty
submissions whose winner claims the proposal reward.

Without a subcommand it runs the node, same as "messiah serve". The
transition and query commands talk to a running node over its REST API.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE:          runServe,
		// Every command except version needs the loaded config
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cmd.SetContext(config.WithContext(cmd.Context(), cfg))
			return nil
		},
	}
	rootCmd.PersistentFlags().
		BoolVarP(&debugLogging, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "path to config file (default ~/.messiah/messiah.yaml, then /etc/messiah/messiah.yaml)")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupNode, Title: "Node:"},
		&cobra.Group{ID: groupTransitions, Title: "Time-gated transitions:"},
		&cobra.Group{ID: groupQueries, Title: "Ledger queries:"},
	)
	rootCmd.AddCommand(
		serveCommand(),
		endFreezingCommand(),
		endVotingCommand(),
		proposalsCommand(),
		submissionsCommand(),
		blacklistCommand(),
		journalCommand(),
		versionCommand(),
	)
	return rootCmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", programName, err)
		os.Exit(1)
	}
}
