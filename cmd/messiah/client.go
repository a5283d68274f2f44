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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/blinklabs-io/messiah/api"
	"github.com/blinklabs-io/messiah/internal/config"
	"github.com/blinklabs-io/messiah/ledger"
	"github.com/spf13/cobra"
)

// clientCall is the API request made by a client command
type clientCall func(ctx context.Context, c *api.Client, args []string) (any, error)

// apiURL returns the given --api value, defaulting to the configured API port on localhost
func apiURL(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	port := uint(config.DefaultApiPort)
	if cfg != nil && cfg.ApiPort > 0 {
		port = cfg.ApiPort
	}
	return "http://localhost:" + strconv.FormatUint(uint64(port), 10)
}

// clientCommand turns cmd into a command that makes one REST API call to a
// running node and prints the response as indented JSON
func clientCommand(
	groupId string,
	cmd *cobra.Command,
	call clientCall,
) *cobra.Command {
	var apiFlag string
	cmd.GroupID = groupId
	cmd.Flags().StringVar(
		&apiFlag,
		"api",
		"",
		"REST API URL of a running node (default http://localhost:<apiPort>)",
	)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		ctx, stop := signal.NotifyContext(
			cmd.Context(),
			syscall.SIGINT,
			syscall.SIGTERM,
		)
		defer stop()
		client := api.NewClient(
			apiURL(apiFlag, config.FromContext(cmd.Context())),
		)
		ret, err := call(ctx, client, args)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), ret)
	}
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseProposalId(arg string) (ledger.ProposalId, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid proposal id: %q", arg)
	}
	return ledger.ProposalId(id), nil
}

// proposalIdArg accepts exactly one positive proposal id
func proposalIdArg(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected a proposal id, got %d args", len(args))
	}
	_, err := parseProposalId(args[0])
	return err
}

func pageFlag(cmd *cobra.Command, page *int) {
	cmd.Flags().IntVar(page, "page", 1, "page number, starting at 1; an empty list means no more pages")
}

func endFreezingCommand() *cobra.Command {
	return clientCommand(
		groupTransitions,
		&cobra.Command{
			Use:   "end-freezing",
			Short: "Close the blacklist freeze period once it has elapsed",
			Long: `Resolve the freeze period. Every account with more For than Against
blacklist votes is blacklisted. Fails with a precondition error while the
freeze period is still running; repeating it after resolution is a no-op.`,
			Args: cobra.NoArgs,
		},
		func(ctx context.Context, c *api.Client, _ []string) (any, error) {
			return c.EndFreezing(ctx)
		},
	)
}

func endVotingCommand() *cobra.Command {
	return clientCommand(
		groupTransitions,
		&cobra.Command{
			Use:   "end-voting <proposal-id>",
			Short: "Close the voting window of a proposal once it has elapsed",
			Long: `Move a proposal out of voting. It enters development when For votes
outnumber Against votes, and is defeated otherwise.`,
			Example: "  messiah end-voting 3 --api http://ledger.internal:8080",
			Args:    proposalIdArg,
		},
		func(ctx context.Context, c *api.Client, args []string) (any, error) {
			id, err := parseProposalId(args[0])
			if err != nil {
				return nil, err
			}
			return c.EndVoting(ctx, id)
		},
	)
}

func proposalsCommand() *cobra.Command {
	var page int
	cmd := clientCommand(
		groupQueries,
		&cobra.Command{
			Use:   "proposals",
			Short: "List proposals in id order",
			Args:  cobra.NoArgs,
		},
		func(ctx context.Context, c *api.Client, _ []string) (any, error) {
			return c.Proposals(ctx, page)
		},
	)
	pageFlag(cmd, &page)
	return cmd
}

func submissionsCommand() *cobra.Command {
	var page int
	cmd := clientCommand(
		groupQueries,
		&cobra.Command{
			Use:     "submissions <proposal-id>",
			Short:   "List the submissions of a proposal in id order",
			Example: "  messiah submissions 3 --page 2",
			Args:    proposalIdArg,
		},
		func(ctx context.Context, c *api.Client, args []string) (any, error) {
			id, err := parseProposalId(args[0])
			if err != nil {
				return nil, err
			}
			return c.Submissions(ctx, id, page)
		},
	)
	pageFlag(cmd, &page)
	return cmd
}

func blacklistCommand() *cobra.Command {
	var page int
	cmd := clientCommand(
		groupQueries,
		&cobra.Command{
			Use:   "blacklist",
			Short: "List blacklisted accounts in account id order",
			Long: `List the accounts blacklisted when the freeze period was resolved.
The list is empty until end-freezing has succeeded.`,
			Args: cobra.NoArgs,
		},
		func(ctx context.Context, c *api.Client, _ []string) (any, error) {
			return c.Blacklist(ctx, page)
		},
	)
	pageFlag(cmd, &page)
	return cmd
}

func journalCommand() *cobra.Command {
	var from uint64
	var limit int
	cmd := clientCommand(
		groupQueries,
		&cobra.Command{
			Use:     "journal",
			Short:   "Show the operation journal",
			Example: "  messiah journal --from 120 --limit 20",
			Args:    cobra.NoArgs,
		},
		func(ctx context.Context, c *api.Client, _ []string) (any, error) {
			return c.Journal(ctx, from, limit)
		},
	)
	cmd.Flags().Uint64Var(&from, "from", 1, "first sequence number")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of entries")
	return cmd
}
