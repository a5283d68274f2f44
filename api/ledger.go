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

package api

import (
	"context"

	"github.com/blinklabs-io/messiah/database"
	"github.com/blinklabs-io/messiah/ledger"
	"github.com/ethereum/go-ethereum/common"
)

// Ledger is the ledger surface served by the API. It is implemented by
// *ledger.LedgerState
type Ledger interface {
	AccountId(context.Context, common.Address) (ledger.AccountId, bool, error)
	IsBlacklisted(context.Context, common.Address) (bool, error)
	HasClaimedToken(context.Context, common.Address) (bool, error)
	TallyOf(context.Context, ledger.Target) (ledger.Tally, error)
	BallotOf(context.Context, ledger.Target, common.Address) (ledger.Option, error)

	VoteBlacklist(ctx context.Context, caller common.Address, target common.Address, option ledger.Option) error
	EndFreezing(context.Context) error
	ClaimToken(ctx context.Context, caller common.Address) error
	FreezeStatus(context.Context) (ledger.FreezeStatus, error)
	GetBlacklist(ctx context.Context, page int) ([]ledger.BlacklistedAccount, error)

	Propose(ctx context.Context, caller common.Address, title string, description string, reward uint64) (ledger.ProposalId, error)
	VoteForProposal(ctx context.Context, caller common.Address, id ledger.ProposalId, option ledger.Option) error
	EndVoting(context.Context, ledger.ProposalId) (ledger.ProposalState, error)
	CancelProposal(ctx context.Context, caller common.Address, id ledger.ProposalId) error
	GetProposal(context.Context, ledger.ProposalId) (ledger.Proposal, error)
	GetProposals(ctx context.Context, page int) ([]ledger.Proposal, error)

	Submit(ctx context.Context, caller common.Address, proposalId ledger.ProposalId, url string, comment string) (ledger.SubmissionId, error)
	VoteForSubmission(ctx context.Context, caller common.Address, id ledger.SubmissionId, option ledger.Option) error
	GetSubmission(context.Context, ledger.SubmissionId) (ledger.Submission, error)
	GetSubmissions(ctx context.Context, proposalId ledger.ProposalId, page int) ([]ledger.Submission, error)

	ResolveWinner(context.Context, ledger.ProposalId) (ledger.SubmissionId, bool, error)
	ClaimReward(ctx context.Context, caller common.Address, id ledger.SubmissionId) error

	Journal(ctx context.Context, from uint64, limit int) ([]database.JournalEntry, error)
}

var _ Ledger = (*ledger.LedgerState)(nil)
