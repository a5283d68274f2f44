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

package metadata

import (
	"log/slog"

	"github.com/blinklabs-io/messiah/database/models"
	"github.com/blinklabs-io/messiah/database/plugin/metadata/sqlite"
	"github.com/blinklabs-io/messiah/database/types"
)

type MetadataStore interface {
	// Database
	Close() error
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Journal
	GetJournalCursor(types.Txn) (uint64, error)
	SetJournalCursor(uint64, types.Txn) error

	// Identity
	GetAccountByAddress([]byte, types.Txn) (*models.Account, error)
	GetAccount(uint64, types.Txn) (*models.Account, error)
	CreateAccount(*models.Account, types.Txn) error
	CountAccounts(types.Txn) (uint64, error)

	// Ballots
	GetBallot(
		uint8, // targetKind
		uint64, // targetId
		uint64, // voterId
		types.Txn,
	) (*models.Ballot, error)
	SetBallot(*models.Ballot, types.Txn) error
	GetTally(
		uint8, // targetKind
		uint64, // targetId
		types.Txn,
	) (*models.Tally, error)
	SetTally(*models.Tally, types.Txn) error
	CountBallots(
		uint8, // targetKind
		uint64, // targetId
		types.Txn,
	) (map[uint8]uint64, error)

	// Proposals
	CreateProposal(*models.Proposal, types.Txn) error
	GetProposal(uint64, types.Txn) (*models.Proposal, error)
	SetProposalState(
		uint64, // id
		uint8, // state
		int64, // closedAt
		types.Txn,
	) error
	GetProposals(
		int, // offset
		int, // limit
		types.Txn,
	) ([]models.Proposal, error)
	CountProposals(types.Txn) (map[uint8]uint64, error)

	// Submissions and rewards
	CreateSubmission(*models.Submission, types.Txn) error
	GetSubmission(uint64, types.Txn) (*models.Submission, error)
	GetSubmissionBySubmitter(
		uint64, // proposalId
		uint64, // submitterId
		types.Txn,
	) (*models.Submission, error)
	GetSubmissions(
		uint64, // proposalId
		int, // offset
		int, // limit
		types.Txn,
	) ([]models.Submission, error)
	CountSubmissions(types.Txn) (uint64, error)
	GetLeadingSubmission(uint64, types.Txn) (*models.Submission, error)
	CreateRewardPayout(*models.RewardPayout, types.Txn) error
	GetRewardPayout(uint64, types.Txn) (*models.RewardPayout, error)

	// Freeze period
	GetFreezeState(types.Txn) (*models.FreezeState, error)
	SetFreezeState(*models.FreezeState, types.Txn) error
	GetBlacklistCandidates(types.Txn) ([]uint64, error)
	AddBlacklistEntries([]uint64, int64, types.Txn) error
	IsBlacklisted(uint64, types.Txn) (bool, error)
	CountBlacklisted(types.Txn) (uint64, error)
	GetBlacklist(
		int, // offset
		int, // limit
		types.Txn,
	) ([]models.BlacklistEntry, error)
	GetTokenClaim(uint64, types.Txn) (*models.TokenClaim, error)
	CreateTokenClaim(*models.TokenClaim, types.Txn) error
}

// New returns the metadata store for the given data dir. An empty data dir
// creates an in-memory store
func New(
	dataDir string,
	logger *slog.Logger,
) (MetadataStore, error) {
	store, err := sqlite.New(
		sqlite.WithDataDir(dataDir),
		sqlite.WithLogger(logger),
	)
	if store == nil {
		return nil, err
	}
	return store, err
}
