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
	"github.com/blinklabs-io/messiah/database"
	"github.com/blinklabs-io/messiah/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
	Class      string `json:"class,omitempty"`
	// Idempotent is set when the requested end state already holds
	Idempotent bool `json:"idempotent,omitempty"`
}

type VoteRequest struct {
	Option ledger.Option `json:"option"`
}

type BlacklistVoteRequest struct {
	Target common.Address `json:"target"`
	Option ledger.Option  `json:"option"`
}

type ProposeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Reward      uint64 `json:"reward"`
}

type ProposeResponse struct {
	ID ledger.ProposalId `json:"id"`
}

type SubmitRequest struct {
	Url     string `json:"url"`
	Comment string `json:"comment"`
}

type SubmitResponse struct {
	ID ledger.SubmissionId `json:"id"`
}

type EndVotingResponse struct {
	ID    ledger.ProposalId    `json:"id"`
	State ledger.ProposalState `json:"state"`
}

type WinnerResponse struct {
	ProposalID ledger.ProposalId    `json:"proposal_id"`
	Winner     *ledger.SubmissionId `json:"winner"`
}

type BallotResponse struct {
	Target ledger.Target  `json:"target"`
	Voter  common.Address `json:"voter"`
	Option ledger.Option  `json:"option"`
}

type AccountResponse struct {
	Address      common.Address    `json:"address"`
	ID           *ledger.AccountId `json:"id"`
	Blacklisted  bool              `json:"blacklisted"`
	ClaimedToken bool              `json:"claimed_token"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type JournalEntryResponse struct {
	Seq       uint64         `json:"seq"`
	Type      string         `json:"type"`
	Timestamp int64          `json:"timestamp"`
	Caller    hexutil.Bytes  `json:"caller,omitempty"`
	Target    *ledger.Target `json:"target,omitempty"`
	Parent    uint64         `json:"parent,omitempty"`
	Option    string         `json:"option,omitempty"`
	State     string         `json:"state,omitempty"`
	Amount    uint64         `json:"amount,omitempty"`
	Accounts  []uint64       `json:"accounts,omitempty"`
}

func journalEntryResponse(entry database.JournalEntry) JournalEntryResponse {
	ret := JournalEntryResponse{
		Seq:       entry.Seq,
		Type:      entry.Type,
		Timestamp: entry.Timestamp,
		Caller:    entry.Caller,
		Parent:    entry.Parent,
		Amount:    entry.Amount,
		Accounts:  entry.Accounts,
	}
	if entry.TargetKind != 0 {
		ret.Target = &ledger.Target{
			Kind: ledger.TargetKind(entry.TargetKind),
			ID:   entry.TargetID,
		}
	}
	switch entry.Type {
	case ledger.JournalBallotCast:
		ret.Option = ledger.Option(entry.Option).String()
	case ledger.JournalProposalState:
		ret.State = ledger.ProposalState(entry.State).String()
	}
	return ret
}
