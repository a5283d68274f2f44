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

package models

import "github.com/blinklabs-io/messiah/database/types"

// ProposalState constants represent the lifecycle of a proposal.
const (
	ProposalStateVoting     = 0
	ProposalStateDeveloping = 1
	ProposalStateCompleted  = 2
	ProposalStateDefeated   = 3
	ProposalStateCanceled   = 4
)

// Proposal is a request for work with a reward attached.
// Proposals move from voting to developing or defeated, and from developing
// to completed. Any non-terminal proposal can be canceled by its proposer.
type Proposal struct {
	ID           uint64       `gorm:"primarykey"`
	ProposerID   uint64       `gorm:"index;not null"`
	Title        string       `gorm:"not null"`
	Description  string       `gorm:"not null"`
	Reward       types.Uint64 `gorm:"not null"`
	State        uint8        `gorm:"index;not null"`
	ProposedAt   int64        `gorm:"not null"`
	VotingEndsAt int64        `gorm:"not null"`
	ClosedAt     int64
}

// TableName returns the table name
func (Proposal) TableName() string {
	return "proposal"
}

// Submission is a deliverable for a developing proposal. At most one exists
// per submitter and proposal.
type Submission struct {
	ID          uint64 `gorm:"primarykey"`
	ProposalID  uint64 `gorm:"uniqueIndex:idx_submission_unique,priority:1;index;not null"`
	SubmitterID uint64 `gorm:"uniqueIndex:idx_submission_unique,priority:2;not null"`
	Url         string `gorm:"not null"`
	Comment     string `gorm:"not null"`
	SubmittedAt int64  `gorm:"not null"`
}

// TableName returns the table name
func (Submission) TableName() string {
	return "submission"
}

// RewardPayout records the single reward paid for a proposal
type RewardPayout struct {
	SubmissionID uint64       `gorm:"primaryKey;autoIncrement:false"`
	ProposalID   uint64       `gorm:"uniqueIndex;not null"`
	RecipientID  uint64       `gorm:"index;not null"`
	Amount       types.Uint64 `gorm:"not null"`
	PaidAt       int64        `gorm:"not null"`
}

// TableName returns the table name
func (RewardPayout) TableName() string {
	return "reward_payout"
}
