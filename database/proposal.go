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

package database

import (
	"fmt"

	"github.com/blinklabs-io/messiah/database/models"
)

// CreateProposal stores a new proposal and sets its assigned id
func (d *Database) CreateProposal(proposal *models.Proposal, txn *Txn) error {
	if err := d.metadata.CreateProposal(proposal, txn.Metadata()); err != nil {
		return fmt.Errorf("create proposal: %w", err)
	}
	return nil
}

// GetProposal returns a proposal by id, or nil if it doesn't exist
func (d *Database) GetProposal(id uint64, txn *Txn) (*models.Proposal, error) {
	ret, err := d.metadata.GetProposal(id, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("get proposal %d: %w", id, err)
	}
	return ret, nil
}

// SetProposalState moves a proposal to a new state
func (d *Database) SetProposalState(
	id uint64,
	state uint8,
	closedAt int64,
	txn *Txn,
) error {
	if err := d.metadata.SetProposalState(id, state, closedAt, txn.Metadata()); err != nil {
		return fmt.Errorf("set state of proposal %d: %w", id, err)
	}
	return nil
}

// GetProposals returns a window of proposals in ascending id order
func (d *Database) GetProposals(
	offset int,
	limit int,
	txn *Txn,
) ([]models.Proposal, error) {
	ret, err := d.metadata.GetProposals(offset, limit, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("get proposals: %w", err)
	}
	return ret, nil
}

// CountProposals returns the number of proposals per state
func (d *Database) CountProposals(txn *Txn) (map[uint8]uint64, error) {
	ret, err := d.metadata.CountProposals(txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("count proposals: %w", err)
	}
	return ret, nil
}

// CreateSubmission stores a new submission and sets its assigned id
func (d *Database) CreateSubmission(
	submission *models.Submission,
	txn *Txn,
) error {
	if err := d.metadata.CreateSubmission(submission, txn.Metadata()); err != nil {
		return fmt.Errorf(
			"create submission for proposal %d: %w",
			submission.ProposalID,
			err,
		)
	}
	return nil
}

// GetSubmission returns a submission by id, or nil if it doesn't exist
func (d *Database) GetSubmission(
	id uint64,
	txn *Txn,
) (*models.Submission, error) {
	ret, err := d.metadata.GetSubmission(id, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("get submission %d: %w", id, err)
	}
	return ret, nil
}

// GetSubmissionBySubmitter returns an account's submission for a proposal,
// or nil if there is none
func (d *Database) GetSubmissionBySubmitter(
	proposalId uint64,
	submitterId uint64,
	txn *Txn,
) (*models.Submission, error) {
	ret, err := d.metadata.GetSubmissionBySubmitter(
		proposalId,
		submitterId,
		txn.Metadata(),
	)
	if err != nil {
		return nil, fmt.Errorf(
			"get submission of account %d for proposal %d: %w",
			submitterId,
			proposalId,
			err,
		)
	}
	return ret, nil
}

// GetSubmissions returns a window of a proposal's submissions in ascending
// id order
func (d *Database) GetSubmissions(
	proposalId uint64,
	offset int,
	limit int,
	txn *Txn,
) ([]models.Submission, error) {
	ret, err := d.metadata.GetSubmissions(proposalId, offset, limit, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf(
			"get submissions for proposal %d: %w",
			proposalId,
			err,
		)
	}
	return ret, nil
}

// CountSubmissions returns the total number of submissions
func (d *Database) CountSubmissions(txn *Txn) (uint64, error) {
	ret, err := d.metadata.CountSubmissions(txn.Metadata())
	if err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return ret, nil
}

// GetLeadingSubmission returns the submission with the most For votes on a
// proposal, or nil if no submission has any
func (d *Database) GetLeadingSubmission(
	proposalId uint64,
	txn *Txn,
) (*models.Submission, error) {
	ret, err := d.metadata.GetLeadingSubmission(proposalId, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf(
			"get leading submission for proposal %d: %w",
			proposalId,
			err,
		)
	}
	return ret, nil
}

// CreateRewardPayout records the reward payout for a proposal
func (d *Database) CreateRewardPayout(
	payout *models.RewardPayout,
	txn *Txn,
) error {
	if err := d.metadata.CreateRewardPayout(payout, txn.Metadata()); err != nil {
		return fmt.Errorf(
			"create reward payout for proposal %d: %w",
			payout.ProposalID,
			err,
		)
	}
	return nil
}

// GetRewardPayout returns the payout made for a proposal, or nil
func (d *Database) GetRewardPayout(
	proposalId uint64,
	txn *Txn,
) (*models.RewardPayout, error) {
	ret, err := d.metadata.GetRewardPayout(proposalId, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf(
			"get reward payout for proposal %d: %w",
			proposalId,
			err,
		)
	}
	return ret, nil
}
