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

package ledger

import (
	"context"
	"fmt"

	"github.com/blinklabs-io/messiah/database"
	"github.com/blinklabs-io/messiah/database/models"
	"github.com/ethereum/go-ethereum/common"
)

// SubmissionLedger records work submitted against proposals in development
type SubmissionLedger struct {
	db        *database.Database
	identity  *IdentityRegistry
	ballots   *BallotBox
	proposals *ProposalLedger
	pageSize  int
}

// get returns a submission or ErrSubmissionNotFound
func (s *SubmissionLedger) get(
	txn *database.Txn,
	id SubmissionId,
) (*models.Submission, error) {
	ret, err := s.db.GetSubmission(uint64(id), txn)
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, fmt.Errorf("%w: %d", ErrSubmissionNotFound, id)
	}
	return ret, nil
}

func (s *SubmissionLedger) submit(
	op *operation,
	caller common.Address,
	proposalId ProposalId,
	url string,
	comment string,
) (SubmissionId, error) {
	proposal, err := s.proposals.get(op.txn, proposalId)
	if err != nil {
		return 0, err
	}
	switch ProposalState(proposal.State) {
	case ProposalStateCanceled:
		return 0, ErrProposalCanceled
	case ProposalStateDeveloping:
	default:
		return 0, ErrProposalNotDeveloping
	}
	submitterId, err := s.identity.identify(op, caller)
	if err != nil {
		return 0, err
	}
	existing, err := s.db.GetSubmissionBySubmitter(
		uint64(proposalId),
		uint64(submitterId),
		op.txn,
	)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, ErrAlreadySubmitted
	}
	submission := &models.Submission{
		ProposalID:  uint64(proposalId),
		SubmitterID: uint64(submitterId),
		Url:         url,
		Comment:     comment,
		SubmittedAt: op.now.Unix(),
	}
	if err := s.db.CreateSubmission(submission, op.txn); err != nil {
		return 0, err
	}
	if err := op.record(database.JournalEntry{
		Type:       JournalSubmissionCreated,
		Caller:     caller.Bytes(),
		TargetKind: uint8(TargetKindSubmission),
		TargetID:   submission.ID,
		Parent:     uint64(proposalId),
	}); err != nil {
		return 0, err
	}
	return SubmissionId(submission.ID), nil
}

func (s *SubmissionLedger) vote(
	op *operation,
	caller common.Address,
	id SubmissionId,
	option Option,
) error {
	submission, err := s.get(op.txn, id)
	if err != nil {
		return err
	}
	proposal, err := s.proposals.get(op.txn, ProposalId(submission.ProposalID))
	if err != nil {
		return err
	}
	if ProposalState(proposal.State) == ProposalStateCanceled {
		return ErrProposalCanceled
	}
	if !option.Castable() {
		return fmt.Errorf("%w: %s", ErrInvalidOption, option)
	}
	voterId, err := s.identity.identify(op, caller)
	if err != nil {
		return err
	}
	_, err = s.ballots.vote(op, SubmissionTarget(id), voterId, caller, option)
	return err
}

// view assembles the read view of a submission
func (s *SubmissionLedger) view(
	txn *database.Txn,
	m *models.Submission,
) (Submission, error) {
	submitter, err := s.identity.address(txn, AccountId(m.SubmitterID))
	if err != nil {
		return Submission{}, err
	}
	tally, err := s.ballots.tally(txn, SubmissionTarget(SubmissionId(m.ID)))
	if err != nil {
		return Submission{}, err
	}
	return Submission{
		ID:          SubmissionId(m.ID),
		ProposalID:  ProposalId(m.ProposalID),
		Submitter:   submitter,
		Url:         m.Url,
		Comment:     m.Comment,
		SubmittedAt: m.SubmittedAt,
		Tally:       tally,
	}, nil
}

func (s *SubmissionLedger) page(
	txn *database.Txn,
	proposalId ProposalId,
	page int,
) ([]Submission, error) {
	offset, ok, err := pageOffset(page, s.pageSize)
	if err != nil {
		return nil, err
	}
	if _, err := s.proposals.get(txn, proposalId); err != nil {
		return nil, err
	}
	if !ok {
		return []Submission{}, nil
	}
	rows, err := s.db.GetSubmissions(uint64(proposalId), offset, s.pageSize, txn)
	if err != nil {
		return nil, err
	}
	ret := make([]Submission, 0, len(rows))
	for i := range rows {
		tmp, err := s.view(txn, &rows[i])
		if err != nil {
			return nil, err
		}
		ret = append(ret, tmp)
	}
	return ret, nil
}

// Submit records the caller's work against a proposal in development
func (ls *LedgerState) Submit(
	ctx context.Context,
	caller common.Address,
	proposalId ProposalId,
	url string,
	comment string,
) (SubmissionId, error) {
	var ret SubmissionId
	err := ls.write(ctx, "submit", func(op *operation) error {
		var err error
		ret, err = ls.submissions.submit(op, caller, proposalId, url, comment)
		return err
	})
	return ret, err
}

// VoteForSubmission records the caller's vote on a submission
func (ls *LedgerState) VoteForSubmission(
	ctx context.Context,
	caller common.Address,
	id SubmissionId,
	option Option,
) error {
	return ls.write(ctx, "vote_submission", func(op *operation) error {
		return ls.submissions.vote(op, caller, id, option)
	})
}

// GetSubmission returns a single submission
func (ls *LedgerState) GetSubmission(
	ctx context.Context,
	id SubmissionId,
) (Submission, error) {
	var ret Submission
	err := ls.read(ctx, "get_submission", func(txn *database.Txn) error {
		m, err := ls.submissions.get(txn, id)
		if err != nil {
			return err
		}
		ret, err = ls.submissions.view(txn, m)
		return err
	})
	return ret, err
}

// GetSubmissions returns a page of a proposal's submissions in ascending id
// order. Pages start at 1, and an empty page means there are no more
// submissions
func (ls *LedgerState) GetSubmissions(
	ctx context.Context,
	proposalId ProposalId,
	page int,
) ([]Submission, error) {
	var ret []Submission
	err := ls.read(ctx, "get_submissions", func(txn *database.Txn) error {
		var err error
		ret, err = ls.submissions.page(txn, proposalId, page)
		return err
	})
	return ret, err
}
