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
	"github.com/blinklabs-io/messiah/database/types"
	"github.com/ethereum/go-ethereum/common"
)

// RewardDistributor pays a proposal's reward to its winning submission
type RewardDistributor struct {
	db          *database.Database
	proposals   *ProposalLedger
	submissions *SubmissionLedger
	token       TokenIssuer
}

// resolveWinner returns the submission with the most For votes, with ties
// going to the earliest submission. Once a proposal has been completed the
// paid submission stays the winner
func (r *RewardDistributor) resolveWinner(
	txn *database.Txn,
	proposal *models.Proposal,
) (SubmissionId, bool, error) {
	if ProposalState(proposal.State) == ProposalStateCompleted {
		payout, err := r.db.GetRewardPayout(proposal.ID, txn)
		if err != nil {
			return 0, false, err
		}
		if payout != nil {
			return SubmissionId(payout.SubmissionID), true, nil
		}
	}
	leading, err := r.db.GetLeadingSubmission(proposal.ID, txn)
	if err != nil {
		return 0, false, err
	}
	if leading == nil {
		return 0, false, nil
	}
	return SubmissionId(leading.ID), true, nil
}

func (r *RewardDistributor) claimReward(
	op *operation,
	caller common.Address,
	id SubmissionId,
) error {
	submission, err := r.submissions.get(op.txn, id)
	if err != nil {
		return err
	}
	proposal, err := r.proposals.get(op.txn, ProposalId(submission.ProposalID))
	if err != nil {
		return err
	}
	if ProposalState(proposal.State) == ProposalStateCanceled {
		return ErrProposalCanceled
	}
	winner, ok, err := r.resolveWinner(op.txn, proposal)
	if err != nil {
		return err
	}
	if !ok || winner != id {
		return ErrNotWinner
	}
	payout, err := r.db.GetRewardPayout(proposal.ID, op.txn)
	if err != nil {
		return err
	}
	if payout != nil {
		return ErrAlreadyPaid
	}
	recipient, err := r.submissions.identity.address(
		op.txn,
		AccountId(submission.SubmitterID),
	)
	if err != nil {
		return err
	}
	amount := uint64(proposal.Reward)
	if err := r.db.CreateRewardPayout(
		&models.RewardPayout{
			SubmissionID: submission.ID,
			ProposalID:   proposal.ID,
			RecipientID:  submission.SubmitterID,
			Amount:       types.Uint64(amount),
			PaidAt:       op.now.Unix(),
		},
		op.txn,
	); err != nil {
		return err
	}
	if err := op.record(database.JournalEntry{
		Type:       JournalRewardPaid,
		Caller:     caller.Bytes(),
		TargetKind: uint8(TargetKindSubmission),
		TargetID:   submission.ID,
		Amount:     amount,
		Parent:     proposal.ID,
	}); err != nil {
		return err
	}
	if err := r.proposals.setState(
		op,
		ProposalId(proposal.ID),
		ProposalStateCompleted,
	); err != nil {
		return err
	}
	op.onCommit(func(ctx context.Context) error {
		if err := r.token.Transfer(ctx, recipient, amount); err != nil {
			return fmt.Errorf(
				"%w: transfer %d to %s: %w",
				ErrTokenTransfer,
				amount,
				recipient.Hex(),
				err,
			)
		}
		return nil
	})
	return nil
}

// ResolveWinner returns the winning submission of a proposal, if any
// submission has received a For vote
func (ls *LedgerState) ResolveWinner(
	ctx context.Context,
	proposalId ProposalId,
) (SubmissionId, bool, error) {
	var ret SubmissionId
	var found bool
	err := ls.read(ctx, "resolve_winner", func(txn *database.Txn) error {
		proposal, err := ls.proposals.get(txn, proposalId)
		if err != nil {
			return err
		}
		ret, found, err = ls.rewards.resolveWinner(txn, proposal)
		return err
	})
	return ret, found, err
}

// ClaimReward pays the proposal reward to the submitter of the winning
// submission. Any caller may trigger the payout
func (ls *LedgerState) ClaimReward(
	ctx context.Context,
	caller common.Address,
	id SubmissionId,
) error {
	return ls.write(ctx, "claim_reward", func(op *operation) error {
		return ls.rewards.claimReward(op, caller, id)
	})
}
