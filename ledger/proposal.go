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
	"time"

	"github.com/blinklabs-io/messiah/database"
	"github.com/blinklabs-io/messiah/database/models"
	"github.com/blinklabs-io/messiah/database/types"
	"github.com/ethereum/go-ethereum/common"
)

// ProposalLedger owns the proposal state machine
//
//	Voting     -> Developing  voting window elapsed, For > Against
//	Voting     -> Defeated    voting window elapsed, For <= Against
//	Voting     -> Canceled    proposer cancels
//	Developing -> Canceled    proposer cancels
//	Developing -> Completed   winning submission paid
type ProposalLedger struct {
	db           *database.Database
	identity     *IdentityRegistry
	ballots      *BallotBox
	votingPeriod time.Duration
	pageSize     int
}

// get returns a proposal or ErrProposalNotFound
func (p *ProposalLedger) get(
	txn *database.Txn,
	id ProposalId,
) (*models.Proposal, error) {
	ret, err := p.db.GetProposal(uint64(id), txn)
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, fmt.Errorf("%w: %d", ErrProposalNotFound, id)
	}
	return ret, nil
}

func (p *ProposalLedger) propose(
	op *operation,
	caller common.Address,
	title string,
	description string,
	reward uint64,
) (ProposalId, error) {
	proposerId, err := p.identity.identify(op, caller)
	if err != nil {
		return 0, err
	}
	proposal := &models.Proposal{
		ProposerID:   uint64(proposerId),
		Title:        title,
		Description:  description,
		Reward:       types.Uint64(reward),
		State:        models.ProposalStateVoting,
		ProposedAt:   op.now.Unix(),
		VotingEndsAt: op.now.Add(p.votingPeriod).Unix(),
	}
	if err := p.db.CreateProposal(proposal, op.txn); err != nil {
		return 0, err
	}
	if err := op.record(database.JournalEntry{
		Type:       JournalProposalCreated,
		Caller:     caller.Bytes(),
		TargetKind: uint8(TargetKindProposal),
		TargetID:   proposal.ID,
		Amount:     reward,
	}); err != nil {
		return 0, err
	}
	return ProposalId(proposal.ID), nil
}

func (p *ProposalLedger) vote(
	op *operation,
	caller common.Address,
	id ProposalId,
	option Option,
) error {
	proposal, err := p.get(op.txn, id)
	if err != nil {
		return err
	}
	switch ProposalState(proposal.State) {
	case ProposalStateCanceled:
		return ErrProposalCanceled
	case ProposalStateVoting:
	default:
		return ErrNotVoting
	}
	if !option.Castable() {
		return fmt.Errorf("%w: %s", ErrInvalidOption, option)
	}
	voterId, err := p.identity.identify(op, caller)
	if err != nil {
		return err
	}
	_, err = p.ballots.vote(op, ProposalTarget(id), voterId, caller, option)
	return err
}

// setState moves a proposal to a new state and journals the transition
func (p *ProposalLedger) setState(
	op *operation,
	id ProposalId,
	state ProposalState,
) error {
	var closedAt int64
	if state.Terminal() {
		closedAt = op.now.Unix()
	}
	if err := p.db.SetProposalState(uint64(id), uint8(state), closedAt, op.txn); err != nil {
		return err
	}
	return op.record(database.JournalEntry{
		Type:       JournalProposalState,
		TargetKind: uint8(TargetKindProposal),
		TargetID:   uint64(id),
		State:      uint8(state),
	})
}

// endVoting closes the voting window of a proposal and returns its resulting
// state
func (p *ProposalLedger) endVoting(
	op *operation,
	id ProposalId,
) (ProposalState, error) {
	proposal, err := p.get(op.txn, id)
	if err != nil {
		return 0, err
	}
	state := ProposalState(proposal.State)
	switch state {
	case ProposalStateCanceled:
		return state, ErrProposalCanceled
	case ProposalStateVoting:
	default:
		return state, nil
	}
	if op.now.Unix() < proposal.VotingEndsAt {
		return state, fmt.Errorf(
			"%w: voting ends at %s",
			ErrTooEarly,
			time.Unix(proposal.VotingEndsAt, 0).UTC().Format(time.RFC3339),
		)
	}
	tally, err := p.ballots.tally(op.txn, ProposalTarget(id))
	if err != nil {
		return state, err
	}
	next := ProposalStateDefeated
	if tally.For > tally.Against {
		next = ProposalStateDeveloping
	}
	if err := p.setState(op, id, next); err != nil {
		return state, err
	}
	return next, nil
}

func (p *ProposalLedger) cancel(
	op *operation,
	caller common.Address,
	id ProposalId,
) error {
	proposal, err := p.get(op.txn, id)
	if err != nil {
		return err
	}
	proposerId, ok, err := p.identity.lookup(op.txn, caller)
	if err != nil {
		return err
	}
	if !ok || uint64(proposerId) != proposal.ProposerID {
		return ErrUnauthorized
	}
	if ProposalState(proposal.State).Terminal() {
		return ErrAlreadyTerminal
	}
	return p.setState(op, id, ProposalStateCanceled)
}

// view assembles the read view of a proposal
func (p *ProposalLedger) view(
	txn *database.Txn,
	m *models.Proposal,
) (Proposal, error) {
	proposer, err := p.identity.address(txn, AccountId(m.ProposerID))
	if err != nil {
		return Proposal{}, err
	}
	tally, err := p.ballots.tally(txn, ProposalTarget(ProposalId(m.ID)))
	if err != nil {
		return Proposal{}, err
	}
	return Proposal{
		ID:           ProposalId(m.ID),
		Proposer:     proposer,
		Title:        m.Title,
		Description:  m.Description,
		Reward:       uint64(m.Reward),
		State:        ProposalState(m.State),
		ProposedAt:   m.ProposedAt,
		VotingEndsAt: m.VotingEndsAt,
		ClosedAt:     m.ClosedAt,
		Tally:        tally,
	}, nil
}

func (p *ProposalLedger) page(txn *database.Txn, page int) ([]Proposal, error) {
	offset, ok, err := pageOffset(page, p.pageSize)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []Proposal{}, nil
	}
	rows, err := p.db.GetProposals(offset, p.pageSize, txn)
	if err != nil {
		return nil, err
	}
	ret := make([]Proposal, 0, len(rows))
	for i := range rows {
		tmp, err := p.view(txn, &rows[i])
		if err != nil {
			return nil, err
		}
		ret = append(ret, tmp)
	}
	return ret, nil
}

// Propose creates a new proposal in the voting state
func (ls *LedgerState) Propose(
	ctx context.Context,
	caller common.Address,
	title string,
	description string,
	reward uint64,
) (ProposalId, error) {
	var ret ProposalId
	err := ls.write(ctx, "propose", func(op *operation) error {
		var err error
		ret, err = ls.proposals.propose(op, caller, title, description, reward)
		return err
	})
	return ret, err
}

// VoteForProposal records the caller's vote on a proposal in voting
func (ls *LedgerState) VoteForProposal(
	ctx context.Context,
	caller common.Address,
	id ProposalId,
	option Option,
) error {
	return ls.write(ctx, "vote_proposal", func(op *operation) error {
		return ls.proposals.vote(op, caller, id, option)
	})
}

// EndVoting closes the voting window of a proposal once it has elapsed and
// returns the proposal's resulting state
func (ls *LedgerState) EndVoting(
	ctx context.Context,
	id ProposalId,
) (ProposalState, error) {
	var ret ProposalState
	err := ls.write(ctx, "end_voting", func(op *operation) error {
		var err error
		ret, err = ls.proposals.endVoting(op, id)
		return err
	})
	return ret, err
}

// UpdateProposalState is an alias of EndVoting
func (ls *LedgerState) UpdateProposalState(
	ctx context.Context,
	id ProposalId,
) (ProposalState, error) {
	return ls.EndVoting(ctx, id)
}

// CancelProposal cancels a proposal on behalf of its proposer
func (ls *LedgerState) CancelProposal(
	ctx context.Context,
	caller common.Address,
	id ProposalId,
) error {
	return ls.write(ctx, "cancel_proposal", func(op *operation) error {
		return ls.proposals.cancel(op, caller, id)
	})
}

// GetProposal returns a single proposal
func (ls *LedgerState) GetProposal(
	ctx context.Context,
	id ProposalId,
) (Proposal, error) {
	var ret Proposal
	err := ls.read(ctx, "get_proposal", func(txn *database.Txn) error {
		m, err := ls.proposals.get(txn, id)
		if err != nil {
			return err
		}
		ret, err = ls.proposals.view(txn, m)
		return err
	})
	return ret, err
}

// GetProposals returns a page of proposals in ascending id order. Pages start
// at 1, and an empty page means there are no more proposals
func (ls *LedgerState) GetProposals(
	ctx context.Context,
	page int,
) ([]Proposal, error) {
	var ret []Proposal
	err := ls.read(ctx, "get_proposals", func(txn *database.Txn) error {
		var err error
		ret, err = ls.proposals.page(txn, page)
		return err
	})
	return ret, err
}
