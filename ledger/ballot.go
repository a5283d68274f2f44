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

// BallotBox records one ballot per voter and target, and keeps a running
// tally for each target
type BallotBox struct {
	db *database.Database
}

// vote records a voter's option on a target. It returns false when the voter
// already holds that option, in which case nothing is written
func (b *BallotBox) vote(
	op *operation,
	target Target,
	voter AccountId,
	address common.Address,
	option Option,
) (bool, error) {
	if !target.valid() {
		return false, fmt.Errorf("%w: %s", ErrInvalidTarget, target)
	}
	if !option.Castable() {
		return false, fmt.Errorf("%w: %s", ErrInvalidOption, option)
	}
	prior, err := b.ballotOf(op.txn, target, voter)
	if err != nil {
		return false, err
	}
	if prior == option {
		return false, nil
	}
	tally, err := b.tally(op.txn, target)
	if err != nil {
		return false, err
	}
	tally = tally.apply(prior, option)
	if err := b.db.SetBallot(
		&models.Ballot{
			TargetKind: uint8(target.Kind),
			TargetID:   target.ID,
			VoterID:    uint64(voter),
			Option:     uint8(option),
			CastAt:     op.now.Unix(),
		},
		op.txn,
	); err != nil {
		return false, err
	}
	if err := b.db.SetTally(
		&models.Tally{
			TargetKind:   uint8(target.Kind),
			TargetID:     target.ID,
			TotalFor:     tally.For,
			TotalAgainst: tally.Against,
			TotalAbstain: tally.Abstain,
			TotalVoters:  tally.Voters,
		},
		op.txn,
	); err != nil {
		return false, err
	}
	if err := op.record(database.JournalEntry{
		Type:       JournalBallotCast,
		Caller:     address.Bytes(),
		TargetKind: uint8(target.Kind),
		TargetID:   target.ID,
		Option:     uint8(option),
	}); err != nil {
		return false, err
	}
	return true, nil
}

// tally returns the current tally of a target. Targets nobody has voted on
// have a zero tally
func (b *BallotBox) tally(txn *database.Txn, target Target) (Tally, error) {
	m, err := b.db.GetTally(uint8(target.Kind), target.ID, txn)
	if err != nil {
		return Tally{}, err
	}
	return tallyFromModel(m), nil
}

// ballotOf returns a voter's current option on a target
func (b *BallotBox) ballotOf(
	txn *database.Txn,
	target Target,
	voter AccountId,
) (Option, error) {
	ballot, err := b.db.GetBallot(
		uint8(target.Kind),
		target.ID,
		uint64(voter),
		txn,
	)
	if err != nil {
		return OptionUnvoted, err
	}
	if ballot == nil {
		return OptionUnvoted, nil
	}
	return Option(ballot.Option), nil
}

// TallyOf returns the current tally of a target
func (ls *LedgerState) TallyOf(ctx context.Context, target Target) (Tally, error) {
	if !target.valid() {
		return Tally{}, fmt.Errorf("%w: %s", ErrInvalidTarget, target)
	}
	var ret Tally
	err := ls.read(ctx, "tally_of", func(txn *database.Txn) error {
		var err error
		ret, err = ls.ballots.tally(txn, target)
		return err
	})
	return ret, err
}

// BallotOf returns the option an address currently holds on a target.
// Unregistered addresses have not voted
func (ls *LedgerState) BallotOf(
	ctx context.Context,
	target Target,
	voter common.Address,
) (Option, error) {
	if !target.valid() {
		return OptionUnvoted, fmt.Errorf("%w: %s", ErrInvalidTarget, target)
	}
	ret := OptionUnvoted
	err := ls.read(ctx, "ballot_of", func(txn *database.Txn) error {
		voterId, ok, err := ls.identity.lookup(txn, voter)
		if err != nil || !ok {
			return err
		}
		ret, err = ls.ballots.ballotOf(txn, target, voterId)
		return err
	})
	return ret, err
}

// recount rebuilds a target's tally from its individual ballots
func (b *BallotBox) recount(txn *database.Txn, target Target) (Tally, error) {
	counts, err := b.db.CountBallots(uint8(target.Kind), target.ID, txn)
	if err != nil {
		return Tally{}, err
	}
	ret := Tally{
		For:     counts[uint8(OptionFor)],
		Against: counts[uint8(OptionAgainst)],
		Abstain: counts[uint8(OptionAbstain)],
	}
	ret.Voters = ret.For + ret.Against + ret.Abstain
	return ret, nil
}

// AuditTally checks that the stored tally of a target matches its ballots
func (ls *LedgerState) AuditTally(ctx context.Context, target Target) error {
	if !target.valid() {
		return fmt.Errorf("%w: %s", ErrInvalidTarget, target)
	}
	return ls.read(ctx, "audit_tally", func(txn *database.Txn) error {
		stored, err := ls.ballots.tally(txn, target)
		if err != nil {
			return err
		}
		counted, err := ls.ballots.recount(txn, target)
		if err != nil {
			return err
		}
		if stored != counted {
			return fmt.Errorf(
				"tally mismatch for %s: stored %+v, counted %+v",
				target,
				stored,
				counted,
			)
		}
		return nil
	})
}
