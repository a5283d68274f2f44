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
	"errors"
	"fmt"
	"time"

	"github.com/blinklabs-io/messiah/database"
	"github.com/blinklabs-io/messiah/database/models"
	"github.com/blinklabs-io/messiah/database/types"
	"github.com/ethereum/go-ethereum/common"
)

// FreezeGate runs the one-time freeze period. Blacklist votes are collected
// while the period is open, and resolving it fixes the blacklist and unlocks
// the token claim
type FreezeGate struct {
	db          *database.Database
	identity    *IdentityRegistry
	ballots     *BallotBox
	claimAmount uint64
	pageSize    int
	token       TokenIssuer
}

func (g *FreezeGate) state(txn *database.Txn) (*models.FreezeState, error) {
	state, err := g.db.GetFreezeState(txn)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, errors.New("freeze period not initialized")
	}
	return state, nil
}

func (g *FreezeGate) voteBlacklist(
	op *operation,
	caller common.Address,
	target common.Address,
	option Option,
) error {
	state, err := g.state(op.txn)
	if err != nil {
		return err
	}
	if state.Resolved || op.now.Unix() >= state.EndsAt {
		return ErrFreezeClosed
	}
	if !option.Castable() {
		return fmt.Errorf("%w: %s", ErrInvalidOption, option)
	}
	voterId, err := g.identity.identify(op, caller)
	if err != nil {
		return err
	}
	targetId, err := g.identity.identify(op, target)
	if err != nil {
		return err
	}
	_, err = g.ballots.vote(op, AccountTarget(targetId), voterId, caller, option)
	return err
}

// endFreezing resolves the freeze period. It returns the newly blacklisted
// accounts, or nil if the period was already resolved
func (g *FreezeGate) endFreezing(op *operation) ([]uint64, error) {
	state, err := g.state(op.txn)
	if err != nil {
		return nil, err
	}
	if state.Resolved {
		return nil, nil
	}
	if op.now.Unix() < state.EndsAt {
		return nil, fmt.Errorf(
			"%w: freeze period ends at %s",
			ErrTooEarly,
			time.Unix(state.EndsAt, 0).UTC().Format(time.RFC3339),
		)
	}
	candidates, err := g.db.GetBlacklistCandidates(op.txn)
	if err != nil {
		return nil, err
	}
	if err := g.db.AddBlacklistEntries(candidates, op.now.Unix(), op.txn); err != nil {
		return nil, err
	}
	state.Resolved = true
	state.ResolvedAt = op.now.Unix()
	if err := g.db.SetFreezeState(state, op.txn); err != nil {
		return nil, err
	}
	if candidates == nil {
		candidates = []uint64{}
	}
	if err := op.record(database.JournalEntry{
		Type:     JournalFreezeEnded,
		Accounts: candidates,
	}); err != nil {
		return nil, err
	}
	return candidates, nil
}

func (g *FreezeGate) claimToken(op *operation, caller common.Address) error {
	state, err := g.state(op.txn)
	if err != nil {
		return err
	}
	if !state.Resolved {
		return ErrNotResolved
	}
	callerId, err := g.identity.identify(op, caller)
	if err != nil {
		return err
	}
	blacklisted, err := g.db.IsBlacklisted(uint64(callerId), op.txn)
	if err != nil {
		return err
	}
	if blacklisted {
		return ErrBlacklisted
	}
	claim, err := g.db.GetTokenClaim(uint64(callerId), op.txn)
	if err != nil {
		return err
	}
	if claim != nil {
		return ErrAlreadyClaimed
	}
	if err := g.db.CreateTokenClaim(
		&models.TokenClaim{
			AccountID: uint64(callerId),
			Amount:    types.Uint64(g.claimAmount),
			ClaimedAt: op.now.Unix(),
		},
		op.txn,
	); err != nil {
		return err
	}
	if err := op.record(database.JournalEntry{
		Type:       JournalTokenClaimed,
		Caller:     caller.Bytes(),
		TargetKind: uint8(TargetKindAccount),
		TargetID:   uint64(callerId),
		Amount:     g.claimAmount,
	}); err != nil {
		return err
	}
	amount := g.claimAmount
	op.onCommit(func(ctx context.Context) error {
		if err := g.token.Mint(ctx, caller, amount); err != nil {
			return fmt.Errorf(
				"%w: mint %d to %s: %w",
				ErrTokenTransfer,
				amount,
				caller.Hex(),
				err,
			)
		}
		return nil
	})
	return nil
}

func (g *FreezeGate) status(txn *database.Txn, now time.Time) (FreezeStatus, error) {
	state, err := g.state(txn)
	if err != nil {
		return FreezeStatus{}, err
	}
	count, err := g.db.CountBlacklisted(txn)
	if err != nil {
		return FreezeStatus{}, err
	}
	return FreezeStatus{
		EndsAt:      state.EndsAt,
		Open:        !state.Resolved && now.Unix() < state.EndsAt,
		Resolved:    state.Resolved,
		ResolvedAt:  state.ResolvedAt,
		Blacklisted: count,
	}, nil
}

func (g *FreezeGate) blacklistPage(
	txn *database.Txn,
	page int,
) ([]BlacklistedAccount, error) {
	offset, ok, err := pageOffset(page, g.pageSize)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []BlacklistedAccount{}, nil
	}
	rows, err := g.db.GetBlacklist(offset, g.pageSize, txn)
	if err != nil {
		return nil, err
	}
	ret := make([]BlacklistedAccount, 0, len(rows))
	for _, row := range rows {
		id := AccountId(row.AccountID)
		addr, err := g.identity.address(txn, id)
		if err != nil {
			return nil, err
		}
		ret = append(
			ret,
			BlacklistedAccount{
				AccountId: id,
				Address:   addr,
				AddedAt:   row.AddedAt,
			},
		)
	}
	return ret, nil
}

// VoteBlacklist records the caller's vote on blacklisting the target address
func (ls *LedgerState) VoteBlacklist(
	ctx context.Context,
	caller common.Address,
	target common.Address,
	option Option,
) error {
	return ls.write(ctx, "vote_blacklist", func(op *operation) error {
		return ls.freeze.voteBlacklist(op, caller, target, option)
	})
}

// EndFreezing resolves the freeze period once it has elapsed. Calling it
// again after resolution does nothing
func (ls *LedgerState) EndFreezing(ctx context.Context) error {
	return ls.write(ctx, "end_freezing", func(op *operation) error {
		blacklisted, err := ls.freeze.endFreezing(op)
		if err != nil {
			return err
		}
		if blacklisted != nil {
			ls.config.Logger.Info(
				"freeze period resolved",
				"blacklisted", len(blacklisted),
				"component", "ledger",
			)
		}
		return nil
	})
}

// ClaimToken records the caller's one-time token claim and mints the claim
// amount to the caller
func (ls *LedgerState) ClaimToken(ctx context.Context, caller common.Address) error {
	return ls.write(ctx, "claim_token", func(op *operation) error {
		return ls.freeze.claimToken(op, caller)
	})
}

// FreezeStatus returns the current state of the freeze period
func (ls *LedgerState) FreezeStatus(ctx context.Context) (FreezeStatus, error) {
	var ret FreezeStatus
	err := ls.read(ctx, "freeze_status", func(txn *database.Txn) error {
		var err error
		ret, err = ls.freeze.status(txn, ls.config.Clock.Now())
		return err
	})
	return ret, err
}

// GetBlacklist returns a page of blacklisted accounts in ascending account id
// order. Pages start at 1, and an empty page means there are no more entries
func (ls *LedgerState) GetBlacklist(
	ctx context.Context,
	page int,
) ([]BlacklistedAccount, error) {
	var ret []BlacklistedAccount
	err := ls.read(ctx, "get_blacklist", func(txn *database.Txn) error {
		var err error
		ret, err = ls.freeze.blacklistPage(txn, page)
		return err
	})
	return ret, err
}

// IsBlacklisted returns whether an address has been blacklisted
func (ls *LedgerState) IsBlacklisted(
	ctx context.Context,
	address common.Address,
) (bool, error) {
	var ret bool
	err := ls.read(ctx, "is_blacklisted", func(txn *database.Txn) error {
		id, ok, err := ls.identity.lookup(txn, address)
		if err != nil || !ok {
			return err
		}
		ret, err = ls.db.IsBlacklisted(uint64(id), txn)
		return err
	})
	return ret, err
}

// HasClaimedToken returns whether an address has claimed its token
func (ls *LedgerState) HasClaimedToken(
	ctx context.Context,
	address common.Address,
) (bool, error) {
	var ret bool
	err := ls.read(ctx, "has_claimed_token", func(txn *database.Txn) error {
		id, ok, err := ls.identity.lookup(txn, address)
		if err != nil || !ok {
			return err
		}
		claim, err := ls.db.GetTokenClaim(uint64(id), txn)
		if err != nil {
			return err
		}
		ret = claim != nil
		return nil
	})
	return ret, err
}
