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

package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blinklabs-io/messiah/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreezeTieDoesNotBlacklist(t *testing.T) {
	ctx := context.Background()
	ls := newTestLedger(t)
	target := addr(99)

	require.NoError(t, ls.VoteBlacklist(ctx, addr(1), target, ledger.OptionFor))
	require.NoError(t, ls.VoteBlacklist(ctx, addr(2), target, ledger.OptionAgainst))
	require.NoError(t, ls.VoteBlacklist(ctx, addr(3), target, ledger.OptionAbstain))
	targetId, found, err := ls.AccountId(ctx, target)
	require.NoError(t, err)
	require.True(t, found)
	tally, err := ls.TallyOf(ctx, ledger.AccountTarget(targetId))
	require.NoError(t, err)
	assert.Equal(t, ledger.Tally{For: 1, Against: 1, Abstain: 1, Voters: 3}, tally)

	require.ErrorIs(t, ls.EndFreezing(ctx), ledger.ErrTooEarly)
	status, err := ls.FreezeStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.Open)
	assert.False(t, status.Resolved)

	ls.clock.Advance(testFreezeDuration)
	require.NoError(t, ls.EndFreezing(ctx))
	blacklisted, err := ls.IsBlacklisted(ctx, target)
	require.NoError(t, err)
	assert.False(t, blacklisted)
	status, err = ls.FreezeStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.Open)
	assert.True(t, status.Resolved)
	assert.Equal(t, uint64(0), status.Blacklisted)
}

func TestFreezeMajorityBlacklists(t *testing.T) {
	ctx := context.Background()
	ls := newTestLedger(t)
	bad := addr(66)
	good := addr(77)

	require.NoError(t, ls.VoteBlacklist(ctx, addr(1), bad, ledger.OptionFor))
	require.NoError(t, ls.VoteBlacklist(ctx, addr(2), bad, ledger.OptionFor))
	require.NoError(t, ls.VoteBlacklist(ctx, addr(3), bad, ledger.OptionAgainst))
	require.NoError(t, ls.VoteBlacklist(ctx, addr(1), good, ledger.OptionFor))
	// A changed vote takes the earlier one back
	require.NoError(t, ls.VoteBlacklist(ctx, addr(1), good, ledger.OptionAgainst))

	ls.clock.Advance(testFreezeDuration + time.Minute)
	require.NoError(t, ls.EndFreezing(ctx))

	blacklisted, err := ls.IsBlacklisted(ctx, bad)
	require.NoError(t, err)
	assert.True(t, blacklisted)
	blacklisted, err = ls.IsBlacklisted(ctx, good)
	require.NoError(t, err)
	assert.False(t, blacklisted)
	// Unknown addresses are never blacklisted
	blacklisted, err = ls.IsBlacklisted(ctx, addr(12345))
	require.NoError(t, err)
	assert.False(t, blacklisted)

	entries, err := ls.Journal(ctx, 0, 0)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, ledger.JournalFreezeEnded, last.Type)
	badId, _, err := ls.AccountId(ctx, bad)
	require.NoError(t, err)
	assert.Equal(t, []uint64{uint64(badId)}, last.Accounts)
}

func TestGetBlacklistPages(t *testing.T) {
	ctx := context.Background()
	ls := newTestLedger(t)
	spared := addr(200)
	var targets []common.Address
	// Register in reverse so account ids differ from vote order
	for i := int64(5); i > 0; i-- {
		_, err := ls.Identify(ctx, addr(100+i))
		require.NoError(t, err)
	}
	for i := int64(1); i <= 5; i++ {
		target := addr(100 + i)
		targets = append(targets, target)
		require.NoError(t, ls.VoteBlacklist(ctx, addr(1), target, ledger.OptionFor))
	}
	require.NoError(t, ls.VoteBlacklist(ctx, addr(1), spared, ledger.OptionAgainst))

	// Nothing is listed before the freeze period resolves
	page, err := ls.GetBlacklist(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, page)

	ls.clock.Advance(testFreezeDuration)
	require.NoError(t, ls.EndFreezing(ctx))

	var listed []ledger.BlacklistedAccount
	pages := 0
	for p := 1; ; p++ {
		page, err := ls.GetBlacklist(ctx, p)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		assert.LessOrEqual(t, len(page), testPageSize)
		listed = append(listed, page...)
		pages++
	}
	assert.Equal(t, 3, pages)
	require.Len(t, listed, len(targets))
	seen := make(map[common.Address]bool)
	for i, entry := range listed {
		assert.False(t, seen[entry.Address], "duplicate %s", entry.Address.Hex())
		seen[entry.Address] = true
		id, found, err := ls.AccountId(ctx, entry.Address)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, id, entry.AccountId)
		assert.Equal(t, testStart.Add(testFreezeDuration).Unix(), entry.AddedAt)
		if i > 0 {
			assert.Less(t, listed[i-1].AccountId, entry.AccountId)
		}
	}
	for _, target := range targets {
		assert.True(t, seen[target], "missing %s", target.Hex())
	}
	assert.False(t, seen[spared])

	_, err = ls.GetBlacklist(ctx, 0)
	require.ErrorIs(t, err, ledger.ErrInvalidPage)
	page, err = ls.GetBlacklist(ctx, int(^uint(0)>>1))
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestFreezeClosedRejectsVotes(t *testing.T) {
	ctx := context.Background()
	ls := newTestLedger(t)

	// Elapsed but not yet resolved
	ls.clock.Advance(testFreezeDuration)
	err := ls.VoteBlacklist(ctx, addr(1), addr(2), ledger.OptionFor)
	require.ErrorIs(t, err, ledger.ErrFreezeClosed)

	require.NoError(t, ls.EndFreezing(ctx))
	err = ls.VoteBlacklist(ctx, addr(1), addr(2), ledger.OptionFor)
	require.ErrorIs(t, err, ledger.ErrFreezeClosed)
}

func TestVoteBlacklistInvalidOption(t *testing.T) {
	ctx := context.Background()
	ls := newTestLedger(t)
	before := journalLen(t, ls)
	err := ls.VoteBlacklist(ctx, addr(1), addr(2), ledger.OptionUnvoted)
	require.ErrorIs(t, err, ledger.ErrInvalidOption)
	assert.Equal(t, before, journalLen(t, ls))
}

func TestEndFreezingIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ls := newTestLedger(t)
	require.NoError(t, ls.VoteBlacklist(ctx, addr(1), addr(2), ledger.OptionFor))
	ls.clock.Advance(testFreezeDuration)
	require.NoError(t, ls.EndFreezing(ctx))
	first, err := ls.FreezeStatus(ctx)
	require.NoError(t, err)
	before := journalLen(t, ls)

	ls.clock.Advance(time.Hour)
	require.NoError(t, ls.EndFreezing(ctx))
	second, err := ls.FreezeStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, before, journalLen(t, ls))
}

func TestClaimToken(t *testing.T) {
	ctx := context.Background()
	ls := newTestLedger(t)
	bad := addr(66)
	holder := addr(5)

	require.NoError(t, ls.VoteBlacklist(ctx, addr(1), bad, ledger.OptionFor))
	require.ErrorIs(t, ls.ClaimToken(ctx, holder), ledger.ErrNotResolved)

	ls.clock.Advance(testFreezeDuration)
	require.NoError(t, ls.EndFreezing(ctx))

	require.ErrorIs(t, ls.ClaimToken(ctx, bad), ledger.ErrBlacklisted)
	assert.Equal(t, uint64(0), ls.token.BalanceOf(bad))
	claimed, err := ls.HasClaimedToken(ctx, bad)
	require.NoError(t, err)
	assert.False(t, claimed)

	require.NoError(t, ls.ClaimToken(ctx, holder))
	assert.Equal(t, uint64(testClaimAmount), ls.token.BalanceOf(holder))
	claimed, err = ls.HasClaimedToken(ctx, holder)
	require.NoError(t, err)
	assert.True(t, claimed)

	// Exactly once, however many times it is called
	for range 3 {
		require.ErrorIs(t, ls.ClaimToken(ctx, holder), ledger.ErrAlreadyClaimed)
	}
	assert.Equal(t, uint64(testClaimAmount), ls.token.BalanceOf(holder))
	assert.Equal(t, uint64(testClaimAmount), ls.token.Minted())
}

func TestClaimTokenMintFailureKeepsFlag(t *testing.T) {
	ctx := context.Background()
	ls := newTestLedger(t)
	ls.clock.Advance(testFreezeDuration)
	require.NoError(t, ls.EndFreezing(ctx))

	errOffline := errors.New("issuer offline")
	ls.token.FailNext(errOffline)
	err := ls.ClaimToken(ctx, addr(5))
	require.ErrorIs(t, err, ledger.ErrTokenTransfer)
	require.ErrorIs(t, err, errOffline)
	assert.Equal(t, ledger.ErrorClassTransfer, ledger.Classify(err))

	// The claim stays recorded and is not retried
	claimed, err := ls.HasClaimedToken(ctx, addr(5))
	require.NoError(t, err)
	assert.True(t, claimed)
	require.ErrorIs(t, ls.ClaimToken(ctx, addr(5)), ledger.ErrAlreadyClaimed)
	assert.Equal(t, uint64(0), ls.token.BalanceOf(addr(5)))
}
