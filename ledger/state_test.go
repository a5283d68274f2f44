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
	"cmp"
	"context"
	"math/big"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/blinklabs-io/messiah/database"
	"github.com/blinklabs-io/messiah/event"
	"github.com/blinklabs-io/messiah/ledger"
	"github.com/blinklabs-io/messiah/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testFreezeDuration = time.Hour
	testVotingPeriod   = 2 * time.Hour
	testPageSize       = 2
	testClaimAmount    = 100
	testTreasury       = 1_000_000
)

var testStart = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

type testLedger struct {
	*ledger.LedgerState
	clock *ledger.ManualClock
	token *token.Memory
}

func newTestLedger(
	t *testing.T,
	opts ...func(*ledger.LedgerStateConfig),
) *testLedger {
	t.Helper()
	clock := ledger.NewManualClock(testStart)
	tok := token.NewMemory(testTreasury)
	cfg := ledger.LedgerStateConfig{
		Token:          tok,
		Clock:          clock,
		FreezeDuration: testFreezeDuration,
		VotingPeriod:   testVotingPeriod,
		PageSize:       testPageSize,
		ClaimAmount:    testClaimAmount,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	ls, err := ledger.NewLedgerState(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, ls.Close())
	})
	return &testLedger{
		LedgerState: ls,
		clock:       clock,
		token:       tok,
	}
}

func addr(n int64) common.Address {
	return common.BigToAddress(big.NewInt(n))
}

func journalLen(t *testing.T, ls *testLedger) int {
	t.Helper()
	entries, err := ls.Journal(context.Background(), 0, 0)
	require.NoError(t, err)
	return len(entries)
}

func TestNewLedgerStateRequiresToken(t *testing.T) {
	_, err := ledger.NewLedgerState(ledger.LedgerStateConfig{})
	require.Error(t, err)
}

func TestIdentify(t *testing.T) {
	ctx := context.Background()
	ls := newTestLedger(t)

	_, found, err := ls.AccountId(ctx, addr(1))
	require.NoError(t, err)
	assert.False(t, found)

	id1, err := ls.Identify(ctx, addr(1))
	require.NoError(t, err)
	assert.Equal(t, ledger.AccountId(1), id1)
	id2, err := ls.Identify(ctx, addr(2))
	require.NoError(t, err)
	assert.Equal(t, ledger.AccountId(2), id2)
	again, err := ls.Identify(ctx, addr(1))
	require.NoError(t, err)
	assert.Equal(t, id1, again)

	id, found, err := ls.AccountId(ctx, addr(2))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, id2, id)

	// Looking up an address never registers it
	_, found, err = ls.AccountId(ctx, addr(3))
	require.NoError(t, err)
	assert.False(t, found)
	_, found, err = ls.AccountId(ctx, addr(3))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestJournalRecordsCommittedOperations(t *testing.T) {
	ctx := context.Background()
	ls := newTestLedger(t)

	entries, err := ls.Journal(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ledger.JournalFreezeStarted, entries[0].Type)
	assert.Equal(t, uint64(testStart.Add(testFreezeDuration).Unix()), entries[0].Amount)

	_, err = ls.Propose(ctx, addr(1), "docs", "write the docs", 50)
	require.NoError(t, err)
	entries, err = ls.Journal(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ledger.JournalAccountRegistered, entries[0].Type)
	assert.Equal(t, uint64(2), entries[0].Seq)
	assert.Equal(t, ledger.JournalProposalCreated, entries[1].Type)
	assert.Equal(t, uint64(1), entries[1].TargetID)
	assert.Equal(t, uint64(50), entries[1].Amount)
	assert.Equal(t, addr(1).Bytes(), entries[1].Caller)
	assert.Equal(t, testStart.Unix(), entries[1].Timestamp)

	entries, err = ls.Journal(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(1), entries[0].Seq)
}

func TestFailedOperationLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	ls := newTestLedger(t)
	before := journalLen(t, ls)

	// The caller would be registered as part of the claim, but the claim fails
	err := ls.ClaimToken(ctx, addr(7))
	require.ErrorIs(t, err, ledger.ErrNotResolved)
	_, found, err := ls.AccountId(ctx, addr(7))
	require.NoError(t, err)
	assert.False(t, found)

	_, err = ls.Submit(ctx, addr(7), 42, "https://example.com", "")
	require.ErrorIs(t, err, ledger.ErrProposalNotFound)
	_, found, err = ls.AccountId(ctx, addr(7))
	require.NoError(t, err)
	assert.False(t, found)

	assert.Equal(t, before, journalLen(t, ls))
	// Account ids stay dense after failed operations
	id, err := ls.Identify(ctx, addr(8))
	require.NoError(t, err)
	assert.Equal(t, ledger.AccountId(1), id)
}

func TestJournalEventsPublishedAfterCommit(t *testing.T) {
	ctx := context.Background()
	bus := event.NewEventBus(nil, nil)
	t.Cleanup(bus.Stop)
	_, evtCh := bus.Subscribe(ledger.JournalEventType)
	ls := newTestLedger(t, func(cfg *ledger.LedgerStateConfig) {
		cfg.EventBus = bus
	})

	// Rejected operations publish nothing
	require.ErrorIs(t, ls.EndFreezing(ctx), ledger.ErrTooEarly)
	require.NoError(t, ls.VoteBlacklist(ctx, addr(1), addr(2), ledger.OptionFor))

	var received []database.JournalEntry
	timeout := time.After(5 * time.Second)
	for len(received) < 4 {
		select {
		case evt := <-evtCh:
			entry, ok := evt.Data.(database.JournalEntry)
			require.True(t, ok)
			received = append(received, entry)
		case <-timeout:
			require.FailNow(t, "timed out waiting for journal events")
		}
	}
	// Async delivery doesn't preserve order, the sequence numbers do
	slices.SortFunc(received, func(a, b database.JournalEntry) int {
		return cmp.Compare(a.Seq, b.Seq)
	})
	entryTypes := make([]string, 0, len(received))
	for i, entry := range received {
		assert.Equal(t, uint64(i+1), entry.Seq)
		entryTypes = append(entryTypes, entry.Type)
	}
	assert.Equal(
		t,
		[]string{
			ledger.JournalFreezeStarted,
			ledger.JournalAccountRegistered,
			ledger.JournalAccountRegistered,
			ledger.JournalBallotCast,
		},
		entryTypes,
	)
	select {
	case evt := <-evtCh:
		assert.Failf(t, "unexpected event", "%+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRestartKeepsFreezePeriod(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	clock := ledger.NewManualClock(testStart)
	cfg := ledger.LedgerStateConfig{
		DataDir:        dataDir,
		Token:          token.NewMemory(0),
		Clock:          clock,
		FreezeDuration: testFreezeDuration,
		VotingPeriod:   testVotingPeriod,
	}
	ls, err := ledger.NewLedgerState(cfg)
	require.NoError(t, err)
	id, err := ls.Propose(ctx, addr(1), "persist", "", 10)
	require.NoError(t, err)
	status, err := ls.FreezeStatus(ctx)
	require.NoError(t, err)
	require.NoError(t, ls.Close())

	clock.Advance(30 * time.Minute)
	ls, err = ledger.NewLedgerState(cfg)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, ls.Close())
	}()
	restarted, err := ls.FreezeStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, status.EndsAt, restarted.EndsAt)
	assert.True(t, restarted.Open)
	proposal, err := ls.GetProposal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "persist", proposal.Title)
	assert.Equal(t, addr(1), proposal.Proposer)
	entries, err := ls.Journal(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	ls := newTestLedger(t, func(cfg *ledger.LedgerStateConfig) {
		cfg.PromRegistry = reg
	})
	_, err := ls.Propose(ctx, addr(1), "metrics", "", 1)
	require.NoError(t, err)
	require.ErrorIs(t, ls.EndFreezing(ctx), ledger.ErrTooEarly)

	families, err := reg.Gather()
	require.NoError(t, err)
	seen := make(map[string]bool)
	for _, family := range families {
		seen[family.GetName()] = true
		switch family.GetName() {
		case "messiah_ledger_operations_total":
			results := make(map[string]string)
			for _, metric := range family.GetMetric() {
				labels := make(map[string]string)
				for _, label := range metric.GetLabel() {
					labels[label.GetName()] = label.GetValue()
				}
				results[labels["operation"]] = labels["result"]
			}
			assert.Equal(
				t,
				map[string]string{
					"init":         "ok",
					"propose":      "ok",
					"end_freezing": "precondition",
				},
				results,
			)
		case "messiah_ledger_accounts":
			assert.InDelta(t, 1, family.GetMetric()[0].GetGauge().GetValue(), 0)
		case "messiah_ledger_proposals":
			for _, metric := range family.GetMetric() {
				want := 0.0
				if metric.GetLabel()[0].GetValue() == "voting" {
					want = 1
				}
				assert.InDelta(t, want, metric.GetGauge().GetValue(), 0)
			}
		}
	}
	assert.True(t, seen["messiah_ledger_operations_total"])
	assert.True(t, seen["messiah_ledger_operation_duration_seconds"])
	assert.True(t, seen["messiah_blob_lsm_size_bytes"])
}

func TestConcurrentVotesKeepTallyConsistent(t *testing.T) {
	ctx := context.Background()
	ls := newTestLedger(t)
	id, err := ls.Propose(ctx, addr(1), "busy", "", 1)
	require.NoError(t, err)

	const voters = 20
	options := []ledger.Option{
		ledger.OptionFor,
		ledger.OptionAgainst,
		ledger.OptionAbstain,
	}
	var wg sync.WaitGroup
	for i := range voters {
		wg.Add(1)
		go func(voter int64) {
			defer wg.Done()
			for j := range 3 {
				opt := options[(int(voter)+j)%len(options)]
				assert.NoError(t, ls.VoteForProposal(ctx, addr(100+voter), id, opt))
			}
		}(int64(i))
	}
	wg.Wait()

	tally, err := ls.TallyOf(ctx, ledger.ProposalTarget(id))
	require.NoError(t, err)
	assert.Equal(t, uint64(voters), tally.Voters)
	assert.Equal(t, tally.Voters, tally.For+tally.Against+tally.Abstain)
	require.NoError(t, ls.AuditTally(ctx, ledger.ProposalTarget(id)))
}
