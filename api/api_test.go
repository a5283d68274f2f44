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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blinklabs-io/messiah/ledger"
	"github.com/blinklabs-io/messiah/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const (
	testFreezeDuration = time.Hour
	testVotingPeriod   = time.Hour
)

type testEnv struct {
	api    *API
	ls     *ledger.LedgerState
	clock  *ledger.ManualClock
	token  *token.Memory
	server http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := ledger.NewManualClock(time.Date(2026, time.May, 4, 0, 0, 0, 0, time.UTC))
	tok := token.NewMemory(10_000)
	ls, err := ledger.NewLedgerState(ledger.LedgerStateConfig{
		Token:          tok,
		Clock:          clock,
		FreezeDuration: testFreezeDuration,
		VotingPeriod:   testVotingPeriod,
		PageSize:       2,
		ClaimAmount:    25,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, ls.Close())
	})
	a := New(Config{ListenAddress: "127.0.0.1:0"}, ls, slog.Default())
	return &testEnv{
		api:    a,
		ls:     ls,
		clock:  clock,
		token:  tok,
		server: a.Handler(),
	}
}

func addr(n int64) common.Address {
	return common.BigToAddress(big.NewInt(n))
}

// do sends a request to the API and decodes the JSON response into out, if
// out is not nil
func (e *testEnv) do(
	t *testing.T,
	method string,
	path string,
	caller *common.Address,
	body any,
	out any,
) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reqBody).Encode(body))
	}
	req := httptest.NewRequest(method, path, &reqBody)
	if caller != nil {
		req.Header.Set(CallerHeader, caller.Hex())
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec
}

func ptr(a common.Address) *common.Address {
	return &a
}

func TestStartStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a := New(Config{ListenAddress: "127.0.0.1:0"}, nil, nil)

	require.NoError(t, a.Start(ctx))
	a.mu.Lock()
	assert.NotNil(t, a.httpServer)
	a.mu.Unlock()
	require.Error(t, a.Start(ctx))

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, a.Stop(stopCtx))
	a.mu.Lock()
	assert.Nil(t, a.httpServer)
	a.mu.Unlock()
	// Stopping twice is harmless
	require.NoError(t, a.Stop(stopCtx))
}

func TestStopOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	ctx, cancel := context.WithCancel(context.Background())
	a := New(Config{ListenAddress: "127.0.0.1:0"}, nil, nil)
	require.NoError(t, a.Start(ctx))
	cancel()
	require.Eventually(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.httpServer == nil
	}, 5*time.Second, 10*time.Millisecond)
}

func TestHealthAndRequestId(t *testing.T) {
	env := newTestEnv(t)
	var health HealthResponse
	rec := env.do(t, http.MethodGet, "/health", nil, nil, &health)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, health.IsHealthy)
	assert.NotEmpty(t, rec.Header().Get(RequestIdHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIdHeader, "abc-123")
	rec = httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIdHeader))
}

func TestProposalLifecycle(t *testing.T) {
	env := newTestEnv(t)
	proposer := addr(1)
	worker := addr(2)

	rec := env.do(t, http.MethodPost, "/api/v0/proposals", nil, ProposeRequest{Title: "x"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var created ProposeResponse
	rec = env.do(t, http.MethodPost, "/api/v0/proposals", ptr(proposer), ProposeRequest{
		Title:       "indexer",
		Description: "build an indexer",
		Reward:      300,
	}, &created)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, ledger.ProposalId(1), created.ID)

	rec = env.do(t, http.MethodPost, "/api/v0/proposals/1/votes", ptr(addr(3)), map[string]string{"option": "for"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var errResp ErrorResponse
	rec = env.do(t, http.MethodPost, "/api/v0/proposals/1/end-voting", nil, nil, &errResp)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(ledger.ErrorClassPrecondition), errResp.Class)
	assert.False(t, errResp.Idempotent)

	env.clock.Advance(testVotingPeriod)
	var ended EndVotingResponse
	rec = env.do(t, http.MethodPost, "/api/v0/proposals/1/end-voting", nil, nil, &ended)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ledger.ProposalStateDeveloping, ended.State)

	var proposal map[string]any
	rec = env.do(t, http.MethodGet, "/api/v0/proposals/1", nil, nil, &proposal)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "developing", proposal["state"])
	assert.Equal(t, "indexer", proposal["title"])

	var submitted SubmitResponse
	rec = env.do(t, http.MethodPost, "/api/v0/proposals/1/submissions", ptr(worker), SubmitRequest{
		Url: "https://example.com/indexer",
	}, &submitted)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/v0/proposals/1/submissions", ptr(worker), SubmitRequest{
		Url: "https://example.com/again",
	}, &errResp)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.True(t, errResp.Idempotent)

	var winner WinnerResponse
	rec = env.do(t, http.MethodGet, "/api/v0/proposals/1/winner", nil, nil, &winner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, winner.Winner)

	rec = env.do(t, http.MethodPost, "/api/v0/submissions/1/votes", ptr(addr(3)), map[string]string{"option": "for"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/v0/proposals/1/winner", nil, nil, &winner)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, winner.Winner)
	assert.Equal(t, submitted.ID, *winner.Winner)

	var subs []ledger.Submission
	rec = env.do(t, http.MethodGet, "/api/v0/proposals/1/submissions?page=1", nil, nil, &subs)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, subs, 1)
	assert.Equal(t, worker, subs[0].Submitter)
	assert.Equal(t, uint64(1), subs[0].Tally.For)

	rec = env.do(t, http.MethodPost, "/api/v0/submissions/1/claim", ptr(worker), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(300), env.token.BalanceOf(worker))
	rec = env.do(t, http.MethodPost, "/api/v0/submissions/1/claim", ptr(worker), nil, &errResp)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.True(t, errResp.Idempotent)
	assert.Equal(t, string(ledger.ErrorClassIdempotency), errResp.Class)

	rec = env.do(t, http.MethodPost, "/api/v0/proposals/1/cancel", ptr(worker), nil, &errResp)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestFreezeAndClaimToken(t *testing.T) {
	env := newTestEnv(t)
	bad := addr(66)

	for _, voter := range []int64{1, 2} {
		rec := env.do(t, http.MethodPost, "/api/v0/freeze/votes", ptr(addr(voter)), BlacklistVoteRequest{
			Target: bad,
			Option: ledger.OptionFor,
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	var tally ledger.Tally
	rec := env.do(t, http.MethodGet, "/api/v0/tallies/account/"+bad.Hex(), nil, nil, &tally)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ledger.Tally{For: 2, Voters: 2}, tally)

	var ballot BallotResponse
	rec = env.do(t, http.MethodGet, "/api/v0/ballots/account/"+bad.Hex()+"/"+addr(1).Hex(), nil, nil, &ballot)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ledger.OptionFor, ballot.Option)

	rec = env.do(t, http.MethodPost, "/api/v0/token/claim", ptr(addr(1)), nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/v0/freeze/end", nil, nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	env.clock.Advance(testFreezeDuration)
	var status ledger.FreezeStatus
	rec = env.do(t, http.MethodPost, "/api/v0/freeze/end", nil, nil, &status)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, status.Resolved)
	assert.Equal(t, uint64(1), status.Blacklisted)

	rec = env.do(t, http.MethodPost, "/api/v0/token/claim", ptr(bad), nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/v0/token/claim", ptr(addr(1)), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(25), env.token.BalanceOf(addr(1)))

	var account AccountResponse
	rec = env.do(t, http.MethodGet, "/api/v0/accounts/"+addr(1).Hex(), nil, nil, &account)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, account.ID)
	assert.True(t, account.ClaimedToken)
	assert.False(t, account.Blacklisted)

	rec = env.do(t, http.MethodGet, "/api/v0/accounts/"+bad.Hex(), nil, nil, &account)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, account.Blacklisted)

	account = AccountResponse{}
	rec = env.do(t, http.MethodGet, "/api/v0/accounts/"+addr(500).Hex(), nil, nil, &account)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, account.ID)
}

func TestNumericOption(t *testing.T) {
	env := newTestEnv(t)
	target := addr(70)
	testDefs := []struct {
		voter  int64
		option any
		want   ledger.Option
	}{
		{1, 1, ledger.OptionFor},
		{2, 2, ledger.OptionAgainst},
		{3, 3, ledger.OptionAbstain},
		{4, "for", ledger.OptionFor},
	}
	for _, testDef := range testDefs {
		rec := env.do(t, http.MethodPost, "/api/v0/freeze/votes", ptr(addr(testDef.voter)), map[string]any{
			"target": target.Hex(),
			"option": testDef.option,
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var ballot BallotResponse
		rec = env.do(t, http.MethodGet, "/api/v0/ballots/account/"+target.Hex()+"/"+addr(testDef.voter).Hex(), nil, nil, &ballot)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, testDef.want, ballot.Option)
	}
	var tally ledger.Tally
	rec := env.do(t, http.MethodGet, "/api/v0/tallies/account/"+target.Hex(), nil, nil, &tally)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ledger.Tally{For: 2, Against: 1, Abstain: 1, Voters: 4}, tally)
}

func TestGetBlacklist(t *testing.T) {
	env := newTestEnv(t)
	targets := []common.Address{addr(81), addr(82), addr(83)}
	for _, target := range targets {
		rec := env.do(t, http.MethodPost, "/api/v0/freeze/votes", ptr(addr(1)), BlacklistVoteRequest{
			Target: target,
			Option: ledger.OptionFor,
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	env.clock.Advance(testFreezeDuration)
	rec := env.do(t, http.MethodPost, "/api/v0/freeze/end", nil, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []common.Address
	for page := 1; ; page++ {
		var accounts []ledger.BlacklistedAccount
		rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/v0/blacklist?page=%d", page), nil, nil, &accounts)
		require.Equal(t, http.StatusOK, rec.Code)
		if len(accounts) == 0 {
			assert.Equal(t, "[]\n", rec.Body.String())
			break
		}
		for _, account := range accounts {
			listed = append(listed, account.Address)
		}
	}
	assert.ElementsMatch(t, targets, listed)
}

func TestInvalidRequests(t *testing.T) {
	env := newTestEnv(t)
	testDefs := []struct {
		name   string
		method string
		path   string
		caller *common.Address
		body   any
		status int
	}{
		{"bad page", http.MethodGet, "/api/v0/proposals?page=abc", nil, nil, http.StatusBadRequest},
		{"page zero", http.MethodGet, "/api/v0/proposals?page=0", nil, nil, http.StatusBadRequest},
		{"bad id", http.MethodGet, "/api/v0/proposals/xyz", nil, nil, http.StatusBadRequest},
		{"unknown proposal", http.MethodGet, "/api/v0/proposals/9", nil, nil, http.StatusNotFound},
		{"unknown submission", http.MethodGet, "/api/v0/submissions/9", nil, nil, http.StatusNotFound},
		{"bad address", http.MethodGet, "/api/v0/accounts/nothex", nil, nil, http.StatusBadRequest},
		{"bad kind", http.MethodGet, "/api/v0/tallies/widget/1", nil, nil, http.StatusBadRequest},
		{"bad option", http.MethodPost, "/api/v0/freeze/votes", ptr(addr(1)), map[string]string{"target": addr(2).Hex(), "option": "maybe"}, http.StatusBadRequest},
		{"unvoted option", http.MethodPost, "/api/v0/freeze/votes", ptr(addr(1)), map[string]string{"target": addr(2).Hex(), "option": "unvoted"}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/v0/proposals", ptr(addr(1)), map[string]any{"title": "t", "bogus": 1}, http.StatusBadRequest},
		{"bad journal limit", http.MethodGet, "/api/v0/journal?limit=x", nil, nil, http.StatusBadRequest},
		{"blacklist page zero", http.MethodGet, "/api/v0/blacklist?page=0", nil, nil, http.StatusBadRequest},
		{"numeric unvoted option", http.MethodPost, "/api/v0/freeze/votes", ptr(addr(1)), map[string]any{"target": addr(2).Hex(), "option": 0}, http.StatusBadRequest},
		{"numeric option out of range", http.MethodPost, "/api/v0/freeze/votes", ptr(addr(1)), map[string]any{"target": addr(2).Hex(), "option": 4}, http.StatusBadRequest},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			rec := env.do(t, testDef.method, testDef.path, testDef.caller, testDef.body, nil)
			assert.Equal(t, testDef.status, rec.Code, rec.Body.String())
		})
	}
}

func TestJournal(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v0/proposals", ptr(addr(1)), ProposeRequest{Title: "j", Reward: 7}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var entries []JournalEntryResponse
	rec = env.do(t, http.MethodGet, "/api/v0/journal", nil, nil, &entries)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, entries, 3)
	assert.Equal(t, ledger.JournalFreezeStarted, entries[0].Type)
	assert.Equal(t, ledger.JournalProposalCreated, entries[2].Type)
	require.NotNil(t, entries[2].Target)
	assert.Equal(t, ledger.TargetKindProposal, entries[2].Target.Kind)
	assert.Equal(t, uint64(7), entries[2].Amount)
	assert.Equal(t, addr(1).Bytes(), []byte(entries[2].Caller))

	rec = env.do(t, http.MethodGet, "/api/v0/journal?from=2&limit=1", nil, nil, &entries)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(2), entries[0].Seq)
}
