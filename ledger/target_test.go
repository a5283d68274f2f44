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
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTallyApply(t *testing.T) {
	testDefs := []struct {
		prior    Option
		next     Option
		start    Tally
		expected Tally
	}{
		{OptionUnvoted, OptionFor, Tally{}, Tally{For: 1, Voters: 1}},
		{OptionUnvoted, OptionAbstain, Tally{For: 1, Voters: 1}, Tally{For: 1, Abstain: 1, Voters: 2}},
		{OptionFor, OptionAgainst, Tally{For: 1, Voters: 1}, Tally{Against: 1, Voters: 1}},
		{OptionAgainst, OptionAbstain, Tally{Against: 2, Voters: 2}, Tally{Against: 1, Abstain: 1, Voters: 2}},
		{OptionAbstain, OptionUnvoted, Tally{Abstain: 1, Voters: 1}, Tally{}},
	}
	for _, testDef := range testDefs {
		t.Run(fmt.Sprintf("%s_to_%s", testDef.prior, testDef.next), func(t *testing.T) {
			got := testDef.start.apply(testDef.prior, testDef.next)
			assert.Equal(t, testDef.expected, got)
			assert.Equal(t, got.Voters, got.For+got.Against+got.Abstain)
		})
	}
}

func TestOptionText(t *testing.T) {
	for _, opt := range []Option{OptionFor, OptionAgainst, OptionAbstain} {
		text, err := opt.MarshalText()
		require.NoError(t, err)
		var parsed Option
		require.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, opt, parsed)
	}
	parsed, err := ParseOption("FOR")
	require.NoError(t, err)
	assert.Equal(t, OptionFor, parsed)
	_, err = ParseOption("maybe")
	require.ErrorIs(t, err, ErrInvalidOption)
	_, err = Option(9).MarshalText()
	require.ErrorIs(t, err, ErrInvalidOption)
	assert.False(t, OptionUnvoted.Castable())
}

func TestOptionJSON(t *testing.T) {
	testDefs := []struct {
		input   string
		want    Option
		wantErr bool
	}{
		{input: `"for"`, want: OptionFor},
		{input: `"Against"`, want: OptionAgainst},
		{input: `1`, want: OptionFor},
		{input: `2`, want: OptionAgainst},
		{input: `3`, want: OptionAbstain},
		{input: `0`, wantErr: true},
		{input: `4`, wantErr: true},
		{input: `-1`, wantErr: true},
		{input: `1.5`, wantErr: true},
		{input: `true`, wantErr: true},
		{input: `"maybe"`, wantErr: true},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.input, func(t *testing.T) {
			var got struct {
				Option Option `json:"option"`
			}
			err := json.Unmarshal([]byte(`{"option":`+testDef.input+`}`), &got)
			if testDef.wantErr {
				require.ErrorIs(t, err, ErrInvalidOption)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testDef.want, got.Option)
		})
	}
	// Options still encode as names
	out, err := json.Marshal(struct {
		Option Option `json:"option"`
	}{OptionAbstain})
	require.NoError(t, err)
	assert.JSONEq(t, `{"option":"abstain"}`, string(out))
}

func TestProposalStateJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		State ProposalState `json:"state"`
	}{ProposalStateDeveloping})
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"developing"}`, string(out))
	assert.True(t, ProposalStateCompleted.Terminal())
	assert.True(t, ProposalStateDefeated.Terminal())
	assert.True(t, ProposalStateCanceled.Terminal())
	assert.False(t, ProposalStateVoting.Terminal())
	assert.False(t, ProposalStateDeveloping.Terminal())
}

func TestTargetValid(t *testing.T) {
	assert.True(t, AccountTarget(1).valid())
	assert.True(t, ProposalTarget(2).valid())
	assert.True(t, SubmissionTarget(3).valid())
	assert.False(t, ProposalTarget(0).valid())
	assert.False(t, Target{Kind: 9, ID: 1}.valid())
	assert.Equal(t, "proposal/2", ProposalTarget(2).String())
}

func TestPageOffset(t *testing.T) {
	offset, ok, err := pageOffset(1, 10)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, offset)

	offset, ok, err = pageOffset(3, 10)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 20, offset)

	_, _, err = pageOffset(0, 10)
	require.ErrorIs(t, err, ErrInvalidPage)
	_, _, err = pageOffset(-4, 10)
	require.ErrorIs(t, err, ErrInvalidPage)

	maxInt := int(^uint(0) >> 1)
	_, ok, err = pageOffset(maxInt, 10)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClassify(t *testing.T) {
	testDefs := []struct {
		err      error
		expected ErrorClass
	}{
		{nil, ErrorClassNone},
		{ErrTooEarly, ErrorClassPrecondition},
		{fmt.Errorf("%w: voting ends soon", ErrTooEarly), ErrorClassPrecondition},
		{ErrFreezeClosed, ErrorClassPrecondition},
		{ErrUnauthorized, ErrorClassAuthorization},
		{ErrBlacklisted, ErrorClassAuthorization},
		{ErrAlreadyClaimed, ErrorClassIdempotency},
		{ErrAlreadyTerminal, ErrorClassIdempotency},
		{ErrNotWinner, ErrorClassResolution},
		{ErrProposalNotFound, ErrorClassNotFound},
		{ErrInvalidPage, ErrorClassInvalid},
		{fmt.Errorf("%w: boom", ErrTokenTransfer), ErrorClassTransfer},
		{errors.New("disk full"), ErrorClassInternal},
	}
	for _, testDef := range testDefs {
		assert.Equal(t, testDef.expected, Classify(testDef.err), "%v", testDef.err)
	}
}
