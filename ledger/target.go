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
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/blinklabs-io/messiah/database/models"
	"github.com/ethereum/go-ethereum/common"
)

type (
	AccountId    uint64
	ProposalId   uint64
	SubmissionId uint64
)

// Option is a voter's choice on a target
type Option uint8

const (
	OptionUnvoted Option = models.OptionUnvoted
	OptionFor     Option = models.OptionFor
	OptionAgainst Option = models.OptionAgainst
	OptionAbstain Option = models.OptionAbstain
)

var optionNames = map[Option]string{
	OptionUnvoted: "unvoted",
	OptionFor:     "for",
	OptionAgainst: "against",
	OptionAbstain: "abstain",
}

func (o Option) String() string {
	if name, ok := optionNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Option(%d)", uint8(o))
}

// Castable reports whether the option can be submitted as a vote
func (o Option) Castable() bool {
	return o == OptionFor || o == OptionAgainst || o == OptionAbstain
}

func (o Option) MarshalText() ([]byte, error) {
	if _, ok := optionNames[o]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOption, uint8(o))
	}
	return []byte(o.String()), nil
}

func (o *Option) UnmarshalText(text []byte) error {
	tmp, err := ParseOption(string(text))
	if err != nil {
		return err
	}
	*o = tmp
	return nil
}

// UnmarshalJSON accepts an option name or its number. Numbers are limited to
// the castable options
func (o *Option) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		return o.UnmarshalText([]byte(name))
	}
	var num uint8
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidOption, data)
	}
	tmp := Option(num)
	if !tmp.Castable() {
		return fmt.Errorf("%w: %d", ErrInvalidOption, num)
	}
	*o = tmp
	return nil
}

// ParseOption returns the option with the given name
func ParseOption(name string) (Option, error) {
	for opt, optName := range optionNames {
		if strings.EqualFold(name, optName) {
			return opt, nil
		}
	}
	return OptionUnvoted, fmt.Errorf("%w: %q", ErrInvalidOption, name)
}

// ProposalState is the lifecycle state of a proposal
type ProposalState uint8

const (
	ProposalStateVoting     ProposalState = models.ProposalStateVoting
	ProposalStateDeveloping ProposalState = models.ProposalStateDeveloping
	ProposalStateCompleted  ProposalState = models.ProposalStateCompleted
	ProposalStateDefeated   ProposalState = models.ProposalStateDefeated
	ProposalStateCanceled   ProposalState = models.ProposalStateCanceled
)

var proposalStateNames = map[ProposalState]string{
	ProposalStateVoting:     "voting",
	ProposalStateDeveloping: "developing",
	ProposalStateCompleted:  "completed",
	ProposalStateDefeated:   "defeated",
	ProposalStateCanceled:   "canceled",
}

func (s ProposalState) String() string {
	if name, ok := proposalStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ProposalState(%d)", uint8(s))
}

func (s ProposalState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ProposalState) UnmarshalText(text []byte) error {
	for state, name := range proposalStateNames {
		if string(text) == name {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown proposal state %q", string(text))
}

// Terminal reports whether no further transition can leave the state
func (s ProposalState) Terminal() bool {
	return s == ProposalStateCompleted ||
		s == ProposalStateDefeated ||
		s == ProposalStateCanceled
}

// TargetKind identifies what a ballot is cast on
type TargetKind uint8

const (
	TargetKindAccount    TargetKind = models.TargetKindAccount
	TargetKindProposal   TargetKind = models.TargetKindProposal
	TargetKindSubmission TargetKind = models.TargetKindSubmission
)

func (k TargetKind) String() string {
	switch k {
	case TargetKindAccount:
		return "account"
	case TargetKindProposal:
		return "proposal"
	case TargetKindSubmission:
		return "submission"
	default:
		return fmt.Sprintf("TargetKind(%d)", uint8(k))
	}
}

func (k TargetKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *TargetKind) UnmarshalText(text []byte) error {
	for _, kind := range []TargetKind{
		TargetKindAccount,
		TargetKindProposal,
		TargetKindSubmission,
	} {
		if string(text) == kind.String() {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("%w: unknown target kind %q", ErrInvalidTarget, string(text))
}

// Target is anything that can be voted on
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   uint64     `json:"id"`
}

func AccountTarget(id AccountId) Target {
	return Target{Kind: TargetKindAccount, ID: uint64(id)}
}

func ProposalTarget(id ProposalId) Target {
	return Target{Kind: TargetKindProposal, ID: uint64(id)}
}

func SubmissionTarget(id SubmissionId) Target {
	return Target{Kind: TargetKindSubmission, ID: uint64(id)}
}

func (t Target) String() string {
	return fmt.Sprintf("%s/%d", t.Kind, t.ID)
}

func (t Target) valid() bool {
	switch t.Kind {
	case TargetKindAccount, TargetKindProposal, TargetKindSubmission:
		return t.ID > 0
	default:
		return false
	}
}

// Tally is the aggregate of all ballots on a target
type Tally struct {
	For     uint64 `json:"for"`
	Against uint64 `json:"against"`
	Abstain uint64 `json:"abstain"`
	Voters  uint64 `json:"voters"`
}

// apply moves a single voter's ballot from prior to next
func (t Tally) apply(prior Option, next Option) Tally {
	switch prior {
	case OptionFor:
		t.For--
	case OptionAgainst:
		t.Against--
	case OptionAbstain:
		t.Abstain--
	case OptionUnvoted:
		t.Voters++
	}
	switch next {
	case OptionFor:
		t.For++
	case OptionAgainst:
		t.Against++
	case OptionAbstain:
		t.Abstain++
	case OptionUnvoted:
		t.Voters--
	}
	return t
}

func tallyFromModel(m *models.Tally) Tally {
	if m == nil {
		return Tally{}
	}
	return Tally{
		For:     m.TotalFor,
		Against: m.TotalAgainst,
		Abstain: m.TotalAbstain,
		Voters:  m.TotalVoters,
	}
}

// Proposal is a read view of a proposal and its current tally
type Proposal struct {
	ID           ProposalId     `json:"id"`
	Proposer     common.Address `json:"proposer"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Reward       uint64         `json:"reward"`
	State        ProposalState  `json:"state"`
	ProposedAt   int64          `json:"proposed_at"`
	VotingEndsAt int64          `json:"voting_ends_at"`
	ClosedAt     int64          `json:"closed_at,omitempty"`
	Tally        Tally          `json:"tally"`
}

// Submission is a read view of a submission and its current tally
type Submission struct {
	ID          SubmissionId   `json:"id"`
	ProposalID  ProposalId     `json:"proposal_id"`
	Submitter   common.Address `json:"submitter"`
	Url         string         `json:"url"`
	Comment     string         `json:"comment"`
	SubmittedAt int64          `json:"submitted_at"`
	Tally       Tally          `json:"tally"`
}

// FreezeStatus describes the freeze period
type FreezeStatus struct {
	EndsAt      int64  `json:"ends_at"`
	Open        bool   `json:"open"`
	Resolved    bool   `json:"resolved"`
	ResolvedAt  int64  `json:"resolved_at,omitempty"`
	Blacklisted uint64 `json:"blacklisted"`
}

// BlacklistedAccount is an account excluded from every ballot
type BlacklistedAccount struct {
	AccountId AccountId      `json:"account_id"`
	Address   common.Address `json:"address"`
	AddedAt   int64          `json:"added_at"`
}
