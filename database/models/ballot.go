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

package models

// TargetKind constants identify what a ballot is cast on.
const (
	TargetKindAccount    = 1
	TargetKindProposal   = 2
	TargetKindSubmission = 3
)

// Option constants represent a voter's choice on a target.
const (
	OptionUnvoted = 0
	OptionFor     = 1
	OptionAgainst = 2
	OptionAbstain = 3
)

// Ballot is the current choice of one voter on one target. Rows only exist for
// voters that have cast a ballot.
type Ballot struct {
	ID         uint   `gorm:"primarykey"`
	TargetKind uint8  `gorm:"uniqueIndex:idx_ballot_unique,priority:1;not null"`
	TargetID   uint64 `gorm:"uniqueIndex:idx_ballot_unique,priority:2;not null"`
	VoterID    uint64 `gorm:"uniqueIndex:idx_ballot_unique,priority:3;index;not null"`
	Option     uint8  `gorm:"not null"` // 1=For, 2=Against, 3=Abstain
	CastAt     int64  `gorm:"not null"`
}

// TableName returns the table name
func (Ballot) TableName() string {
	return "ballot"
}

// Tally holds the per-option counts for a target. The counts always equal the
// number of ballot rows currently holding each option.
type Tally struct {
	TargetKind   uint8  `gorm:"primaryKey;autoIncrement:false"`
	TargetID     uint64 `gorm:"primaryKey;autoIncrement:false"`
	TotalFor     uint64 `gorm:"index;not null"`
	TotalAgainst uint64 `gorm:"not null"`
	TotalAbstain uint64 `gorm:"not null"`
	TotalVoters  uint64 `gorm:"not null"`
}

// TableName returns the table name
func (Tally) TableName() string {
	return "tally"
}
