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

import "github.com/blinklabs-io/messiah/database/types"

// FreezeState is the singleton row tracking the blacklist voting window
type FreezeState struct {
	ID         uint  `gorm:"primarykey"`
	EndsAt     int64 `gorm:"not null"`
	Resolved   bool  `gorm:"not null"`
	ResolvedAt int64
}

func (FreezeState) TableName() string {
	return "freeze_state"
}

// NewFreezeState returns the singleton freeze row ending at the given time
func NewFreezeState(endsAt int64) *FreezeState {
	return &FreezeState{
		ID:     freezeStateRowId,
		EndsAt: endsAt,
	}
}

// BlacklistEntry marks an account as blacklisted. Rows are only written when
// the freeze period is resolved.
type BlacklistEntry struct {
	AccountID uint64 `gorm:"primaryKey;autoIncrement:false"`
	AddedAt   int64  `gorm:"not null"`
}

func (BlacklistEntry) TableName() string {
	return "blacklist_entry"
}

// TokenClaim records a one-time governance token claim
type TokenClaim struct {
	AccountID uint64       `gorm:"primaryKey;autoIncrement:false"`
	Amount    types.Uint64 `gorm:"not null"`
	ClaimedAt int64        `gorm:"not null"`
}

func (TokenClaim) TableName() string {
	return "token_claim"
}
