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

// MigrateModels contains a list of model objects that should have DB migrations applied
var MigrateModels = []any{
	&Account{},
	&Ballot{},
	&BlacklistEntry{},
	&FreezeState{},
	&JournalCursor{},
	&Proposal{},
	&RewardPayout{},
	&Submission{},
	&Tally{},
	&TokenClaim{},
}

const (
	freezeStateRowId   = 1
	journalCursorRowId = 1
)

// JournalCursor records the sequence number of the last journal entry written
// alongside the metadata. It is used to trim journal entries left behind by a
// partially committed transaction.
type JournalCursor struct {
	ID      uint `gorm:"primarykey"`
	LastSeq uint64
}

func (JournalCursor) TableName() string {
	return "journal_cursor"
}

// NewJournalCursor returns the singleton cursor row for the given sequence
func NewJournalCursor(lastSeq uint64) *JournalCursor {
	return &JournalCursor{
		ID:      journalCursorRowId,
		LastSeq: lastSeq,
	}
}
