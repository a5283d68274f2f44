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

package sqlite

import (
	"errors"

	"github.com/blinklabs-io/messiah/database/models"
	"github.com/blinklabs-io/messiah/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetJournalCursor returns the sequence number of the last journal entry
// committed along with the metadata, or 0 if none
func (d *MetadataStoreSqlite) GetJournalCursor(txn types.Txn) (uint64, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var tmpCursor models.JournalCursor
	result := db.First(&tmpCursor)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, result.Error
	}
	return tmpCursor.LastSeq, nil
}

// SetJournalCursor records the sequence number of the last journal entry
func (d *MetadataStoreSqlite) SetJournalCursor(
	lastSeq uint64,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_seq"}),
	}).Create(models.NewJournalCursor(lastSeq))
	return result.Error
}
