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

// GetBallot returns the ballot of a voter on a target, or nil if the voter
// has never voted on it
func (d *MetadataStoreSqlite) GetBallot(
	targetKind uint8,
	targetId uint64,
	voterId uint64,
	txn types.Txn,
) (*models.Ballot, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Ballot{}
	result := db.Where(
		"target_kind = ? AND target_id = ? AND voter_id = ?",
		targetKind,
		targetId,
		voterId,
	).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetBallot creates or replaces the ballot of a voter on a target
func (d *MetadataStoreSqlite) SetBallot(
	ballot *models.Ballot,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "target_kind"},
			{Name: "target_id"},
			{Name: "voter_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"option", "cast_at"}),
	}).Create(ballot)
	return result.Error
}

// GetTally returns the tally for a target, or nil if no ballot has ever been
// cast on it
func (d *MetadataStoreSqlite) GetTally(
	targetKind uint8,
	targetId uint64,
	txn types.Txn,
) (*models.Tally, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Tally{}
	result := db.Where(
		"target_kind = ? AND target_id = ?",
		targetKind,
		targetId,
	).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetTally creates or replaces the tally for a target
func (d *MetadataStoreSqlite) SetTally(
	tally *models.Tally,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "target_kind"},
			{Name: "target_id"},
		},
		DoUpdates: clause.AssignmentColumns(
			[]string{
				"total_for",
				"total_against",
				"total_abstain",
				"total_voters",
			},
		),
	}).Create(tally)
	return result.Error
}

// CountBallots returns the number of ballots holding each option for a
// target, computed from the ballot rows
func (d *MetadataStoreSqlite) CountBallots(
	targetKind uint8,
	targetId uint64,
	txn types.Txn,
) (map[uint8]uint64, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Option uint8
		Count  uint64
	}
	result := db.Model(&models.Ballot{}).
		Select("option, COUNT(*) AS count").
		Where("target_kind = ? AND target_id = ?", targetKind, targetId).
		Group("option").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	ret := make(map[uint8]uint64, len(rows))
	for _, row := range rows {
		ret[row.Option] = row.Count
	}
	return ret, nil
}
