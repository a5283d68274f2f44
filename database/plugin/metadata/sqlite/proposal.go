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
)

// CreateProposal inserts a new proposal. The id is assigned by the database
// and set on the passed model
func (d *MetadataStoreSqlite) CreateProposal(
	proposal *models.Proposal,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(proposal).Error
}

// GetProposal returns a proposal by id, or nil if it doesn't exist
func (d *MetadataStoreSqlite) GetProposal(
	id uint64,
	txn types.Txn,
) (*models.Proposal, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Proposal{}
	result := db.First(ret, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetProposalState updates the state of a proposal
func (d *MetadataStoreSqlite) SetProposalState(
	id uint64,
	state uint8,
	closedAt int64,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Model(&models.Proposal{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"state":     state,
			"closed_at": closedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetProposals returns proposals in ascending id order
func (d *MetadataStoreSqlite) GetProposals(
	offset int,
	limit int,
	txn types.Txn,
) ([]models.Proposal, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Proposal
	result := db.Order("id ASC").Offset(offset).Limit(limit).Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// CountProposals returns the number of proposals in each state
func (d *MetadataStoreSqlite) CountProposals(
	txn types.Txn,
) (map[uint8]uint64, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		State uint8
		Count uint64
	}
	result := db.Model(&models.Proposal{}).
		Select("state, COUNT(*) AS count").
		Group("state").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	ret := make(map[uint8]uint64, len(rows))
	for _, row := range rows {
		ret[row.State] = row.Count
	}
	return ret, nil
}
