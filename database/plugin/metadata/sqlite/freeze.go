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

// GetFreezeState returns the freeze period state, or nil if it has not been
// initialized
func (d *MetadataStoreSqlite) GetFreezeState(
	txn types.Txn,
) (*models.FreezeState, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.FreezeState{}
	result := db.First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetFreezeState creates or replaces the freeze period state
func (d *MetadataStoreSqlite) SetFreezeState(
	state *models.FreezeState,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(
			[]string{"ends_at", "resolved", "resolved_at"},
		),
	}).Create(state)
	return result.Error
}

// GetBlacklistCandidates returns the ids of accounts whose blacklist tally
// has strictly more For than Against votes, in ascending order
func (d *MetadataStoreSqlite) GetBlacklistCandidates(
	txn types.Txn,
) ([]uint64, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []uint64
	result := db.Model(&models.Tally{}).
		Where(
			"target_kind = ? AND total_for > total_against",
			models.TargetKindAccount,
		).
		Order("target_id ASC").
		Pluck("target_id", &ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// AddBlacklistEntries marks the given accounts as blacklisted
func (d *MetadataStoreSqlite) AddBlacklistEntries(
	accountIds []uint64,
	addedAt int64,
	txn types.Txn,
) error {
	if len(accountIds) == 0 {
		return nil
	}
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	entries := make([]models.BlacklistEntry, 0, len(accountIds))
	for _, id := range accountIds {
		entries = append(
			entries,
			models.BlacklistEntry{
				AccountID: id,
				AddedAt:   addedAt,
			},
		)
	}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(entries, 500)
	return result.Error
}

// IsBlacklisted returns whether an account is blacklisted
func (d *MetadataStoreSqlite) IsBlacklisted(
	accountId uint64,
	txn types.Txn,
) (bool, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return false, err
	}
	var count int64
	result := db.Model(&models.BlacklistEntry{}).
		Where("account_id = ?", accountId).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// CountBlacklisted returns the number of blacklisted accounts
func (d *MetadataStoreSqlite) CountBlacklisted(txn types.Txn) (uint64, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var count int64
	if result := db.Model(&models.BlacklistEntry{}).Count(&count); result.Error != nil {
		return 0, result.Error
	}
	return uint64(count), nil //nolint:gosec // count is never negative
}

// GetBlacklist returns a window of blacklist entries in ascending account
// id order
func (d *MetadataStoreSqlite) GetBlacklist(
	offset int,
	limit int,
	txn types.Txn,
) ([]models.BlacklistEntry, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.BlacklistEntry
	result := db.Order("account_id ASC").Offset(offset).Limit(limit).Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// GetTokenClaim returns the token claim for an account, or nil if the account
// has not claimed
func (d *MetadataStoreSqlite) GetTokenClaim(
	accountId uint64,
	txn types.Txn,
) (*models.TokenClaim, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.TokenClaim{}
	result := db.Where("account_id = ?", accountId).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// CreateTokenClaim records a token claim
func (d *MetadataStoreSqlite) CreateTokenClaim(
	claim *models.TokenClaim,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(claim).Error
}
