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

// GetAccountByAddress returns the account registered for an address, or nil
// if the address has never been seen
func (d *MetadataStoreSqlite) GetAccountByAddress(
	address []byte,
	txn types.Txn,
) (*models.Account, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Account{}
	result := db.Where("address = ?", address).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// GetAccount returns an account by id, or nil if it doesn't exist
func (d *MetadataStoreSqlite) GetAccount(
	id uint64,
	txn types.Txn,
) (*models.Account, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Account{}
	result := db.First(ret, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// CreateAccount inserts a new account. The id is assigned by the database and
// set on the passed model
func (d *MetadataStoreSqlite) CreateAccount(
	account *models.Account,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(account).Error
}

// CountAccounts returns the number of registered accounts
func (d *MetadataStoreSqlite) CountAccounts(txn types.Txn) (uint64, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var count int64
	if result := db.Model(&models.Account{}).Count(&count); result.Error != nil {
		return 0, result.Error
	}
	return uint64(count), nil //nolint:gosec // count is never negative
}
