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

package database

import (
	"fmt"

	"github.com/blinklabs-io/messiah/database/models"
)

// GetFreezeState returns the freeze period state, or nil if uninitialized
func (d *Database) GetFreezeState(txn *Txn) (*models.FreezeState, error) {
	ret, err := d.metadata.GetFreezeState(txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("get freeze state: %w", err)
	}
	return ret, nil
}

// SetFreezeState creates or replaces the freeze period state
func (d *Database) SetFreezeState(state *models.FreezeState, txn *Txn) error {
	if err := d.metadata.SetFreezeState(state, txn.Metadata()); err != nil {
		return fmt.Errorf("set freeze state: %w", err)
	}
	return nil
}

// GetBlacklistCandidates returns the accounts that more voters want
// blacklisted than not
func (d *Database) GetBlacklistCandidates(txn *Txn) ([]uint64, error) {
	ret, err := d.metadata.GetBlacklistCandidates(txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("get blacklist candidates: %w", err)
	}
	return ret, nil
}

// AddBlacklistEntries blacklists the given accounts
func (d *Database) AddBlacklistEntries(
	accountIds []uint64,
	addedAt int64,
	txn *Txn,
) error {
	if err := d.metadata.AddBlacklistEntries(accountIds, addedAt, txn.Metadata()); err != nil {
		return fmt.Errorf("add blacklist entries: %w", err)
	}
	return nil
}

// IsBlacklisted returns whether an account is blacklisted
func (d *Database) IsBlacklisted(accountId uint64, txn *Txn) (bool, error) {
	ret, err := d.metadata.IsBlacklisted(accountId, txn.Metadata())
	if err != nil {
		return false, fmt.Errorf(
			"check blacklist for account %d: %w",
			accountId,
			err,
		)
	}
	return ret, nil
}

// CountBlacklisted returns the number of blacklisted accounts
func (d *Database) CountBlacklisted(txn *Txn) (uint64, error) {
	ret, err := d.metadata.CountBlacklisted(txn.Metadata())
	if err != nil {
		return 0, fmt.Errorf("count blacklisted accounts: %w", err)
	}
	return ret, nil
}

// GetBlacklist returns a window of blacklist entries in ascending account id
// order
func (d *Database) GetBlacklist(
	offset int,
	limit int,
	txn *Txn,
) ([]models.BlacklistEntry, error) {
	ret, err := d.metadata.GetBlacklist(offset, limit, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("get blacklist: %w", err)
	}
	return ret, nil
}

// GetTokenClaim returns an account's token claim, or nil if it hasn't claimed
func (d *Database) GetTokenClaim(
	accountId uint64,
	txn *Txn,
) (*models.TokenClaim, error) {
	ret, err := d.metadata.GetTokenClaim(accountId, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf(
			"get token claim for account %d: %w",
			accountId,
			err,
		)
	}
	return ret, nil
}

// CreateTokenClaim records an account's token claim
func (d *Database) CreateTokenClaim(claim *models.TokenClaim, txn *Txn) error {
	if err := d.metadata.CreateTokenClaim(claim, txn.Metadata()); err != nil {
		return fmt.Errorf(
			"create token claim for account %d: %w",
			claim.AccountID,
			err,
		)
	}
	return nil
}
