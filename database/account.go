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

// GetAccountByAddress returns the account for an address, or nil if the
// address has never been registered
func (d *Database) GetAccountByAddress(
	address []byte,
	txn *Txn,
) (*models.Account, error) {
	ret, err := d.metadata.GetAccountByAddress(address, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("get account by address %x: %w", address, err)
	}
	return ret, nil
}

// GetAccount returns an account by id, or nil if it doesn't exist
func (d *Database) GetAccount(id uint64, txn *Txn) (*models.Account, error) {
	ret, err := d.metadata.GetAccount(id, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("get account %d: %w", id, err)
	}
	return ret, nil
}

// CreateAccount registers a new account and sets its assigned id
func (d *Database) CreateAccount(account *models.Account, txn *Txn) error {
	if err := d.metadata.CreateAccount(account, txn.Metadata()); err != nil {
		return fmt.Errorf("create account %x: %w", account.Address, err)
	}
	return nil
}

// CountAccounts returns the number of registered accounts
func (d *Database) CountAccounts(txn *Txn) (uint64, error) {
	ret, err := d.metadata.CountAccounts(txn.Metadata())
	if err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return ret, nil
}
