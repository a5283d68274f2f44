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

package ledger

import (
	"context"
	"fmt"

	"github.com/blinklabs-io/messiah/database"
	"github.com/blinklabs-io/messiah/database/models"
	"github.com/ethereum/go-ethereum/common"
)

// IdentityRegistry maps addresses to dense account ids. Ids are assigned on
// first sight starting at 1 and are never reassigned
type IdentityRegistry struct {
	db *database.Database
}

// identify returns the id of an address, registering it if needed
func (r *IdentityRegistry) identify(
	op *operation,
	address common.Address,
) (AccountId, error) {
	id, ok, err := r.lookup(op.txn, address)
	if err != nil {
		return 0, err
	}
	if ok {
		return id, nil
	}
	account := &models.Account{
		Address:      address.Bytes(),
		RegisteredAt: op.now.Unix(),
	}
	if err := r.db.CreateAccount(account, op.txn); err != nil {
		return 0, err
	}
	if err := op.record(database.JournalEntry{
		Type:       JournalAccountRegistered,
		Caller:     address.Bytes(),
		TargetKind: uint8(TargetKindAccount),
		TargetID:   account.ID,
	}); err != nil {
		return 0, err
	}
	return AccountId(account.ID), nil
}

// lookup returns the id of an address without registering it
func (r *IdentityRegistry) lookup(
	txn *database.Txn,
	address common.Address,
) (AccountId, bool, error) {
	account, err := r.db.GetAccountByAddress(address.Bytes(), txn)
	if err != nil {
		return 0, false, err
	}
	if account == nil {
		return 0, false, nil
	}
	return AccountId(account.ID), true, nil
}

// address returns the address registered for an account id
func (r *IdentityRegistry) address(
	txn *database.Txn,
	id AccountId,
) (common.Address, error) {
	account, err := r.db.GetAccount(uint64(id), txn)
	if err != nil {
		return common.Address{}, err
	}
	if account == nil {
		return common.Address{}, fmt.Errorf("account %d not found", id)
	}
	return common.BytesToAddress(account.Address), nil
}

// Identify returns the account id of an address, registering the address if
// it hasn't been seen before
func (ls *LedgerState) Identify(
	ctx context.Context,
	address common.Address,
) (AccountId, error) {
	var ret AccountId
	err := ls.write(ctx, "identify", func(op *operation) error {
		var err error
		ret, err = ls.identity.identify(op, address)
		return err
	})
	return ret, err
}

// AccountId returns the account id of an address if it has been registered
func (ls *LedgerState) AccountId(
	ctx context.Context,
	address common.Address,
) (AccountId, bool, error) {
	var ret AccountId
	var found bool
	err := ls.read(ctx, "account_id", func(txn *database.Txn) error {
		var err error
		ret, found, err = ls.identity.lookup(txn, address)
		return err
	})
	return ret, found, err
}
