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
	"errors"
	"fmt"

	"github.com/blinklabs-io/messiah/database/types"
	"github.com/fxamacker/cbor/v2"
)

// JournalEntry is a record of a committed ledger operation. Entries are
// written in the same transaction as the state change they describe
type JournalEntry struct {
	Seq        uint64   `cbor:"1,keyasint"`
	Type       string   `cbor:"2,keyasint"`
	Timestamp  int64    `cbor:"3,keyasint"`
	Caller     []byte   `cbor:"4,keyasint,omitempty"`
	TargetKind uint8    `cbor:"5,keyasint,omitempty"`
	TargetID   uint64   `cbor:"6,keyasint,omitempty"`
	Option     uint8    `cbor:"7,keyasint,omitempty"`
	State      uint8    `cbor:"8,keyasint,omitempty"`
	Amount     uint64   `cbor:"9,keyasint,omitempty"`
	Accounts   []uint64 `cbor:"10,keyasint,omitempty"`
	Parent     uint64   `cbor:"11,keyasint,omitempty"`
}

// ErrJournalReadOnly is returned when appending to the journal outside of a
// read-write transaction
var ErrJournalReadOnly = errors.New("journal append requires a read-write transaction")

var journalEncMode = func() cbor.EncMode {
	// Core deterministic encoding keeps journal bytes stable across versions
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

func (d *Database) journalNextSeq(txn *Txn) (uint64, error) {
	val, err := d.blob.Get(txn.Blob(), []byte(types.JournalNextSeqKey))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return 1, nil
		}
		return 0, err
	}
	return types.BytesToUint64(val), nil
}

// AppendJournal assigns the next sequence number to the entry and writes it
// as part of the transaction
func (d *Database) AppendJournal(entry *JournalEntry, txn *Txn) error {
	if !txn.ReadWrite() {
		return ErrJournalReadOnly
	}
	seq, err := d.journalNextSeq(txn)
	if err != nil {
		return fmt.Errorf("append journal: read next sequence: %w", err)
	}
	entry.Seq = seq
	entryCbor, err := journalEncMode.Marshal(entry)
	if err != nil {
		return fmt.Errorf("append journal: encode entry: %w", err)
	}
	if err := d.blob.Set(txn.Blob(), types.JournalEntryKey(seq), entryCbor); err != nil {
		return fmt.Errorf("append journal: write entry: %w", err)
	}
	if err := d.blob.Set(
		txn.Blob(),
		[]byte(types.JournalNextSeqKey),
		types.Uint64ToBytes(seq+1),
	); err != nil {
		return fmt.Errorf("append journal: write next sequence: %w", err)
	}
	if err := d.metadata.SetJournalCursor(seq, txn.Metadata()); err != nil {
		return fmt.Errorf("append journal: update cursor: %w", err)
	}
	return nil
}

// Journal returns up to limit journal entries starting at sequence number from
func (d *Database) Journal(
	from uint64,
	limit int,
	txn *Txn,
) ([]JournalEntry, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	if from == 0 {
		from = 1
	}
	prefix := []byte(types.JournalEntryKeyPrefix)
	iter := d.blob.NewIterator(
		txn.Blob(),
		types.BlobIteratorOptions{Prefix: prefix},
	)
	defer iter.Close()
	var ret []JournalEntry
	for iter.Seek(types.JournalEntryKey(from)); iter.ValidForPrefix(prefix); iter.Next() {
		if limit > 0 && len(ret) >= limit {
			break
		}
		val, err := iter.Item().ValueCopy(nil)
		if err != nil {
			return nil, fmt.Errorf("read journal entry: %w", err)
		}
		var entry JournalEntry
		if err := cbor.Unmarshal(val, &entry); err != nil {
			return nil, fmt.Errorf("decode journal entry: %w", err)
		}
		ret = append(ret, entry)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return ret, nil
}

// RecoverCommitTimestampConflict discards journal entries that were committed
// to the blob store without the matching metadata commit, and brings the
// commit timestamps of both stores back in line
func (d *Database) RecoverCommitTimestampConflict() error {
	txn := d.Transaction(true)
	return txn.Do(func(txn *Txn) error {
		cursor, err := d.metadata.GetJournalCursor(txn.Metadata())
		if err != nil {
			return fmt.Errorf("get journal cursor: %w", err)
		}
		prefix := []byte(types.JournalEntryKeyPrefix)
		iter := d.blob.NewIterator(
			txn.Blob(),
			types.BlobIteratorOptions{Prefix: prefix},
		)
		var orphans [][]byte
		for iter.Seek(types.JournalEntryKey(cursor + 1)); iter.ValidForPrefix(prefix); iter.Next() {
			orphans = append(orphans, iter.Item().Key())
		}
		iterErr := iter.Err()
		iter.Close()
		if iterErr != nil {
			return fmt.Errorf("iterate journal: %w", iterErr)
		}
		for _, key := range orphans {
			if err := d.blob.Delete(txn.Blob(), key); err != nil {
				return fmt.Errorf("delete orphaned journal entry: %w", err)
			}
		}
		if err := d.blob.Set(
			txn.Blob(),
			[]byte(types.JournalNextSeqKey),
			types.Uint64ToBytes(cursor+1),
		); err != nil {
			return fmt.Errorf("reset journal sequence: %w", err)
		}
		if len(orphans) > 0 {
			d.logger.Warn(
				fmt.Sprintf("discarded %d orphaned journal entries", len(orphans)),
				"component", "database",
				"journal_cursor", cursor,
			)
		}
		return nil
	})
}
