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

package types

import (
	"encoding/binary"
)

const (
	JournalEntryKeyPrefix = "je"
	JournalNextSeqKey     = "jn"
	CommitTimestampKey    = "metadata_commit_timestamp"
)

func Uint64ToBytes(input uint64) []byte {
	ret := make([]byte, 8)
	binary.BigEndian.PutUint64(ret, input)
	return ret
}

func BytesToUint64(input []byte) uint64 {
	if len(input) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(input)
}

// JournalEntryKey returns the blob key for a journal sequence number. Keys sort
// in sequence order.
func JournalEntryKey(seq uint64) []byte {
	key := []byte(JournalEntryKeyPrefix)
	key = append(key, Uint64ToBytes(seq)...)
	return key
}
