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

package badger

import (
	"log/slog"
	"testing"
	"time"

	"github.com/blinklabs-io/messiah/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	logger := slog.Default()
	reg := prometheus.NewRegistry()
	tuning := Tuning{BlockCacheSize: 1024, GcInterval: time.Minute}
	b := &BlobStoreBadger{}
	for _, opt := range []BlobStoreBadgerOptionFunc{
		WithLogger(logger),
		WithPromRegistry(reg),
		WithDataDir("/tmp/test"),
		WithTuning(tuning),
	} {
		opt(b)
	}
	assert.Equal(t, logger, b.logger)
	assert.Equal(t, reg, b.promRegistry)
	assert.Equal(t, "/tmp/test", b.dataDir)
	assert.Equal(t, tuning, b.tuning)
}

func TestTuningDefaults(t *testing.T) {
	got := Tuning{MemTableSize: 8 << 20}.withDefaults()
	assert.Equal(t, int64(8<<20), got.MemTableSize)
	assert.Equal(t, int64(DefaultBlockCacheSize), got.BlockCacheSize)
	assert.Equal(t, int64(DefaultValueLogFileSize), got.ValueLogFileSize)
	assert.Equal(t, DefaultGcInterval, got.GcInterval)
	assert.True(t, got.gcEnabled())
	assert.False(t, Tuning{GcInterval: -1}.withDefaults().gcEnabled())
}

func TestTuningValidate(t *testing.T) {
	testDefs := []struct {
		name    string
		tuning  Tuning
		wantErr bool
	}{
		{name: "zero", tuning: Tuning{}},
		{name: "defaults", tuning: DefaultTuning()},
		{name: "negative cache", tuning: Tuning{BlockCacheSize: -1}, wantErr: true},
		{name: "small vlog", tuning: Tuning{ValueLogFileSize: 4096}, wantErr: true},
		{name: "huge vlog", tuning: Tuning{ValueLogFileSize: 4 << 30}, wantErr: true},
		{name: "negative memtable", tuning: Tuning{MemTableSize: -1}, wantErr: true},
		{name: "large threshold", tuning: Tuning{ValueThreshold: 2 << 20}, wantErr: true},
		{name: "threshold over batch size", tuning: Tuning{MemTableSize: 4 << 20}, wantErr: true},
		{name: "small memtable", tuning: Tuning{MemTableSize: 4 << 20, ValueThreshold: 1024}},
	}
	for _, tc := range testDefs {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.tuning.Validate()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewOnDiskTuning(t *testing.T) {
	store, err := New(
		WithDataDir(t.TempDir()),
		WithTuning(Tuning{
			BlockCacheSize:   8 << 20,
			ValueLogFileSize: 16 << 20,
			GcInterval:       -1,
		}),
	)
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck
	got := store.Tuning()
	assert.Equal(t, int64(8<<20), got.BlockCacheSize)
	assert.Equal(t, int64(16<<20), got.ValueLogFileSize)
	assert.Equal(t, int64(DefaultIndexCacheSize), got.IndexCacheSize)
	assert.Nil(t, store.gcStopCh)
	opts := store.DB().Opts()
	assert.Equal(t, int64(16<<20), opts.ValueLogFileSize)
	assert.Equal(t, int64(8<<20), opts.BlockCacheSize)
}

func TestNewOnDiskGc(t *testing.T) {
	store, err := New(
		WithDataDir(t.TempDir()),
		WithTuning(Tuning{GcInterval: time.Hour}),
	)
	require.NoError(t, err)
	assert.NotNil(t, store.gcStopCh)
	require.NoError(t, store.Close())
	assert.Nil(t, store.gcStopCh)
}

func TestNewRejectsTuning(t *testing.T) {
	_, err := New(WithTuning(Tuning{ValueLogFileSize: 1}))
	require.ErrorContains(t, err, "blob store tuning")
}

func newTestStore(t *testing.T) *BlobStoreBadger {
	t.Helper()
	store, err := New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestGetSetDelete(t *testing.T) {
	store := newTestStore(t)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("key"), []byte("value")))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(true)
	val, err := store.Get(txn, []byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), val)
	require.NoError(t, store.Delete(txn, []byte("key")))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err = store.Get(txn, []byte("key"))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestRollbackDiscardsWrites(t *testing.T) {
	store := newTestStore(t)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("key"), []byte("value")))
	require.NoError(t, txn.Rollback())
	// Finished transactions cannot be reused
	require.Error(t, store.Set(txn, []byte("key"), []byte("value")))

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err := store.Get(txn, []byte("key"))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestValidateTxn(t *testing.T) {
	store := newTestStore(t)
	other := newTestStore(t)
	_, err := store.Get(nil, []byte("key"))
	require.ErrorIs(t, err, types.ErrNilTxn)
	txn := other.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err = store.Get(txn, []byte("key"))
	require.Error(t, err)
}

func TestIteratorPrefix(t *testing.T) {
	store := newTestStore(t)
	txn := store.NewTransaction(true)
	for _, seq := range []uint64{3, 1, 2} {
		require.NoError(t, store.Set(txn, types.JournalEntryKey(seq), []byte{byte(seq)}))
	}
	require.NoError(t, store.Set(txn, []byte(types.JournalNextSeqKey), []byte{4}))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	prefix := []byte(types.JournalEntryKeyPrefix)
	iter := store.NewIterator(txn, types.BlobIteratorOptions{Prefix: prefix})
	defer iter.Close()
	var got []byte
	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		val, err := iter.Item().ValueCopy(nil)
		require.NoError(t, err)
		got = append(got, val...)
	}
	require.NoError(t, iter.Err())
	assert.Equal(t, []byte{1, 2, 3}, got)
}

func TestCommitTimestamp(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetCommitTimestamp()
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
	txn := store.NewTransaction(true)
	require.NoError(t, store.SetCommitTimestamp(1700000000123, txn))
	require.NoError(t, txn.Commit())
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000123), ts)
	require.ErrorIs(t, store.SetCommitTimestamp(1, nil), types.ErrNilTxn)
}

func TestMetricsRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	store, err := New(WithPromRegistry(reg))
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck
	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
	}
	assert.Contains(t, names, "messiah_blob_lsm_size_bytes")
	assert.Contains(t, names, "messiah_blob_vlog_size_bytes")
}
