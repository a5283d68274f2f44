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
	"errors"
	"fmt"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/prometheus/client_golang/prometheus"
)

// Journal entries are a few hundred bytes, so the defaults are far below
// what badger picks for bulk blob storage
const (
	DefaultBlockCacheSize   = 64 << 20
	DefaultIndexCacheSize   = 32 << 20
	DefaultValueLogFileSize = 256 << 20
	DefaultMemTableSize     = 64 << 20
	DefaultValueThreshold   = 1 << 20
	DefaultGcInterval       = 5 * time.Minute
)

// Bounds badger enforces when opening a store
const (
	minValueLogFileSize = 1 << 20
	maxValueLogFileSize = 2 << 30
	maxValueThreshold   = 1 << 20
)

// Tuning holds the sizing of an on-disk store. Zero fields take the
// defaults. It has no effect on in-memory stores beyond the value threshold
type Tuning struct {
	BlockCacheSize   int64
	IndexCacheSize   int64
	ValueLogFileSize int64
	MemTableSize     int64
	ValueThreshold   int64
	// GcInterval is how often value log GC runs. A negative interval
	// disables GC
	GcInterval time.Duration
}

func DefaultTuning() Tuning {
	return Tuning{
		BlockCacheSize:   DefaultBlockCacheSize,
		IndexCacheSize:   DefaultIndexCacheSize,
		ValueLogFileSize: DefaultValueLogFileSize,
		MemTableSize:     DefaultMemTableSize,
		ValueThreshold:   DefaultValueThreshold,
		GcInterval:       DefaultGcInterval,
	}
}

// withDefaults fills unset fields from DefaultTuning
func (t Tuning) withDefaults() Tuning {
	def := DefaultTuning()
	if t.BlockCacheSize == 0 {
		t.BlockCacheSize = def.BlockCacheSize
	}
	if t.IndexCacheSize == 0 {
		t.IndexCacheSize = def.IndexCacheSize
	}
	if t.ValueLogFileSize == 0 {
		t.ValueLogFileSize = def.ValueLogFileSize
	}
	if t.MemTableSize == 0 {
		t.MemTableSize = def.MemTableSize
	}
	if t.ValueThreshold == 0 {
		t.ValueThreshold = def.ValueThreshold
	}
	if t.GcInterval == 0 {
		t.GcInterval = def.GcInterval
	}
	return t
}

// Validate reports settings badger would refuse to open with
func (t Tuning) Validate() error {
	if t.BlockCacheSize < 0 || t.IndexCacheSize < 0 {
		return errors.New("cache sizes must not be negative")
	}
	t = t.withDefaults()
	if t.ValueLogFileSize < minValueLogFileSize ||
		t.ValueLogFileSize >= maxValueLogFileSize {
		return fmt.Errorf(
			"value log file size must be in [%d, %d): %d",
			minValueLogFileSize,
			maxValueLogFileSize,
			t.ValueLogFileSize,
		)
	}
	if t.MemTableSize < 0 {
		return fmt.Errorf("invalid memtable size: %d", t.MemTableSize)
	}
	// badger also caps the threshold at its batch size, 15% of the memtable
	limit := min(int64(maxValueThreshold), t.MemTableSize*15/100)
	if t.ValueThreshold < 0 || t.ValueThreshold > limit {
		return fmt.Errorf(
			"value threshold must be in [0, %d]: %d",
			limit,
			t.ValueThreshold,
		)
	}
	return nil
}

func (t Tuning) gcEnabled() bool {
	return t.GcInterval > 0
}

// diskOptions returns the badger options for a store under dir
func (t Tuning) diskOptions(dir string) badger.Options {
	return badger.DefaultOptions(dir).
		WithBlockCacheSize(t.BlockCacheSize).
		WithIndexCacheSize(t.IndexCacheSize).
		WithValueLogFileSize(t.ValueLogFileSize).
		WithMemTableSize(t.MemTableSize).
		WithValueThreshold(t.ValueThreshold).
		WithCompression(options.Snappy)
}

// memoryOptions returns the badger options for an in-memory store
func (t Tuning) memoryOptions() badger.Options {
	return badger.DefaultOptions("").
		WithInMemory(true).
		WithValueThreshold(t.ValueThreshold)
}

type BlobStoreBadgerOptionFunc func(*BlobStoreBadger)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(
	registry prometheus.Registerer,
) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.promRegistry = registry
	}
}

// WithDataDir specifies the data directory. The journal is kept in memory
// when it is empty
func WithDataDir(dataDir string) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.dataDir = dataDir
	}
}

// WithTuning specifies the store sizing and GC interval
func WithTuning(tuning Tuning) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.tuning = tuning
	}
}
