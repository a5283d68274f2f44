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
package node

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/blinklabs-io/messiah/database/plugin/blob"
	"github.com/blinklabs-io/messiah/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenAddress(t *testing.T) {
	assert.Equal(t, "0.0.0.0:8080", listenAddress("0.0.0.0", 8080))
	assert.Equal(t, "[::1]:9000", listenAddress("::1", 9000))
}

func TestNodeConfigRejectsBadDuration(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	_, err := NodeConfig(&config.Config{FreezeDuration: "later"}, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid freezeDuration")
}

func TestNodeConfig(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	_, err := NodeConfig(
		&config.Config{
			BindAddr:    "127.0.0.1",
			ApiPort:     8080,
			MetricsPort: 0,
			PageSize:    5,
			ClaimAmount: 10,
		},
		logger,
	)
	require.NoError(t, err)
}

func TestBlobTuning(t *testing.T) {
	cfg := &config.Config{
		BadgerBlockCacheSize:   16 << 20,
		BadgerIndexCacheSize:   8 << 20,
		BadgerValueLogFileSize: 32 << 20,
		BadgerMemTableSize:     4 << 20,
		BadgerValueThreshold:   1024,
	}
	got := blobTuning(cfg, config.Durations{BadgerGcInterval: time.Minute})
	assert.Equal(
		t,
		blob.Tuning{
			BlockCacheSize:   16 << 20,
			IndexCacheSize:   8 << 20,
			ValueLogFileSize: 32 << 20,
			MemTableSize:     4 << 20,
			ValueThreshold:   1024,
			GcInterval:       time.Minute,
		},
		got,
	)
	require.NoError(t, got.Validate())
	// A zero interval turns GC off
	got = blobTuning(cfg, config.Durations{})
	assert.Negative(t, got.GcInterval)
}

func TestNodeConfigRejectsBadGcInterval(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	_, err := NodeConfig(&config.Config{BadgerGcInterval: "-1m"}, logger)
	require.ErrorContains(t, err, "invalid badgerGcInterval")
}
