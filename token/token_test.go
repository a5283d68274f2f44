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

package token_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/blinklabs-io/messiah/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func TestMemoryMint(t *testing.T) {
	m := token.NewMemory(0)
	require.NoError(t, m.Mint(context.Background(), alice, 100))
	require.NoError(t, m.Mint(context.Background(), alice, 50))
	assert.Equal(t, uint64(150), m.BalanceOf(alice))
	assert.Equal(t, uint64(150), m.Minted())
	assert.Equal(t, uint64(0), m.BalanceOf(bob))
}

func TestMemoryTransfer(t *testing.T) {
	m := token.NewMemory(500)
	require.NoError(t, m.Transfer(context.Background(), bob, 200))
	assert.Equal(t, uint64(200), m.BalanceOf(bob))
	assert.Equal(t, uint64(300), m.Treasury())

	err := m.Transfer(context.Background(), bob, 301)
	require.ErrorIs(t, err, token.ErrInsufficientTreasury)
	assert.Equal(t, uint64(200), m.BalanceOf(bob))
	assert.Equal(t, uint64(300), m.Treasury())
}

func TestMemoryFailNext(t *testing.T) {
	m := token.NewMemory(0)
	errTest := errors.New("issuer offline")
	m.FailNext(errTest)
	require.ErrorIs(t, m.Mint(context.Background(), alice, 1), errTest)
	assert.Equal(t, uint64(0), m.BalanceOf(alice))
	// Only the next call fails
	require.NoError(t, m.Mint(context.Background(), alice, 1))
	assert.Equal(t, uint64(1), m.BalanceOf(alice))
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	m := token.NewMemory(10)
	l := token.NewLogging(m, logger)

	require.NoError(t, l.Mint(context.Background(), alice, 5))
	assert.Contains(t, buf.String(), `"msg":"token mint"`)
	assert.Contains(t, buf.String(), alice.Hex())

	buf.Reset()
	require.Error(t, l.Transfer(context.Background(), bob, 11))
	assert.Contains(t, buf.String(), `"msg":"token transfer failed"`)
	assert.Equal(t, uint64(5), m.BalanceOf(alice))
}
