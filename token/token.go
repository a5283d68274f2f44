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

// Package token provides token issuers for the ledger
package token

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var ErrInsufficientTreasury = errors.New("insufficient treasury balance")

// Memory keeps balances in memory. Transfers are paid out of a treasury that
// is funded up front
type Memory struct {
	mu       sync.Mutex
	balances map[common.Address]uint64
	treasury uint64
	minted   uint64
	failNext error
}

func NewMemory(treasury uint64) *Memory {
	return &Memory{
		balances: make(map[common.Address]uint64),
		treasury: treasury,
	}
}

func (m *Memory) Mint(_ context.Context, to common.Address, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	if err := m.credit(to, amount); err != nil {
		return err
	}
	m.minted += amount
	return nil
}

func (m *Memory) Transfer(_ context.Context, to common.Address, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	if m.treasury < amount {
		return fmt.Errorf(
			"%w: have %d, need %d",
			ErrInsufficientTreasury,
			m.treasury,
			amount,
		)
	}
	if err := m.credit(to, amount); err != nil {
		return err
	}
	m.treasury -= amount
	return nil
}

func (m *Memory) credit(to common.Address, amount uint64) error {
	if m.balances[to] > math.MaxUint64-amount {
		return fmt.Errorf("balance overflow for %s", to.Hex())
	}
	m.balances[to] += amount
	return nil
}

func (m *Memory) takeFailure() error {
	err := m.failNext
	m.failNext = nil
	return err
}

// FailNext makes the next Mint or Transfer call return err
func (m *Memory) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

func (m *Memory) BalanceOf(addr common.Address) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[addr]
}

func (m *Memory) Treasury() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.treasury
}

func (m *Memory) Minted() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.minted
}

// Logging wraps another issuer and logs every call
type Logging struct {
	next   Issuer
	logger *slog.Logger
}

// Issuer matches the ledger's token collaborator
type Issuer interface {
	Mint(ctx context.Context, to common.Address, amount uint64) error
	Transfer(ctx context.Context, to common.Address, amount uint64) error
}

func NewLogging(next Issuer, logger *slog.Logger) *Logging {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Logging{
		next:   next,
		logger: logger,
	}
}

func (l *Logging) Mint(ctx context.Context, to common.Address, amount uint64) error {
	err := l.next.Mint(ctx, to, amount)
	l.log(ctx, "mint", to, amount, err)
	return err
}

func (l *Logging) Transfer(ctx context.Context, to common.Address, amount uint64) error {
	err := l.next.Transfer(ctx, to, amount)
	l.log(ctx, "transfer", to, amount, err)
	return err
}

func (l *Logging) log(
	ctx context.Context,
	action string,
	to common.Address,
	amount uint64,
	err error,
) {
	if err != nil {
		l.logger.ErrorContext(
			ctx,
			"token "+action+" failed",
			"to", to.Hex(),
			"amount", amount,
			"error", err,
			"component", "token",
		)
		return
	}
	l.logger.InfoContext(
		ctx,
		"token "+action,
		"to", to.Hex(),
		"amount", amount,
		"component", "token",
	)
}
