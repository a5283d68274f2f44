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
package messiah

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/blinklabs-io/messiah/ledger"
	"github.com/blinklabs-io/messiah/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func startTestNode(t *testing.T, opts ...ConfigOptionFunc) (*Node, <-chan error) {
	t.Helper()
	base := []ConfigOptionFunc{
		WithApiAddress("127.0.0.1:0"),
		WithPrometheusRegistry(prometheus.NewRegistry()),
		WithClock(
			ledger.NewManualClock(
				time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
			),
		),
	}
	n, err := New(NewConfig(append(base, opts...)...))
	require.NoError(t, err)
	errCh := make(chan error, 1)
	go func() {
		errCh <- n.Run(context.Background())
	}()
	require.Eventually(
		t,
		func() bool { return n.LedgerState() != nil },
		5*time.Second,
		10*time.Millisecond,
	)
	return n, errCh
}

func waitRun(t *testing.T, errCh <-chan error) {
	t.Helper()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("node did not stop")
	}
}

func TestNodeRunStop(t *testing.T) {
	logBuf := &lockedBuffer{}
	logger := slog.New(
		slog.NewJSONHandler(logBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	n, errCh := startTestNode(
		t,
		WithLogger(logger),
		WithMetricsAddress("127.0.0.1:0"),
	)
	id, err := n.LedgerState().Identify(
		context.Background(),
		common.HexToAddress("0x01"),
	)
	require.NoError(t, err)
	assert.Equal(t, ledger.AccountId(1), id)
	// Committed operations are logged from the journal event subscription
	require.Eventually(
		t,
		func() bool {
			return bytes.Contains(
				[]byte(logBuf.String()),
				[]byte("ledger operation committed"),
			)
		},
		5*time.Second,
		10*time.Millisecond,
	)
	require.NoError(t, n.Stop())
	waitRun(t, errCh)
	// Stop is idempotent
	require.NoError(t, n.Stop())
}

func TestNodeStopsOnContextCancel(t *testing.T) {
	n, err := New(NewConfig(WithApiAddress("127.0.0.1:0")))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- n.Run(ctx)
	}()
	require.Eventually(
		t,
		func() bool { return n.LedgerState() != nil },
		5*time.Second,
		10*time.Millisecond,
	)
	cancel()
	waitRun(t, errCh)
	require.NoError(t, n.Stop())
}

func TestNodeUsesConfiguredTokenIssuer(t *testing.T) {
	issuer := token.NewMemory(0)
	n, errCh := startTestNode(
		t,
		WithTokenIssuer(issuer),
		WithFreezeDuration(time.Minute),
		WithClaimAmount(7),
	)
	ctx := context.Background()
	clock := n.config.clock.(*ledger.ManualClock)
	clock.Advance(time.Minute)
	require.NoError(t, n.LedgerState().EndFreezing(ctx))
	caller := common.HexToAddress("0x02")
	require.NoError(t, n.LedgerState().ClaimToken(ctx, caller))
	assert.Equal(t, uint64(7), issuer.BalanceOf(caller))
	require.NoError(t, n.Stop())
	waitRun(t, errCh)
}

func TestNodeRunAfterStop(t *testing.T) {
	n, err := New(NewConfig(WithApiAddress("127.0.0.1:0")))
	require.NoError(t, err)
	require.NoError(t, n.Stop())
	require.Error(t, n.Run(context.Background()))
}
