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
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/blinklabs-io/messiah/api"
	"github.com/blinklabs-io/messiah/database"
	"github.com/blinklabs-io/messiah/event"
	"github.com/blinklabs-io/messiah/ledger"
	"github.com/blinklabs-io/messiah/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

type Node struct {
	eventBus      *event.EventBus
	ledgerState   *ledger.LedgerState
	api           *api.API
	metricsServer *http.Server
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	shutdownOnce  sync.Once
	mu            sync.Mutex
}

func New(cfg Config) (*Node, error) {
	eventBus := event.NewEventBus(cfg.promRegistry, cfg.logger)
	n := &Node{
		config:   cfg,
		eventBus: eventBus,
		done:     make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		eventBus.Stop()
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return n, nil
}

// LedgerState returns the ledger once Run has opened it
func (n *Node) LedgerState() *ledger.LedgerState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledgerState
}

// Run opens the ledger and serves the API and metrics endpoints until ctx is
// cancelled, Stop is called, or a server fails
func (n *Node) Run(ctx context.Context) error {
	select {
	case <-n.done:
		return errors.New("node already stopped")
	default:
	}
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(ctx); err != nil {
			return err
		}
	}
	// Token issuer
	issuer := n.config.token
	if issuer == nil {
		issuer = token.NewLogging(
			token.NewMemory(n.config.treasury),
			n.config.logger,
		)
	}
	// Load state
	state, err := ledger.NewLedgerState(
		ledger.LedgerStateConfig{
			Logger:         n.config.logger,
			DataDir:        n.config.dataDir,
			EventBus:       n.eventBus,
			PromRegistry:   n.config.promRegistry,
			Token:          issuer,
			Clock:          n.config.clock,
			FreezeDuration: n.config.freezeDuration,
			VotingPeriod:   n.config.votingPeriod,
			PageSize:       n.config.pageSize,
			ClaimAmount:    n.config.claimAmount,
			BlobTuning:     n.config.blobTuning,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to load ledger state: %w", err)
	}
	n.mu.Lock()
	n.ledgerState = state
	n.mu.Unlock()
	n.eventBus.SubscribeFunc(ledger.JournalEventType, n.handleJournalEvent)

	g, gctx := errgroup.WithContext(ctx)
	// Configure REST API
	apiServer := api.New(
		api.Config{ListenAddress: n.config.apiAddress},
		state,
		n.config.logger,
	)
	n.mu.Lock()
	n.api = apiServer
	n.mu.Unlock()
	if err := apiServer.Start(gctx); err != nil {
		return err
	}
	// Metrics listener
	if n.config.metricsAddress != "" {
		if err := n.startMetrics(g); err != nil {
			return err
		}
	}
	// Wait for shutdown signal
	g.Go(func() error {
		select {
		case <-n.done:
		case <-gctx.Done():
		}
		return nil
	})
	return g.Wait()
}

func (n *Node) startMetrics(g *errgroup.Group) error {
	gatherer := prometheus.DefaultGatherer
	if reg, ok := n.config.promRegistry.(prometheus.Gatherer); ok {
		gatherer = reg
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              n.config.metricsAddress,
		Handler:           mux,
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen for metrics: %w", err)
	}
	n.mu.Lock()
	n.metricsServer = server
	n.mu.Unlock()
	n.config.logger.Info(
		"serving prometheus metrics on "+ln.Addr().String(),
		"component", "node",
	)
	g.Go(func() error {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	return nil
}

func (n *Node) handleJournalEvent(evt event.Event) {
	entry, ok := evt.Data.(database.JournalEntry)
	if !ok {
		return
	}
	n.config.logger.Debug(
		"ledger operation committed",
		"component", "node",
		"seq", entry.Seq,
		"type", entry.Type,
	)
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	// Create shutdown context with timeout (default 30s if not configured)
	shutdownTimeout := 30 * time.Second
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown")

	// Phase 1: Stop accepting new work
	n.config.logger.Debug("shutdown phase 1: stopping new work")

	n.mu.Lock()
	apiServer := n.api
	metricsServer := n.metricsServer
	shutdownFuncs := n.shutdownFuncs
	n.shutdownFuncs = nil
	n.mu.Unlock()
	if apiServer != nil {
		if stopErr := apiServer.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("api shutdown: %w", stopErr))
		}
	}

	if metricsServer != nil {
		if stopErr := metricsServer.Shutdown(ctx); stopErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("metrics server shutdown: %w", stopErr),
			)
		}
	}

	// Phase 2: Flush state and close database
	n.config.logger.Debug("shutdown phase 2: flushing state")

	if ls := n.LedgerState(); ls != nil {
		if closeErr := ls.Close(); closeErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("ledger state close: %w", closeErr),
			)
		}
	}

	// Phase 3: Cleanup resources
	n.config.logger.Debug("shutdown phase 3: cleanup resources")

	// Call registered shutdown functions
	for _, fn := range shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}

	if n.eventBus != nil {
		n.eventBus.Stop()
	}

	n.config.logger.Debug("graceful shutdown complete")
	close(n.done)
	return err
}
