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

// Package api implements the REST API of the governance ledger
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	CallerHeader    = "X-Messiah-Caller"
	RequestIdHeader = "X-Request-Id"
)

type Config struct {
	ListenAddress string
}

// API is the REST API server
type API struct {
	config     Config
	logger     *slog.Logger
	ledger     Ledger
	httpServer *http.Server
	stopCh     chan struct{}
	mu         sync.Mutex
}

func New(
	cfg Config,
	ledger Ledger,
	logger *slog.Logger,
) *API {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":8080"
	}
	return &API{
		config: cfg,
		logger: logger,
		ledger: ledger,
	}
}

// Handler returns the HTTP handler serving the API routes
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("GET /api/v0/proposals", a.handleGetProposals)
	mux.HandleFunc("POST /api/v0/proposals", a.handlePropose)
	mux.HandleFunc("GET /api/v0/proposals/{id}", a.handleGetProposal)
	mux.HandleFunc("POST /api/v0/proposals/{id}/votes", a.handleVoteForProposal)
	mux.HandleFunc("POST /api/v0/proposals/{id}/end-voting", a.handleEndVoting)
	mux.HandleFunc("POST /api/v0/proposals/{id}/cancel", a.handleCancelProposal)
	mux.HandleFunc("GET /api/v0/proposals/{id}/submissions", a.handleGetSubmissions)
	mux.HandleFunc("POST /api/v0/proposals/{id}/submissions", a.handleSubmit)
	mux.HandleFunc("GET /api/v0/proposals/{id}/winner", a.handleResolveWinner)
	mux.HandleFunc("GET /api/v0/submissions/{id}", a.handleGetSubmission)
	mux.HandleFunc("POST /api/v0/submissions/{id}/votes", a.handleVoteForSubmission)
	mux.HandleFunc("POST /api/v0/submissions/{id}/claim", a.handleClaimReward)
	mux.HandleFunc("GET /api/v0/tallies/{kind}/{id}", a.handleTallyOf)
	mux.HandleFunc("GET /api/v0/ballots/{kind}/{id}/{voter}", a.handleBallotOf)
	mux.HandleFunc("GET /api/v0/accounts/{address}", a.handleAccount)
	mux.HandleFunc("GET /api/v0/freeze", a.handleFreezeStatus)
	mux.HandleFunc("POST /api/v0/freeze/votes", a.handleVoteBlacklist)
	mux.HandleFunc("POST /api/v0/freeze/end", a.handleEndFreezing)
	mux.HandleFunc("GET /api/v0/blacklist", a.handleGetBlacklist)
	mux.HandleFunc("POST /api/v0/token/claim", a.handleClaimToken)
	mux.HandleFunc("GET /api/v0/journal", a.handleJournal)
	return a.withRequestId(mux)
}

// withRequestId tags every response with a request id, reusing the one sent
// by the client if present
func (a *API) withRequestId(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqId := r.Header.Get(RequestIdHeader)
		if reqId == "" {
			reqId = uuid.NewString()
		}
		w.Header().Set(RequestIdHeader, reqId)
		a.logger.Debug(
			"request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", reqId,
		)
		next.ServeHTTP(w, r)
	})
}

// Start starts the HTTP server in a background goroutine. The server is shut
// down when ctx is cancelled or Stop is called
func (a *API) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.httpServer != nil {
		a.mu.Unlock()
		return errors.New("server already started")
	}
	server := &http.Server{
		Addr:              a.config.ListenAddress,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		a.mu.Unlock()
		return fmt.Errorf("failed to listen for API server: %w", err)
	}
	stopCh := make(chan struct{})
	a.httpServer = server
	a.stopCh = stopCh
	a.mu.Unlock()

	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(
				"API server error",
				"error", err,
			)
		}
	}()
	a.logger.Info(
		"API listener started on " + ln.Addr().String(),
	)

	// Monitor context for cancellation
	go func() {
		select {
		case <-ctx.Done():
		case <-stopCh:
			return
		}
		a.logger.Debug(
			"context cancelled, shutting down API server",
		)
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			30*time.Second,
		)
		defer cancel()
		//nolint:contextcheck
		if err := a.Stop(shutdownCtx); err != nil {
			a.logger.Error(
				"failed to shutdown API server on context cancellation",
				"error", err,
			)
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server
func (a *API) Stop(ctx context.Context) error {
	a.mu.Lock()
	srv := a.httpServer
	stopCh := a.stopCh
	a.httpServer = nil
	a.stopCh = nil
	a.mu.Unlock()

	if srv == nil {
		return nil
	}
	close(stopCh)
	a.logger.Debug("shutting down API server")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown API server: %w", err)
	}
	return nil
}
