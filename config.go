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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/messiah/database/plugin/blob"
	"github.com/blinklabs-io/messiah/ledger"
	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	promRegistry    prometheus.Registerer
	logger          *slog.Logger
	token           ledger.TokenIssuer
	clock           ledger.Clock
	blobTuning      blob.Tuning
	dataDir         string
	apiAddress      string
	metricsAddress  string
	freezeDuration  time.Duration
	votingPeriod    time.Duration
	shutdownTimeout time.Duration
	pageSize        int
	claimAmount     uint64
	treasury        uint64
	tracing         bool
	tracingStdout   bool
}

func (n *Node) configValidate() error {
	if n.config.apiAddress == "" {
		return errors.New("no API listen address defined")
	}
	if n.config.freezeDuration < 0 {
		return fmt.Errorf(
			"invalid freeze duration: %s",
			n.config.freezeDuration,
		)
	}
	if n.config.votingPeriod < 0 {
		return fmt.Errorf(
			"invalid voting period: %s",
			n.config.votingPeriod,
		)
	}
	if n.config.pageSize < 0 {
		return fmt.Errorf("invalid page size: %d", n.config.pageSize)
	}
	if err := n.config.blobTuning.Validate(); err != nil {
		return fmt.Errorf("invalid journal store tuning: %w", err)
	}
	if n.config.shutdownTimeout < 0 {
		return fmt.Errorf(
			"invalid shutdown timeout: %s",
			n.config.shutdownTimeout,
		)
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new messiah config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:     slog.New(slog.NewJSONHandler(io.Discard, nil)),
		apiAddress: ":8080",
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to. In most cases, prometheus.DefaultRegistry would be
// a good choice to get metrics working
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithApiAddress specifies the listen address for the REST API
func WithApiAddress(address string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiAddress = address
	}
}

// WithMetricsAddress specifies the listen address for the prometheus metrics endpoint. The endpoint is disabled when empty
func WithMetricsAddress(address string) ConfigOptionFunc {
	return func(c *Config) {
		c.metricsAddress = address
	}
}

// WithFreezeDuration specifies how long the blacklist freeze period lasts after the ledger is first created
func WithFreezeDuration(duration time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.freezeDuration = duration
	}
}

// WithVotingPeriod specifies the voting window of new proposals
func WithVotingPeriod(period time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.votingPeriod = period
	}
}

// WithPageSize specifies the page size for proposal and submission listings
func WithPageSize(pageSize int) ConfigOptionFunc {
	return func(c *Config) {
		c.pageSize = pageSize
	}
}

// WithClaimAmount specifies how many governance tokens are minted per token claim
func WithClaimAmount(amount uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.claimAmount = amount
	}
}

// WithTreasury specifies the reward treasury balance of the built-in token issuer. It is ignored when WithTokenIssuer is used
func WithTreasury(amount uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.treasury = amount
	}
}

// WithTokenIssuer specifies the token issuer used to mint governance tokens and pay rewards
func WithTokenIssuer(issuer ledger.TokenIssuer) ConfigOptionFunc {
	return func(c *Config) {
		c.token = issuer
	}
}

// WithClock specifies the clock used for time-gated transitions. This is mostly useful for testing
func WithClock(clock ledger.Clock) ConfigOptionFunc {
	return func(c *Config) {
		c.clock = clock
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. The default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithBlobTuning specifies the cache sizes, table sizes and GC interval of the on-disk journal store. Zero fields keep the defaults
func WithBlobTuning(tuning blob.Tuning) ConfigOptionFunc {
	return func(c *Config) {
		c.blobTuning = tuning
	}
}
