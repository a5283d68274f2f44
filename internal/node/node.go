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
	"context"
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/blinklabs-io/messiah"
	"github.com/blinklabs-io/messiah/database/plugin/blob"
	"github.com/blinklabs-io/messiah/internal/config"
	"github.com/prometheus/client_golang/prometheus"
)

// NodeConfig translates the loaded configuration into node options
func NodeConfig(cfg *config.Config, logger *slog.Logger) (messiah.Config, error) {
	durations, err := cfg.ParseDurations()
	if err != nil {
		return messiah.Config{}, err
	}
	opts := []messiah.ConfigOptionFunc{
		messiah.WithLogger(logger),
		messiah.WithDatabasePath(cfg.DatabasePath),
		messiah.WithApiAddress(listenAddress(cfg.BindAddr, cfg.ApiPort)),
		messiah.WithFreezeDuration(durations.FreezeDuration),
		messiah.WithVotingPeriod(durations.VotingPeriod),
		messiah.WithShutdownTimeout(durations.ShutdownTimeout),
		messiah.WithPageSize(cfg.PageSize),
		messiah.WithClaimAmount(cfg.ClaimAmount),
		messiah.WithTreasury(cfg.Treasury),
		messiah.WithTracing(cfg.Tracing),
		messiah.WithTracingStdout(cfg.TracingStdout),
		messiah.WithBlobTuning(blobTuning(cfg, durations)),
		// Enable metrics with default prometheus registry
		messiah.WithPrometheusRegistry(prometheus.DefaultRegisterer),
	}
	if cfg.MetricsPort > 0 {
		opts = append(
			opts,
			messiah.WithMetricsAddress(
				listenAddress(cfg.BindAddr, cfg.MetricsPort),
			),
		)
	}
	return messiah.NewConfig(opts...), nil
}

// blobTuning maps the badger settings onto the journal store sizing
func blobTuning(cfg *config.Config, durations config.Durations) blob.Tuning {
	ret := blob.Tuning{
		BlockCacheSize:   cfg.BadgerBlockCacheSize,
		IndexCacheSize:   cfg.BadgerIndexCacheSize,
		ValueLogFileSize: cfg.BadgerValueLogFileSize,
		MemTableSize:     cfg.BadgerMemTableSize,
		ValueThreshold:   cfg.BadgerValueThreshold,
		GcInterval:       durations.BadgerGcInterval,
	}
	if ret.GcInterval == 0 {
		ret.GcInterval = -1
	}
	return ret
}

func listenAddress(host string, port uint) string {
	return net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10))
}

func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	nodeCfg, err := NodeConfig(cfg, logger)
	if err != nil {
		return err
	}
	n, err := messiah.New(nodeCfg)
	if err != nil {
		return err
	}
	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	runErr := n.Run(signalCtx)
	if runErr != nil {
		logger.Error("node error", "error", runErr)
	} else {
		logger.Info("signal received, initiating graceful shutdown")
	}
	if err := n.Stop(); err != nil {
		logger.Error("shutdown errors occurred", "error", err)
		if runErr == nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}
	logger.Info("shutdown complete")
	return nil
}
