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

package ledger

import (
	"time"

	"github.com/blinklabs-io/messiah/database"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type stateMetrics struct {
	operations  *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	accounts    prometheus.Gauge
	proposals   *prometheus.GaugeVec
	submissions prometheus.Gauge
	blacklisted prometheus.Gauge
	enabled     bool
}

func (m *stateMetrics) init(promRegistry prometheus.Registerer) {
	m.enabled = promRegistry != nil
	promautoFactory := promauto.With(promRegistry)
	m.operations = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messiah_ledger_operations_total",
			Help: "total ledger write operations, by operation and result",
		},
		[]string{"operation", "result"},
	)
	m.latency = promautoFactory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "messiah_ledger_operation_duration_seconds",
			Help:    "latency of ledger write operations",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		},
		[]string{"operation"},
	)
	m.accounts = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "messiah_ledger_accounts",
		Help: "number of registered accounts",
	})
	m.proposals = promautoFactory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "messiah_ledger_proposals",
			Help: "number of proposals, by state",
		},
		[]string{"state"},
	)
	m.submissions = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "messiah_ledger_submissions",
		Help: "number of submissions",
	})
	m.blacklisted = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "messiah_ledger_blacklisted_accounts",
		Help: "number of blacklisted accounts",
	})
}

func (m *stateMetrics) observe(operation string, err error, elapsed time.Duration) {
	m.operations.WithLabelValues(operation, string(Classify(err))).Inc()
	m.latency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// refreshGauges updates the ledger size gauges from the database. The caller
// must hold the ledger lock
func (ls *LedgerState) refreshGauges() {
	if !ls.metrics.enabled {
		return
	}
	txn := ls.db.Transaction(false)
	defer txn.Release()
	if err := ls.updateGauges(txn); err != nil {
		ls.config.Logger.Warn(
			"failed to refresh ledger metrics",
			"error", err,
			"component", "ledger",
		)
	}
}

func (ls *LedgerState) updateGauges(txn *database.Txn) error {
	accounts, err := ls.db.CountAccounts(txn)
	if err != nil {
		return err
	}
	proposals, err := ls.db.CountProposals(txn)
	if err != nil {
		return err
	}
	submissions, err := ls.db.CountSubmissions(txn)
	if err != nil {
		return err
	}
	blacklisted, err := ls.db.CountBlacklisted(txn)
	if err != nil {
		return err
	}
	ls.metrics.accounts.Set(float64(accounts))
	for state := range proposalStateNames {
		ls.metrics.proposals.WithLabelValues(state.String()).
			Set(float64(proposals[uint8(state)]))
	}
	ls.metrics.submissions.Set(float64(submissions))
	ls.metrics.blacklisted.Set(float64(blacklisted))
	return nil
}
