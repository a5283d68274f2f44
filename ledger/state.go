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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/messiah/database"
	"github.com/blinklabs-io/messiah/database/models"
	"github.com/blinklabs-io/messiah/database/plugin/blob"
	"github.com/blinklabs-io/messiah/event"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultFreezeDuration = 7 * 24 * time.Hour
	DefaultVotingPeriod   = 7 * 24 * time.Hour
	DefaultPageSize       = 10
	DefaultClaimAmount    = 100
)

var tracer = otel.Tracer("github.com/blinklabs-io/messiah/ledger")

type LedgerStateConfig struct {
	Logger         *slog.Logger
	DataDir        string
	EventBus       *event.EventBus
	PromRegistry   prometheus.Registerer
	Token          TokenIssuer
	Clock          Clock
	FreezeDuration time.Duration
	VotingPeriod   time.Duration
	PageSize       int
	ClaimAmount    uint64
	BlobTuning     blob.Tuning
}

type LedgerState struct {
	sync.RWMutex
	config      LedgerStateConfig
	db          *database.Database
	metrics     stateMetrics
	identity    *IdentityRegistry
	ballots     *BallotBox
	freeze      *FreezeGate
	proposals   *ProposalLedger
	submissions *SubmissionLedger
	rewards     *RewardDistributor
}

func NewLedgerState(cfg LedgerStateConfig) (*LedgerState, error) {
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.Token == nil {
		return nil, errors.New("no token issuer configured")
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.FreezeDuration <= 0 {
		cfg.FreezeDuration = DefaultFreezeDuration
	}
	if cfg.VotingPeriod <= 0 {
		cfg.VotingPeriod = DefaultVotingPeriod
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.ClaimAmount == 0 {
		cfg.ClaimAmount = DefaultClaimAmount
	}
	ls := &LedgerState{
		config: cfg,
	}
	// Init metrics
	ls.metrics.init(cfg.PromRegistry)
	// Load database
	db, err := database.New(&database.Config{
		Logger:       cfg.Logger,
		PromRegistry: cfg.PromRegistry,
		DataDir:      cfg.DataDir,
		BlobTuning:   cfg.BlobTuning,
	})
	if db == nil {
		if err == nil {
			err = errors.New("empty database returned")
		}
		ls.config.Logger.Error(
			"failed to create database",
			"error", err,
			"component", "ledger",
		)
		return nil, err
	}
	ls.db = db
	if err != nil {
		var dbErr database.CommitTimestampError
		if !errors.As(err, &dbErr) {
			_ = db.Close()
			return nil, err
		}
		ls.config.Logger.Warn(
			"database initialization error, needs recovery",
			"error", err,
			"component", "ledger",
		)
		if err := db.RecoverCommitTimestampConflict(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to recover database: %w", err)
		}
	}
	// Components
	ls.identity = &IdentityRegistry{db: db}
	ls.ballots = &BallotBox{db: db}
	ls.freeze = &FreezeGate{
		db:          db,
		identity:    ls.identity,
		ballots:     ls.ballots,
		claimAmount: cfg.ClaimAmount,
		pageSize:    cfg.PageSize,
		token:       cfg.Token,
	}
	ls.proposals = &ProposalLedger{
		db:           db,
		identity:     ls.identity,
		ballots:      ls.ballots,
		votingPeriod: cfg.VotingPeriod,
		pageSize:     cfg.PageSize,
	}
	ls.submissions = &SubmissionLedger{
		db:        db,
		identity:  ls.identity,
		ballots:   ls.ballots,
		proposals: ls.proposals,
		pageSize:  cfg.PageSize,
	}
	ls.rewards = &RewardDistributor{
		db:          db,
		proposals:   ls.proposals,
		submissions: ls.submissions,
		token:       cfg.Token,
	}
	if err := ls.initFreeze(); err != nil {
		_ = db.Close()
		return nil, err
	}
	ls.refreshGauges()
	return ls, nil
}

// initFreeze opens the freeze period on first start. An existing freeze
// period is left untouched
func (ls *LedgerState) initFreeze() error {
	return ls.write(context.Background(), "init", func(op *operation) error {
		state, err := ls.db.GetFreezeState(op.txn)
		if err != nil {
			return err
		}
		if state != nil {
			return nil
		}
		endsAt := op.now.Add(ls.config.FreezeDuration).Unix()
		if err := ls.db.SetFreezeState(models.NewFreezeState(endsAt), op.txn); err != nil {
			return err
		}
		ls.config.Logger.Info(
			"freeze period started",
			"ends_at", time.Unix(endsAt, 0).UTC(),
			"component", "ledger",
		)
		return op.record(database.JournalEntry{
			Type:   JournalFreezeStarted,
			Amount: uint64(endsAt),
		})
	})
}

// Close releases the underlying database
func (ls *LedgerState) Close() error {
	ls.Lock()
	defer ls.Unlock()
	return ls.db.Close()
}

// Database returns the underlying database
func (ls *LedgerState) Database() *database.Database {
	return ls.db
}

// operation carries the state of a single ledger write
type operation struct {
	ctx         context.Context
	db          *database.Database
	txn         *database.Txn
	now         time.Time
	entries     []database.JournalEntry
	afterCommit []func(context.Context) error
}

// record appends an entry to the journal as part of the operation
func (o *operation) record(entry database.JournalEntry) error {
	entry.Timestamp = o.now.Unix()
	if err := o.db.AppendJournal(&entry, o.txn); err != nil {
		return err
	}
	o.entries = append(o.entries, entry)
	return nil
}

// onCommit schedules a call to run once the operation has been committed
func (o *operation) onCommit(fn func(context.Context) error) {
	o.afterCommit = append(o.afterCommit, fn)
}

// write runs fn in a read-write transaction. Journal entries are published
// and after-commit calls are run only once the transaction has committed
func (ls *LedgerState) write(
	ctx context.Context,
	name string,
	fn func(*operation) error,
) error {
	ls.Lock()
	defer ls.Unlock()
	ctx, span := tracer.Start(ctx, "ledger."+name)
	defer span.End()
	start := time.Now()
	op := &operation{
		ctx: ctx,
		db:  ls.db,
		now: ls.config.Clock.Now(),
	}
	err := ls.db.Transaction(true).Do(func(txn *database.Txn) error {
		op.txn = txn
		return fn(op)
	})
	if err == nil {
		for _, entry := range op.entries {
			ls.publish(entry)
		}
		for _, afterFn := range op.afterCommit {
			if afterErr := afterFn(ctx); afterErr != nil {
				err = errors.Join(err, afterErr)
			}
		}
		ls.refreshGauges()
	}
	ls.metrics.observe(name, err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if class := Classify(err); class == ErrorClassInternal ||
			class == ErrorClassTransfer {
			ls.config.Logger.Error(
				"ledger operation failed",
				"operation", name,
				"error", err,
				"component", "ledger",
			)
		} else {
			ls.config.Logger.Debug(
				"ledger operation rejected",
				"operation", name,
				"error", err,
				"component", "ledger",
			)
		}
	}
	return err
}

// read runs fn in a read-only transaction
func (ls *LedgerState) read(
	ctx context.Context,
	name string,
	fn func(*database.Txn) error,
) error {
	ls.RLock()
	defer ls.RUnlock()
	_, span := tracer.Start(ctx, "ledger."+name)
	defer span.End()
	txn := ls.db.Transaction(false)
	defer txn.Release()
	err := fn(txn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (ls *LedgerState) publish(entry database.JournalEntry) {
	if ls.config.EventBus == nil {
		return
	}
	ls.config.EventBus.PublishAsync(
		JournalEventType,
		event.NewEvent(JournalEventType, entry),
	)
}

// Journal returns up to limit committed journal entries starting at from
func (ls *LedgerState) Journal(
	ctx context.Context,
	from uint64,
	limit int,
) ([]database.JournalEntry, error) {
	var ret []database.JournalEntry
	err := ls.read(ctx, "journal", func(txn *database.Txn) error {
		var err error
		ret, err = ls.db.Journal(from, limit, txn)
		return err
	})
	return ret, err
}

// pageOffset converts a 1-based page number into a row offset. The second
// return value is false when the page lies beyond any reachable row
func pageOffset(page int, pageSize int) (int, bool, error) {
	if page < 1 {
		return 0, false, ErrInvalidPage
	}
	maxInt := int(^uint(0) >> 1)
	if page-1 > maxInt/pageSize {
		return 0, false, nil
	}
	return (page - 1) * pageSize, true, nil
}
