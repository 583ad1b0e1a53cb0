// Package calculator runs every calculator the same way: validate the input,
// compute (through a per calculator memo cache), then hand a record to the
// history store without waiting on it.
package calculator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"frizo/futures_calculator/internal/cache"
	"frizo/futures_calculator/internal/config"
	"frizo/futures_calculator/internal/history"
	"frizo/futures_calculator/internal/kelly"
	"frizo/futures_calculator/internal/logger"
	"frizo/futures_calculator/internal/margin"
	"frizo/futures_calculator/internal/portfolio"
	"frizo/futures_calculator/internal/position"
	"frizo/futures_calculator/internal/pyramid"
	"frizo/futures_calculator/internal/risk"
	"frizo/futures_calculator/internal/target"
	"frizo/futures_calculator/internal/validation"
)

const (
	saveTimeout   = 3 * time.Second
	saveQueueSize = 256
)

var ErrClosed = errors.New("calculator service closed")

// Service stateless apart from the memo caches and the save queue.
type Service struct {
	validator *validation.Validator
	opts      position.Options
	tiers     margin.Tiers

	kellyFraction    float64
	kellyMaxFraction float64

	store history.Store
	log   *logger.Logger
	memos *memos

	// one worker drains saves so records reach the store in call order
	saves     chan saveJob
	saverDone chan struct{}
	pending   sync.WaitGroup
	lastStamp time.Time
	mu        sync.RWMutex
	closed    bool
}

type saveJob struct {
	ctx context.Context
	rec history.Record
}

type memos struct {
	position    *cache.Memo[position.Snapshot]
	addPosition *cache.Memo[position.AddResult]
	pyramid     *cache.Memo[pyramid.Plan]
	portfolio   *cache.Memo[portfolio.Result]
	target      *cache.Memo[target.Result]
	breakEven   *cache.Memo[BreakEvenResult]
	entryPrice  *cache.Memo[position.EntrySummary]
	maxPosition *cache.Memo[margin.MaxPositionResult]
	kelly       *cache.Memo[kelly.Result]
	risk        *cache.Memo[risk.Analysis]
}

func newMemos(size int) (*memos, error) {
	var err error
	m := &memos{}
	// stop at the first failure, later ones would fail the same way
	if m.position, err = cache.New[position.Snapshot]("position", size); err != nil {
		return nil, err
	}
	if m.addPosition, err = cache.New[position.AddResult]("add_position", size); err != nil {
		return nil, err
	}
	if m.pyramid, err = cache.New[pyramid.Plan]("pyramid", size); err != nil {
		return nil, err
	}
	if m.portfolio, err = cache.New[portfolio.Result]("portfolio", size); err != nil {
		return nil, err
	}
	if m.target, err = cache.New[target.Result]("target", size); err != nil {
		return nil, err
	}
	if m.breakEven, err = cache.New[BreakEvenResult]("break_even", size); err != nil {
		return nil, err
	}
	if m.entryPrice, err = cache.New[position.EntrySummary]("entry_price", size); err != nil {
		return nil, err
	}
	if m.maxPosition, err = cache.New[margin.MaxPositionResult]("max_position", size); err != nil {
		return nil, err
	}
	if m.kelly, err = cache.New[kelly.Result]("kelly", size); err != nil {
		return nil, err
	}
	if m.risk, err = cache.New[risk.Analysis]("risk", size); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *memos) stats() []cache.Stats {
	return []cache.Stats{
		m.position.Stats(),
		m.addPosition.Stats(),
		m.pyramid.Stats(),
		m.portfolio.Stats(),
		m.target.Stats(),
		m.breakEven.Stats(),
		m.entryPrice.Stats(),
		m.maxPosition.Stats(),
		m.kelly.Stats(),
		m.risk.Stats(),
	}
}

// New store and log may be nil, history is then dropped and logs go to the
// default logger.
func New(cfg config.CalculatorConfig, store history.Store, log *logger.Logger) (*Service, error) {
	if store == nil {
		store = history.NopStore{}
	}
	if log == nil {
		log = logger.Default()
	}

	m, err := newMemos(cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	opts := position.Options{
		MaintenanceMarginRate: cfg.MaintenanceMarginRate,
		Thresholds:            cfg.RiskThresholds,
	}
	if cfg.TieredMaintenance {
		opts.MaintenanceRate = margin.DefaultTiers.Rate
	}

	s := &Service{
		validator:        validation.New(cfg.MaxLeverage),
		opts:             opts,
		tiers:            margin.DefaultTiers,
		kellyFraction:    cfg.KellyFraction,
		kellyMaxFraction: cfg.KellyMaxFraction,
		store:            store,
		log:              log,
		memos:            m,
		saves:            make(chan saveJob, saveQueueSize),
		saverDone:        make(chan struct{}),
	}
	go s.saveLoop()
	return s, nil
}

// Options position options every calculator shares
func (s *Service) Options() position.Options {
	return s.opts
}

// CacheStats one entry per calculator
func (s *Service) CacheStats() []cache.Stats {
	return s.memos.stats()
}

// invalid nil when errs is empty, otherwise errs itself so callers can
// errors.As into validation.Errors.
func invalid(kind history.Kind, errs validation.Errors) error {
	if errs.OK() {
		return nil
	}
	return fmt.Errorf("%s: %w", kind, errs)
}

// record stamps the calculation and queues it for the store. Failures are
// logged, never returned.
func (s *Service) record(ctx context.Context, kind history.Kind, params, result interface{}) {
	rec, err := history.NewRecord(kind, params, result)
	if err != nil {
		s.log.Warn("encode history record failed", "kind", kind, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	// strictly increasing, so equal clock readings keep call order
	now := time.Now()
	if !now.After(s.lastStamp) {
		now = s.lastStamp.Add(time.Nanosecond)
	}
	s.lastStamp = now
	rec = history.Stamp(rec, now)

	s.pending.Add(1)
	select {
	case s.saves <- saveJob{ctx: context.WithoutCancel(ctx), rec: rec}:
	default:
		s.pending.Done()
		s.log.Warn("history queue full, record dropped", "kind", kind, "id", rec.ID)
	}
}

func (s *Service) saveLoop() {
	defer close(s.saverDone)
	for job := range s.saves {
		s.save(job)
		s.pending.Done()
	}
}

func (s *Service) save(job saveJob) {
	ctx, cancel := context.WithTimeout(job.ctx, saveTimeout)
	defer cancel()

	id, err := s.store.Save(ctx, job.rec)
	if err != nil {
		s.log.Warn("save history record failed", "kind", job.rec.Kind, "error", err)
		return
	}
	s.log.Debug("history record saved", "kind", job.rec.Kind, "id", id)
}

// Flush waits for queued saves.
func (s *Service) Flush() {
	s.pending.Wait()
}

// Close stops new saves and waits for the queued ones.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.saves)
	s.mu.Unlock()

	<-s.saverDone
	return nil
}

// History newest first
func (s *Service) History(ctx context.Context, limit int) ([]history.Record, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	return s.store.List(ctx, limit)
}

func (s *Service) DeleteRecord(ctx context.Context, id string) error {
	if s.isClosed() {
		return ErrClosed
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) ClearHistory(ctx context.Context) error {
	if s.isClosed() {
		return ErrClosed
	}
	return s.store.Clear(ctx)
}

func (s *Service) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
