// Package daemon provides the long-running background ledger monitor service.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/fincompass/internal/model"
	"github.com/theirongolddev/fincompass/internal/pipeline"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Config controls the daemon runtime behavior.
type Config struct {
	DBPath       string
	Params       pipeline.Params
	Interval     time.Duration
	Addr         string
	EventsBuffer int
}

// Snapshot is a compact ledger state for status and event payloads.
type Snapshot struct {
	At               time.Time        `json:"at"`
	CutOff           string           `json:"cut_off,omitempty"`
	LedgerDays       int              `json:"ledger_days"`
	Entries          int              `json:"entries"`
	Payouts          int              `json:"payouts"`
	Unattributed     int              `json:"unattributed_payouts"`
	BankBalance      decimal.Decimal  `json:"bank_balance"`
	CumulativeProfit decimal.Decimal  `json:"cumulative_profit"`
	Prediction       model.Prediction `json:"prediction"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	LedgerDays       int             `json:"ledger_days"`
	Entries          int             `json:"entries"`
	Payouts          int             `json:"payouts"`
	BankBalance      decimal.Decimal `json:"bank_balance"`
	CumulativeProfit decimal.Decimal `json:"cumulative_profit"`
}

// Event is emitted whenever the ledger snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Event types.
const (
	EventSnapshot     = "snapshot"
	EventLedgerChange = "ledger_change"
)

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DBPath          string    `json:"db_path,omitempty"`
	PayoutDelayDays int       `json:"payout_delay_days"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	src     pipeline.Source
	metrics *Metrics
	reg     *prometheus.Registry

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	ledger      []model.LedgerRow
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event

	// closing is closed when the HTTP server begins shutdown so open
	// streams return.
	closing   chan struct{}
	closeOnce sync.Once
}

// New returns a daemon service reading from src.
func New(src pipeline.Source, cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8797"
	}

	reg := prometheus.NewRegistry()
	return &Service{
		cfg:       cfg,
		src:       src,
		reg:       reg,
		metrics:   NewMetrics(reg),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
		closing:   make(chan struct{}),
	}
}

// Registry exposes the service's metric registry.
func (s *Service) Registry() *prometheus.Registry {
	return s.reg
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	// Shutdown waits for handlers, and stream handlers only return when told.
	server.RegisterOnShutdown(s.closeStreams)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info().Str("addr", s.cfg.Addr).Dur("interval", s.cfg.Interval).Msg("daemon listening")

	// Seed initial snapshot so status is useful immediately.
	s.PollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.PollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// PollOnce rebuilds the ledger from the store and publishes an event when
// the snapshot changed.
func (s *Service) PollOnce(ctx context.Context) {
	res, err := pipeline.Load(ctx, s.src, s.cfg.Params)
	s.metrics.ObservePoll(err)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = time.Now()
		s.pollCount++
		s.mu.Unlock()
		log.Error().Err(err).Msg("daemon poll failed")
		return
	}

	now := time.Now()
	snap := snapshotFromResult(res, now)
	s.metrics.Update(snap, res)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.ledger = res.Ledger
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	switch {
	case !prevExists:
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: EventSnapshot, Timestamp: now, Snapshot: snap}
		publish = true
	case snapshotChanged(prev, snap):
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      EventLedgerChange,
			Timestamp: now,
			Snapshot:  snap,
			Delta:     diffSnapshots(prev, snap),
		}
		publish = true
	}
	s.mu.Unlock()

	log.Debug().
		Int("ledger_days", snap.LedgerDays).
		Str("balance", snap.BankBalance.String()).
		Dur("elapsed", res.Elapsed).
		Bool("changed", publish).
		Msg("daemon poll")

	if publish {
		s.publishEvent(ev)
	}
}

func snapshotFromResult(res *pipeline.LoadResult, at time.Time) Snapshot {
	snap := Snapshot{
		At:           at,
		LedgerDays:   len(res.Ledger),
		Entries:      len(res.Entries),
		Payouts:      len(res.Payouts),
		Unattributed: res.UnattributedPayouts(),
		Prediction:   res.Prediction,
	}
	if last, ok := res.Latest(); ok {
		snap.CutOff = model.DayKey(last.Date)
		snap.BankBalance = last.BankBalance
		snap.CumulativeProfit = last.CumulativeProfit
	}
	return snap
}

// snapshotChanged compares everything except the poll time.
func snapshotChanged(prev, curr Snapshot) bool {
	return prev.CutOff != curr.CutOff ||
		prev.LedgerDays != curr.LedgerDays ||
		prev.Entries != curr.Entries ||
		prev.Payouts != curr.Payouts ||
		!prev.BankBalance.Equal(curr.BankBalance) ||
		!prev.CumulativeProfit.Equal(curr.CumulativeProfit) ||
		prev.Prediction.Status != curr.Prediction.Status ||
		!prev.Prediction.AvgDailyNetCashFlow.Equal(curr.Prediction.AvgDailyNetCashFlow)
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		LedgerDays:       curr.LedgerDays - prev.LedgerDays,
		Entries:          curr.Entries - prev.Entries,
		Payouts:          curr.Payouts - prev.Payouts,
		BankBalance:      curr.BankBalance.Sub(prev.BankBalance),
		CumulativeProfit: curr.CumulativeProfit.Sub(prev.CumulativeProfit),
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DBPath:          s.cfg.DBPath,
		PayoutDelayDays: s.cfg.Params.Ledger.PayoutDelayDays,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

// closeStreams ends every open and future /v1/stream response.
func (s *Service) closeStreams() {
	s.closeOnce.Do(func() { close(s.closing) })
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
