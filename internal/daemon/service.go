// Package daemon provides the long-running runway monitor: it re-reads an
// input file on an interval, recomputes the projection, and publishes the
// result over a local HTTP/SSE API.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/runway/internal/logging"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/source"
)

// Config controls the monitor runtime behavior.
type Config struct {
	InputPath    string
	BalancesPath string
	Engine       pipeline.Options
	Interval     time.Duration
	Addr         string
	EventsBuffer int
}

// Snapshot is the compact projection state served in status and event payloads.
// Undefined figures are null.
type Snapshot struct {
	At           time.Time `json:"at"`
	Source       string    `json:"source"`
	Periods      int       `json:"periods"`
	Items        int       `json:"items"`
	Excluded     int       `json:"excluded"`
	StartBalance *float64  `json:"start_balance"`
	MeanDelta    *float64  `json:"mean_delta"`
	EndBalance   *float64  `json:"end_balance"`
	RunwayMonths *float64  `json:"runway_months"`
	MonthIndex   *int      `json:"month_index"`
	Tier         string    `json:"tier"`
	Message      string    `json:"message"`
}

// Change captures what moved between two polls.
type Change struct {
	TierFrom     string  `json:"tier_from,omitempty"`
	TierTo       string  `json:"tier_to,omitempty"`
	StartBalance float64 `json:"start_balance"`
	MeanDelta    float64 `json:"mean_delta"`
	Periods      int     `json:"periods"`
}

func (c Change) isZero() bool {
	return c.TierFrom == c.TierTo &&
		c.StartBalance == 0 &&
		c.MeanDelta == 0 &&
		c.Periods == 0
}

// Event is emitted whenever the projection changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Change    Change    `json:"change"`
}

// Event types.
const (
	EventSnapshot   = "snapshot"
	EventTierChange = "tier_change"
	EventUpdate     = "projection_update"
)

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	InputPath       string    `json:"input_path"`
	BalancesPath    string    `json:"balances_path,omitempty"`
	Weighting       string    `json:"weighting"`
	Projection      string    `json:"projection"`
	Scenario        string    `json:"scenario"`
	Summary         *Snapshot `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the monitor runtime and HTTP API.
type Service struct {
	cfg  Config
	load func() (*source.ParseResult, error)

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new monitor with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}

	s := &Service{
		cfg:       cfg,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	s.load = func() (*source.ParseResult, error) {
		return source.LoadWithBalances(cfg.InputPath, cfg.BalancesPath)
	}
	return s
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	return mux
}

// Run starts the HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce()
		case err := <-errCh:
			return fmt.Errorf("monitor http server: %w", err)
		}
	}
}

func (s *Service) pollOnce() {
	log := logging.Log.WithField("input", s.cfg.InputPath)
	now := time.Now()

	snap, err := s.compute(now)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		log.WithError(err).Warn("monitor poll failed")
		return
	}

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: EventSnapshot, Timestamp: now, Snapshot: snap}
		publish = true
	} else if change := diffSnapshots(prev, snap); !change.isZero() {
		s.nextEventID++
		typ := EventUpdate
		if change.TierFrom != change.TierTo {
			typ = EventTierChange
		}
		ev = Event{ID: s.nextEventID, Type: typ, Timestamp: now, Snapshot: snap, Change: change}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		if ev.Type == EventTierChange {
			log.WithFields(logrus.Fields{
				"from": ev.Change.TierFrom,
				"to":   ev.Change.TierTo,
			}).Warn("shortfall tier changed")
		}
		s.publishEvent(ev)
	}
}

// compute reloads the input and runs the engine once.
func (s *Service) compute(at time.Time) (Snapshot, error) {
	parsed, err := s.load()
	if err != nil {
		return Snapshot{}, err
	}
	res, err := pipeline.Run(parsed.Input, s.cfg.Engine)
	if err != nil {
		return Snapshot{}, err
	}
	return snapshotFromResult(res, parsed.Input, at), nil
}

func snapshotFromResult(res *pipeline.Result, in model.Input, at time.Time) Snapshot {
	snap := Snapshot{
		At:           at,
		Source:       in.Source,
		Periods:      len(res.Series),
		Items:        res.ItemCount,
		Excluded:     res.Excluded,
		StartBalance: res.Projection.StartBalance,
		MeanDelta:    res.Projection.MeanDelta,
		RunwayMonths: res.Projection.RunwayMonths,
		MonthIndex:   res.Verdict.MonthIndex,
		Tier:         res.Verdict.Tier.String(),
		Message:      res.Verdict.Message,
	}
	if end, ok := res.Projection.EndBalance(); ok {
		snap.EndBalance = model.Float(end)
	}
	return snap
}

func diffSnapshots(prev, curr Snapshot) Change {
	return Change{
		TierFrom:     prev.Tier,
		TierTo:       curr.Tier,
		StartBalance: valueOf(curr.StartBalance) - valueOf(prev.StartBalance),
		MeanDelta:    valueOf(curr.MeanDelta) - valueOf(prev.MeanDelta),
		Periods:      curr.Periods - prev.Periods,
	}
}

func valueOf(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
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

	st := Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		InputPath:       s.cfg.InputPath,
		BalancesPath:    s.cfg.BalancesPath,
		Weighting:       s.cfg.Engine.Weighting.String(),
		Projection:      s.cfg.Engine.Projection.String(),
		Scenario:        s.cfg.Engine.Scenario.Name,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
	if s.hasSnapshot {
		snap := s.snapshot
		st.Summary = &snap
	}
	return st
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.snapshotStatus()); err != nil {
		logging.Log.WithError(err).Warn("encode status")
	}
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(events); err != nil {
		logging.Log.WithError(err).Warn("encode events")
	}
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	if st := s.snapshotStatus(); st.Summary != nil {
		writeSSE(w, Event{Type: EventSnapshot, Timestamp: time.Now(), Snapshot: *st.Summary})
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
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
