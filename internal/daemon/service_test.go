package daemon

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/source"
)

func ledger(balances ...float64) *source.ParseResult {
	periods := model.BoundaryPeriods(nil, balances)
	for i := range periods {
		periods[i].Items = []model.Item{{Product: "A", Throughput: 100, LeadTime: 10, Quantity: 5}}
	}
	return &source.ParseResult{Input: model.Input{Periods: periods, Source: "ledger.csv"}}
}

func newTestService(t *testing.T, inputs ...*source.ParseResult) *Service {
	t.Helper()
	s := New(Config{
		InputPath: "ledger.csv",
		Engine:    pipeline.Options{Scenario: model.BaseScenario()},
		Interval:  10 * time.Second,
	})
	calls := 0
	s.load = func() (*source.ParseResult, error) {
		if calls >= len(inputs) {
			return nil, errors.New("file vanished")
		}
		in := inputs[calls]
		calls++
		return in, nil
	}
	return s
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{Tier: "SAFE", StartBalance: model.Float(1000), MeanDelta: model.Float(-50), Periods: 3}
	curr := Snapshot{Tier: "WARNING", StartBalance: model.Float(120), MeanDelta: model.Float(-60), Periods: 4}

	c := diffSnapshots(prev, curr)
	if c.TierFrom != "SAFE" || c.TierTo != "WARNING" {
		t.Fatalf("tiers = %s -> %s", c.TierFrom, c.TierTo)
	}
	if c.StartBalance != -880 {
		t.Fatalf("StartBalance change = %v, want -880", c.StartBalance)
	}
	if math.Abs(c.MeanDelta+10) > 1e-9 {
		t.Fatalf("MeanDelta change = %v, want -10", c.MeanDelta)
	}
	if c.Periods != 1 {
		t.Fatalf("Periods change = %d, want 1", c.Periods)
	}
	if c.isZero() {
		t.Fatal("change unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots should not differ")
	}
}

func TestDiffSnapshotsUndefinedFigures(t *testing.T) {
	c := diffSnapshots(Snapshot{Tier: "SAFE"}, Snapshot{Tier: "SAFE"})
	if !c.isZero() {
		t.Fatalf("change = %+v, want zero", c)
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		InputPath:    "ledger.csv",
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollOnceEmitsTierChange(t *testing.T) {
	s := newTestService(t,
		ledger(1000, 990, 980), // -10 a month: safe
		ledger(1000, 990, 980), // unchanged
		ledger(300, 200, 100),  // -100 a month from 100: shortfall next month
	)

	s.pollOnce()
	s.pollOnce()
	s.pollOnce()

	s.mu.RLock()
	events := append([]Event(nil), s.events...)
	polls := s.pollCount
	s.mu.RUnlock()

	if polls != 3 {
		t.Fatalf("pollCount = %d, want 3", polls)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2 (unchanged poll must not publish)", len(events))
	}
	if events[0].Type != EventSnapshot || events[0].Snapshot.Tier != "SAFE" {
		t.Errorf("first event = %s %s, want snapshot SAFE", events[0].Type, events[0].Snapshot.Tier)
	}
	if events[1].Type != EventTierChange || events[1].Change.TierTo != "SEVERE" {
		t.Errorf("second event = %s to %s, want tier_change to SEVERE", events[1].Type, events[1].Change.TierTo)
	}
	if events[1].Snapshot.MonthIndex == nil || *events[1].Snapshot.MonthIndex != 1 {
		t.Errorf("MonthIndex = %v, want 1", events[1].Snapshot.MonthIndex)
	}
}

func TestPollOnceRecordsErrors(t *testing.T) {
	s := newTestService(t, ledger(500, 400))
	s.pollOnce()
	s.pollOnce() // loader fails

	st := s.snapshotStatus()
	if st.LastError == "" {
		t.Error("LastError not recorded")
	}
	if st.Summary == nil || st.Summary.Tier == "" {
		t.Error("previous snapshot should survive a failed poll")
	}
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestService(t, ledger(500, 450, 400))
	s.pollOnce()

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.PollCount != 1 || st.InputPath != "ledger.csv" {
		t.Errorf("status = %+v", st)
	}
	if st.Summary == nil || st.Summary.StartBalance == nil || *st.Summary.StartBalance != 400 {
		t.Errorf("summary = %+v, want start balance 400", st.Summary)
	}
	if st.Weighting != "quantity" || st.Projection != "extrapolate" {
		t.Errorf("modes = %s/%s", st.Weighting, st.Projection)
	}

	health, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Errorf("healthz = %d", health.StatusCode)
	}
}
