// Package daemon re-runs the advisory on an interval, serves the latest
// result over HTTP and publishes it whenever the position changes.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashplan/internal/advisor"
	"github.com/theirongolddev/cashplan/internal/log"
	"github.com/theirongolddev/cashplan/internal/publish"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Interval     time.Duration
	Addr         string
	EventsBuffer int
}

// RunFunc produces one advisory.
type RunFunc func(ctx context.Context) (*advisor.Result, error)

// Sink receives an advisory whenever the position changes.
type Sink interface {
	PublishAdvice(ctx context.Context, msg publish.AdviceMessage) error
}

// Snapshot is a compact advisory state for status/event payloads.
type Snapshot struct {
	At             time.Time       `json:"at"`
	RunID          string          `json:"run_id"`
	Net            decimal.Decimal `json:"net"`
	Shortfall      decimal.Decimal `json:"shortfall"`
	SellNowForeign decimal.Decimal `json:"sell_now_foreign"`
	Leftover       decimal.Decimal `json:"leftover"`
	Blocked        int             `json:"blocked"`
	Extendable     int             `json:"extendable"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Net            decimal.Decimal `json:"net"`
	Shortfall      decimal.Decimal `json:"shortfall"`
	SellNowForeign decimal.Decimal `json:"sell_now_foreign"`
	Leftover       decimal.Decimal `json:"leftover"`
	Blocked        int             `json:"blocked"`
	Extendable     int             `json:"extendable"`
}

func (d Delta) isZero() bool {
	return d.Net.IsZero() &&
		d.Shortfall.IsZero() &&
		d.SellNowForeign.IsZero() &&
		d.Leftover.IsZero() &&
		d.Blocked == 0 &&
		d.Extendable == 0
}

// Event is emitted whenever the advisory changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg  Config
	run  RunFunc
	sink Sink
	log  zerolog.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	sections    []string
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon service. sink may be nil.
func New(cfg Config, run RunFunc, sink Sink, logger zerolog.Logger) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}

	return &Service{
		cfg:       cfg,
		run:       run,
		sink:      sink,
		log:       log.WithComponent(logger, log.ComponentDaemon),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/advice", s.handleAdvice)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info().Str("addr", s.cfg.Addr).Dur("interval", s.cfg.Interval).Msg("watching")

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	res, err := s.run(ctx)
	now := time.Now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Error().Err(err).Msg("advisory failed")
		return
	}

	snap := snapshotFromResult(res)

	var (
		ev      Event
		changed bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.sections = res.Sections
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "snapshot", Timestamp: now, Snapshot: snap}
		changed = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "advice_delta", Timestamp: now, Snapshot: snap, Delta: delta}
		changed = true
	}
	s.mu.Unlock()

	if !changed {
		return
	}
	s.publishEvent(ev)

	if s.sink != nil {
		msg := publish.AdviceMessage{RunID: res.RunID, GeneratedAt: res.GeneratedAt, Sections: res.Sections}
		if err := s.sink.PublishAdvice(ctx, msg); err != nil {
			s.log.Error().Err(err).Str(log.FieldRunID, res.RunID).Msg("publishing advice")
		}
	}
}

func snapshotFromResult(r *advisor.Result) Snapshot {
	return Snapshot{
		At:             r.GeneratedAt,
		RunID:          r.RunID,
		Net:            r.Cushion.Net,
		Shortfall:      r.Cushion.Shortfall,
		SellNowForeign: r.Cushion.SaleNow.Foreign,
		Leftover:       r.Plan.Leftover,
		Blocked:        r.Limits.Totals.Blocked,
		Extendable:     r.Limits.Totals.Extendable,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Net:            curr.Net.Sub(prev.Net),
		Shortfall:      curr.Shortfall.Sub(prev.Shortfall),
		SellNowForeign: curr.SellNowForeign.Sub(prev.SellNowForeign),
		Leftover:       curr.Leftover.Sub(prev.Leftover),
		Blocked:        curr.Blocked - prev.Blocked,
		Extendable:     curr.Extendable - prev.Extendable,
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
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

// handleAdvice serves the latest rendered sections.
func (s *Service) handleAdvice(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	msg := publish.AdviceMessage{RunID: s.snapshot.RunID, GeneratedAt: s.snapshot.At, Sections: s.sections}
	ready := s.hasSnapshot
	s.mu.RUnlock()

	if !ready {
		http.Error(w, "no advisory yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(msg)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
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
	current := Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
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
