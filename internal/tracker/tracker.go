// Package tracker records funnel events. Tracking never fails the caller:
// bad detail payloads are dropped and sink errors are only logged.
package tracker

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"expertbook-backend/internal/models"
	"expertbook-backend/internal/store"
)

const sinkTimeout = 5 * time.Second

type EventStore interface {
	AppendEvent(e models.Event) error
	ListEvents() []models.Event
}

// Sink receives a copy of every tracked event after it is stored.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, e models.Event) error
}

type Tracker struct {
	store EventStore
	sinks []Sink
	log   *slog.Logger
	now   func() time.Time
	wg    sync.WaitGroup
}

func New(events EventStore, log *slog.Logger, sinks ...Sink) *Tracker {
	active := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}
	return &Tracker{
		store: events,
		sinks: active,
		log:   log,
		now:   time.Now,
	}
}

// Track appends one event and fans it out to the sinks.
func (t *Tracker) Track(name string, detail map[string]interface{}) (event models.Event) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Warn("track: dropped event", slog.String("event", name), slog.Any("panic", r))
			event = models.Event{}
		}
	}()

	event = models.Event{
		ID:        store.NewID("log"),
		Event:     name,
		Detail:    t.snapshot(name, detail),
		CreatedAt: t.now().UTC(),
	}
	if err := t.store.AppendEvent(event); err != nil {
		t.log.Warn("track: store error", slog.String("event", name), slog.String("error", err.Error()))
		return models.Event{}
	}

	for _, sink := range t.sinks {
		t.wg.Add(1)
		go t.deliver(sink, event)
	}
	return event
}

func (t *Tracker) List() []models.Event {
	return t.store.ListEvents()
}

// Wait blocks until in-flight sink deliveries finish.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

// snapshot copies detail through JSON so later caller mutations cannot leak
// into the log. Anything that fails to encode is replaced by an empty map.
func (t *Tracker) snapshot(name string, detail map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	if len(detail) == 0 {
		return out
	}
	raw, err := json.Marshal(detail)
	if err != nil {
		t.log.Debug("track: detail not serializable", slog.String("event", name), slog.String("error", err.Error()))
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}

func (t *Tracker) deliver(sink Sink, e models.Event) {
	defer t.wg.Done()
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	if err := sink.Deliver(ctx, e); err != nil {
		t.log.Warn("track: sink delivery failed",
			slog.String("sink", sink.Name()),
			slog.String("event_id", e.ID),
			slog.String("error", err.Error()),
		)
	}
}
