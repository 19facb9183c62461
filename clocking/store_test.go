package clocking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// memoryStore is an in-memory EventStore used by the tests of this package.
type memoryStore struct {
	mu     sync.Mutex
	events map[string][]ClockEvent
}

func newMemoryStore() *memoryStore {
	return &memoryStore{events: map[string][]ClockEvent{}}
}

func (m *memoryStore) add(userID string, action Action, ts time.Time) *memoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[userID] = append(m.events[userID], ClockEvent{UserID: userID, Action: action, Timestamp: ts})
	sort.Slice(m.events[userID], func(i, j int) bool {
		return m.events[userID][i].Timestamp.Before(m.events[userID][j].Timestamp)
	})
	return m
}

func (m *memoryStore) GetLastEvent(ctx context.Context, userID string) (*ClockEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := m.events[userID]
	if len(events) == 0 {
		return nil, nil
	}
	last := events[len(events)-1]
	return &last, nil
}

func (m *memoryStore) GetEventsInRange(ctx context.Context, userID string, from, to time.Time) ([]ClockEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ClockEvent
	for _, e := range m.events[userID] {
		if !e.Timestamp.Before(from) && !e.Timestamp.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryStore) SaveEvent(ctx context.Context, userID string, action Action, timestamp time.Time, localTimestamp *time.Time) error {
	m.add(userID, action, timestamp)
	return nil
}

var errBackend = errors.New("connection refused")

// brokenStore fails every call the way the gorm adapter reports outages.
type brokenStore struct{}

func (brokenStore) GetLastEvent(ctx context.Context, userID string) (*ClockEvent, error) {
	return nil, &StoreError{Op: "last event", Err: errBackend}
}

func (brokenStore) GetEventsInRange(ctx context.Context, userID string, from, to time.Time) ([]ClockEvent, error) {
	return nil, &StoreError{Op: "events in range", Err: errBackend}
}

func (brokenStore) SaveEvent(ctx context.Context, userID string, action Action, timestamp time.Time, localTimestamp *time.Time) error {
	return &StoreError{Op: "save event", Err: errBackend}
}
