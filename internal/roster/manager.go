// Package roster owns the traveller roster: a fixed-capacity ordered list of
// reservations whose every mutation is mirrored to a key-value store as a
// full snapshot.
package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/iliyamo/traveller-reservation/internal/clock"
	"github.com/iliyamo/traveller-reservation/internal/model"
)

const (
	// DefaultCapacity is the number of seats on offer.
	DefaultCapacity = 10
	// DefaultKey is the store key holding the roster snapshot.
	DefaultKey = "travellerData"
)

// Store is the read/write contract the roster needs from persistence.
// Get reports found=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Manager is the single owner of the in-memory roster.  All methods are safe
// for concurrent use; operations are serialized so each one, including its
// snapshot write, finishes before the next starts.
type Manager struct {
	mu        sync.Mutex
	store     Store
	clock     clock.Clock
	key       string
	capacity  int
	items     []model.Reservation
	loadIssue error
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the clock used for booking timestamps.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithKey overrides the store key.
func WithKey(key string) Option {
	return func(m *Manager) {
		if key != "" {
			m.key = key
		}
	}
}

// WithCapacity overrides the seat count.  Non-positive values are ignored.
func WithCapacity(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.capacity = n
		}
	}
}

// Load builds a Manager and initializes it from the store.  A missing
// snapshot, a store read failure, undecodable content or a snapshot that
// breaks the roster invariants all start the roster empty.  Load never
// fails; the reason for discarding data is available from LoadIssue.
func Load(ctx context.Context, store Store, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		clock:    clock.NewSystem(),
		key:      DefaultKey,
		capacity: DefaultCapacity,
	}
	for _, opt := range opts {
		opt(m)
	}
	items, err := m.readSnapshot(ctx)
	if err != nil {
		m.loadIssue = err
		items = nil
	}
	m.items = items
	return m
}

// readSnapshot returns the stored roster.  A missing key is not an error.
func (m *Manager) readSnapshot(ctx context.Context) ([]model.Reservation, error) {
	raw, found, err := m.store.Get(ctx, m.key)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", m.key, err)
	}
	if !found || raw == "" {
		return nil, nil
	}
	var items []model.Reservation
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", m.key, err)
	}
	if len(items) > m.capacity {
		return nil, errSnapshotTooLarge
	}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if !it.Complete() {
			return nil, errSnapshotIncomplete
		}
		if _, dup := seen[it.ID]; dup {
			return nil, errSnapshotDuplicate
		}
		seen[it.ID] = struct{}{}
	}
	return items, nil
}

// LoadIssue returns why the persisted snapshot was discarded at Load, or nil
// when it was used (or absent).
func (m *Manager) LoadIssue() error {
	return m.loadIssue
}

// Add books a seat for a new traveller.  Checks run in order: capacity,
// required fields, identifier uniqueness.  On success the reservation is
// appended, the snapshot is written and the updated roster is returned.
// If the write fails the roster is left as it was.
func (m *Manager) Add(ctx context.Context, id, name, phone string) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.items) >= m.capacity {
		return nil, ErrCapacityExceeded
	}
	if id == "" || name == "" || phone == "" {
		return nil, ErrMissingField
	}
	if m.indexOf(id) >= 0 {
		return nil, ErrDuplicateIdentifier
	}

	res := model.Reservation{
		ID:          id,
		Name:        name,
		Phone:       phone,
		BookingTime: m.clock.Now().Format(model.BookingTimeLayout),
	}
	next := make([]model.Reservation, len(m.items), len(m.items)+1)
	copy(next, m.items)
	next = append(next, res)

	if err := m.writeSnapshot(ctx, next); err != nil {
		return nil, err
	}
	m.items = next
	return m.snapshot(), nil
}

// Remove deletes the traveller with the given identifier.  becameEmpty is
// true when the roster has no entries left afterwards.
func (m *Manager) Remove(ctx context.Context, id string) (items []model.Reservation, becameEmpty bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return nil, false, ErrNotFound
	}
	next := make([]model.Reservation, 0, len(m.items)-1)
	next = append(next, m.items[:idx]...)
	next = append(next, m.items[idx+1:]...)

	if err := m.writeSnapshot(ctx, next); err != nil {
		return nil, false, err
	}
	m.items = next
	return m.snapshot(), len(next) == 0, nil
}

// List returns the roster in booking order.
func (m *Manager) List() []model.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// Get returns the reservation with the given identifier.
func (m *Manager) Get(id string) (model.Reservation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx := m.indexOf(id); idx >= 0 {
		return m.items[idx], true
	}
	return model.Reservation{}, false
}

// Len returns the number of booked travellers.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Capacity returns the total seat count.
func (m *Manager) Capacity() int {
	return m.capacity
}

// FreeSeatCount returns capacity minus booked travellers.
func (m *Manager) FreeSeatCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.capacity - len(m.items)
}

// SeatOccupancy returns one entry per seat; seat i is reserved when fewer
// than i+1 travellers are booked.  Seats are positional, not bound to a
// traveller, so removing a traveller shifts later seats down.
func (m *Manager) SeatOccupancy() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	seats := make([]bool, m.capacity)
	for i := range seats {
		seats[i] = i < len(m.items)
	}
	return seats
}

func (m *Manager) indexOf(id string) int {
	for i, it := range m.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// snapshot copies the roster so callers can't mutate internal state.
func (m *Manager) snapshot() []model.Reservation {
	out := make([]model.Reservation, len(m.items))
	copy(out, m.items)
	return out
}

func (m *Manager) writeSnapshot(ctx context.Context, items []model.Reservation) error {
	if items == nil {
		items = []model.Reservation{}
	}
	body, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := m.store.Set(ctx, m.key, string(body)); err != nil {
		return fmt.Errorf("write snapshot %s: %w", m.key, err)
	}
	return nil
}
