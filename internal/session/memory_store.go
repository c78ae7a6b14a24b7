package session

import (
	"context"
	"sync"
	"time"
)

const sweepInterval = 10 * time.Minute

type entry struct {
	encoded        string
	createdAt      time.Time
	lastAccessedAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return now.After(e.lastAccessedAt.Add(IdleTimeout))
}

// MemoryStore is the in-process Store used when no Redis address is
// configured. Expiry is applied lazily on read and by a background
// sweep that bounds memory growth.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry

	now func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

func (s *MemoryStore) Create(_ context.Context, r Record) (string, error) {
	encoded, err := EncodeRecord(r)
	if err != nil {
		return "", err
	}

	cookieValue, err := GenerateID()
	if err != nil {
		return "", err
	}

	now := s.now()

	s.mu.Lock()
	s.entries[cookieValue] = entry{
		encoded:        encoded,
		createdAt:      now,
		lastAccessedAt: now,
	}
	s.mu.Unlock()

	return cookieValue, nil
}

func (s *MemoryStore) Get(_ context.Context, cookieValue string) (*Record, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[cookieValue]
	if !ok {
		return nil, nil
	}

	if e.expired(now) {
		delete(s.entries, cookieValue)
		return nil, nil
	}

	r, err := DecodeRecord(e.encoded)
	if err != nil {
		// Evict so the corrupt value cannot keep resurfacing.
		delete(s.entries, cookieValue)
		return nil, err
	}

	e.lastAccessedAt = now
	s.entries[cookieValue] = e

	return &r, nil
}

func (s *MemoryStore) Touch(_ context.Context, cookieValue string) error {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[cookieValue]
	if !ok {
		return nil
	}

	if e.expired(now) {
		delete(s.entries, cookieValue)
		return nil
	}

	e.lastAccessedAt = now
	s.entries[cookieValue] = e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, cookieValue string) error {
	s.mu.Lock()
	delete(s.entries, cookieValue)
	s.mu.Unlock()
	return nil
}

// Close stops the background sweep. Safe to call more than once.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryStore) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryStore) sweep() {
	now := s.now()

	s.mu.Lock()
	for cookieValue, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, cookieValue)
		}
	}
	s.mu.Unlock()
}
