package storage

import (
	"context"
	"sync"
	"time"
)

// Memory is the in-process reference Repository. Tests and ephemeral runs
// use it directly; it is also the semantic yardstick for the file and gRPC
// implementations.
type Memory struct {
	mu   sync.Mutex
	recs map[string]*Record
}

func NewMemory() *Memory {
	return &Memory{recs: make(map[string]*Record)}
}

func (m *Memory) Create(ctx context.Context, rec *Record) error {
	if err := ValidateRecord(rec); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recs[rec.ID]; ok {
		return ErrAlreadyExists
	}
	m.recs[rec.ID] = CloneRecord(rec)
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return CloneRecord(rec), nil
}

func (m *Memory) MarkConsumed(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[id]
	if !ok {
		return ErrNotFound
	}
	if rec.Consumed {
		return ErrAlreadyConsumed
	}
	for i := range rec.Raw {
		rec.Raw[i] = 0
	}
	rec.Raw = nil
	rec.Consumed = true
	rec.ConsumedAt = at.UTC()
	return nil
}

func (m *Memory) List(ctx context.Context, unconsumedOnly bool) ([]*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Record, 0, len(m.recs))
	for _, rec := range m.recs {
		if unconsumedOnly && rec.Consumed {
			continue
		}
		c := CloneRecord(rec)
		c.Raw = nil
		out = append(out, c)
	}
	SortRecords(out)
	return out, nil
}

// Compile-time interface satisfaction check.
var _ Repository = (*Memory)(nil)
