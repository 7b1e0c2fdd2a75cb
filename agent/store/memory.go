// Package store provides ProductStore adapters: an in-memory map for the
// local simulator and tests, DynamoDB for the original deployment shape,
// and Postgres via bun for self-hosted setups.
package store

import (
	"context"
	"sync"

	contractx "github.com/bkocaman/supplypilot/agent/contract"
)

// Memory is a thread-safe in-memory product store. Reads are trivially
// strongly consistent.
type Memory struct {
	mu sync.RWMutex
	m  map[string]contractx.ProductRecord
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string]contractx.ProductRecord)}
}

// NewMemorySeeded returns a memory store preloaded with the given records.
func NewMemorySeeded(recs ...contractx.ProductRecord) *Memory {
	s := NewMemory()
	for _, rec := range recs {
		s.m[rec.DrugID] = rec
	}
	return s
}

func (s *Memory) Get(ctx context.Context, id string) (contractx.ProductRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.m[id]
	if !ok {
		return contractx.ProductRecord{}, contractx.ErrProductNotFound
	}
	return rec, nil
}

func (s *Memory) SetPrice(ctx context.Context, id string, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.m[id]
	if !ok {
		return contractx.ErrProductNotFound
	}
	rec.CurrentPrice = price
	s.m[id] = rec
	return nil
}

func (s *Memory) AddStock(ctx context.Context, id string, qty int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.m[id]
	if !ok {
		return contractx.ErrProductNotFound
	}
	rec.StockLevel += qty
	if rec.StockLevel < 0 {
		rec.StockLevel = 0
	}
	s.m[id] = rec
	return nil
}

func (s *Memory) SetStock(ctx context.Context, id string, qty int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.m[id]
	if !ok {
		return contractx.ErrProductNotFound
	}
	rec.StockLevel = qty
	s.m[id] = rec
	return nil
}

func (s *Memory) AddCompetitorPrice(ctx context.Context, id string, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.m[id]
	if !ok {
		return contractx.ErrProductNotFound
	}
	rec.CompetitorPrice += delta
	s.m[id] = rec
	return nil
}

func (s *Memory) Put(ctx context.Context, rec contractx.ProductRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[rec.DrugID] = rec
	return nil
}

var _ contractx.ScenarioStore = (*Memory)(nil)
