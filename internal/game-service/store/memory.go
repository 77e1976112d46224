package store

import (
	"context"
	"sync"

	"github.com/radieske/coinflip-miniapp-poc/pkg/contracts/rounds"
)

// Memory implementa o Store em memória, para testes e execução sem Redis.
// Um único mutex cobre ledger e feed; o volume aqui é pequeno.
type Memory struct {
	mu             sync.Mutex
	balances       map[string]int64
	feed           []rounds.Record
	defaultBalance int64
	feedMax        int
}

func NewMemory(defaultBalance int64, feedMax int) *Memory {
	return &Memory{
		balances:       make(map[string]int64),
		defaultBalance: defaultBalance,
		feedMax:        feedMax,
	}
}

func (s *Memory) GetBalance(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bal, ok := s.balances[id]
	if !ok {
		bal = s.defaultBalance
		s.balances[id] = bal
	}
	return bal, nil
}

func (s *Memory) AddBalance(_ context.Context, id string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bal, ok := s.balances[id]
	if !ok {
		bal = s.defaultBalance
	}
	bal += delta
	if bal < 0 {
		bal = 0
	}
	s.balances[id] = bal
	return bal, nil
}

func (s *Memory) PushRound(_ context.Context, rec rounds.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.feed = append([]rounds.Record{rec}, s.feed...)
	if len(s.feed) > s.feedMax {
		s.feed = s.feed[:s.feedMax]
	}
	return nil
}

func (s *Memory) ListRounds(_ context.Context, limit int) ([]rounds.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit = clampLimit(limit, s.feedMax)
	if limit > len(s.feed) {
		limit = len(s.feed)
	}

	out := make([]rounds.Record, limit)
	copy(out, s.feed[:limit])
	return out, nil
}

func (s *Memory) Ping(_ context.Context) error { return nil }

func (s *Memory) Close() error { return nil }
