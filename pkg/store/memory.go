package store

import (
	"context"
	"fmt"
	"sync"

	"trickmatch-server/pkg/match"
)

// Memory is a Store that keeps everything in process memory
// It is meant for a single server process and for tests
type Memory struct {
	lock    sync.RWMutex
	matches map[string]*match.Match
	plays   map[string][]*match.Play
	order   []string
}

// NewMemory returns an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		matches: make(map[string]*match.Match),
		plays:   make(map[string][]*match.Play),
	}
}

// CreateMatch stores a new match
func (m *Memory) CreateMatch(ctx context.Context, mt *match.Match) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if _, found := m.matches[mt.ID]; found {
		return fmt.Errorf("match %s already exists", mt.ID)
	}

	m.matches[mt.ID] = withoutPlays(mt)
	m.plays[mt.ID] = append([]*match.Play{}, mt.Plays...)
	m.order = append(m.order, mt.ID)
	return nil
}

// LoadMatch returns a copy of the match
func (m *Memory) LoadMatch(ctx context.Context, id string) (*match.Match, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return m.load(id)
}

// NOTE: the caller must hold the lock
func (m *Memory) load(id string) (*match.Match, error) {
	stored, found := m.matches[id]
	if !found {
		return nil, match.ErrNotFound
	}

	mt := stored.Clone()
	mt.Plays = append(mt.Plays, m.plays[id]...)
	return mt, nil
}

// ListActiveMatches returns copies of the incomplete matches in creation order
func (m *Memory) ListActiveMatches(ctx context.Context) ([]*match.Match, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	active := make([]*match.Match, 0)
	for _, id := range m.order {
		if m.matches[id].IsComplete {
			continue
		}

		mt, err := m.load(id)
		if err != nil {
			return nil, err
		}

		active = append(active, mt)
	}

	return active, nil
}

// Transact buffers the writes of fn and applies them all at once
// Readers never observe a partially applied transaction
func (m *Memory) Transact(ctx context.Context, fn func(tx Tx) error) error {
	tx := &memoryTx{
		store: m,
		saved: make(map[string]*match.Match),
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return m.commit(tx)
}

func (m *Memory) commit(tx *memoryTx) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	for id := range tx.saved {
		if _, found := m.matches[id]; !found {
			return match.ErrNotFound
		}
	}

	for _, play := range tx.plays {
		if _, found := m.matches[play.MatchID]; !found {
			return match.ErrNotFound
		}

		if hasPlay(m.plays[play.MatchID], play) {
			return match.ErrDuplicatePlay
		}
	}

	for id, mt := range tx.saved {
		m.matches[id] = mt
	}

	for _, play := range tx.plays {
		m.plays[play.MatchID] = append(m.plays[play.MatchID], play)
	}

	return nil
}

type memoryTx struct {
	store *Memory
	saved map[string]*match.Match
	plays []*match.Play
}

func (t *memoryTx) LoadMatch(ctx context.Context, id string) (*match.Match, error) {
	return t.store.LoadMatch(ctx, id)
}

func (t *memoryTx) AppendPlay(ctx context.Context, play *match.Play) error {
	if hasPlay(t.plays, play) {
		return match.ErrDuplicatePlay
	}

	t.plays = append(t.plays, play)
	return nil
}

func (t *memoryTx) SaveMatch(ctx context.Context, mt *match.Match) error {
	t.saved[mt.ID] = withoutPlays(mt)
	return nil
}

func hasPlay(plays []*match.Play, play *match.Play) bool {
	for _, p := range plays {
		if p.MatchID == play.MatchID && p.Round == play.Round && p.PlayerID == play.PlayerID {
			return true
		}
	}

	return false
}

func withoutPlays(mt *match.Match) *match.Match {
	cp := mt.Clone()
	cp.Plays = nil
	return cp
}
