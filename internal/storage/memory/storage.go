package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/kingdom-bot/internal/model"
	"github.com/mcoot/kingdom-bot/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players map[string]*model.Player
	order   []string // insertion order, keeps scans deterministic
	logs    []*model.LogEntry
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players: make(map[string]*model.Player),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) GetPlayer(ctx context.Context, sender string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[sender]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player.Clone(), nil
}

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) (*model.Player, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.players[player.Sender]; ok {
		return existing.Clone(), false, nil
	}
	s.players[player.Sender] = player.Clone()
	s.order = append(s.order, player.Sender)
	return player.Clone(), true, nil
}

func (s *Storage) UpdatePlayer(ctx context.Context, sender string, fn storage.MutateFunc) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.players[sender]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}

	// Mutate a copy so a failed mutation leaves the stored record intact
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.Sender = sender
	s.players[sender] = next
	return next.Clone(), nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]*model.Player, 0, len(s.order))
	for _, sender := range s.order {
		players = append(players, s.players[sender].Clone())
	}
	return players, nil
}

// Log operations

func (s *Storage) AppendLog(ctx context.Context, entry *model.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := *entry
	e.Payload = append([]byte(nil), entry.Payload...)
	s.logs = append(s.logs, &e)
	return nil
}

// Logs returns the interaction log for a sender, oldest first (useful for testing)
func (s *Storage) Logs(sender string) []*model.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entries []*model.LogEntry
	for _, e := range s.logs {
		if e.Sender == sender {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries
}

func (s *Storage) Close() error {
	return nil
}
