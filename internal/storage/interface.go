package storage

import (
	"context"

	"github.com/mcoot/kingdom-bot/internal/model"
)

// MutateFunc changes a player in place inside an atomic update.
// Returning an error aborts the update without writing.
type MutateFunc func(p *model.Player) error

// Storage defines the interface for player persistence
type Storage interface {
	// GetPlayer returns model.ErrPlayerNotFound when the sender is unknown
	GetPlayer(ctx context.Context, sender string) (*model.Player, error)

	// CreatePlayer inserts the player unless one with the same sender exists.
	// It returns the stored record and whether it was created by this call.
	CreatePlayer(ctx context.Context, player *model.Player) (*model.Player, bool, error)

	// UpdatePlayer atomically reads, mutates and writes one player.
	// It returns model.ErrPlayerNotFound without writing when the sender is unknown.
	UpdatePlayer(ctx context.Context, sender string, fn MutateFunc) (*model.Player, error)

	// ListPlayers returns every stored player. Undecodable payloads come back empty.
	ListPlayers(ctx context.Context) ([]*model.Player, error)

	// Interaction log
	AppendLog(ctx context.Context, entry *model.LogEntry) error

	Close() error
}
