// Package players implements the player store: lazy creation, merge-style
// updates, nicknames, expectations and the notification queue.
package players

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/kingdom-bot/internal/dependencies/clock"
	"github.com/mcoot/kingdom-bot/internal/model"
	"github.com/mcoot/kingdom-bot/internal/services/kingdom"
	"github.com/mcoot/kingdom-bot/internal/storage"
)

// Service manages player records on top of a storage backend
type Service struct {
	storage    storage.Storage
	resolver   *kingdom.Resolver
	clock      clock.Clock
	logger     *slog.Logger
	defaultTTL time.Duration
}

// New creates a new player Service
func New(
	storage storage.Storage,
	resolver *kingdom.Resolver,
	clock clock.Clock,
	logger *slog.Logger,
) *Service {
	if resolver == nil {
		resolver = kingdom.NewResolver(nil, nil)
	}
	return &Service{
		storage:    storage,
		resolver:   resolver,
		clock:      clock,
		logger:     logger.With(slog.String("component", "players")),
		defaultTTL: DefaultExpectationTTL,
	}
}

// WithExpectationTTL overrides the TTL used when SetExpectation gets ttl <= 0
func (s *Service) WithExpectationTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.defaultTTL = ttl
	}
	return s
}

// GetBySender returns model.ErrPlayerNotFound when no player has this sender
func (s *Service) GetBySender(ctx context.Context, sender string) (*model.Player, error) {
	return s.storage.GetPlayer(ctx, sender)
}

// CreateOrGet returns the player for sender, creating it with the default
// payload on first contact. displayName defaults to the sender.
func (s *Service) CreateOrGet(ctx context.Context, sender, displayName string) (*model.Player, error) {
	player, created, err := s.storage.CreatePlayer(ctx, model.NewPlayer(sender, displayName, s.clock.Now()))
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Info("player created",
			slog.String("sender", sender),
			slog.String("display_name", player.DisplayName),
		)
	}
	return player, nil
}

// Update merges patch into the stored player in one atomic write.
// Unknown senders return model.ErrPlayerNotFound and nothing is written.
func (s *Service) Update(ctx context.Context, sender string, patch model.PlayerPatch) (*model.Player, error) {
	now := s.clock.Now()
	return s.storage.UpdatePlayer(ctx, sender, func(p *model.Player) error {
		return patch.Apply(p, now)
	})
}

// AddCoins adds delta to the coin balance. A balance that would go
// negative is rejected with model.ErrInsufficientCoins.
func (s *Service) AddCoins(ctx context.Context, sender string, delta int) (*model.Player, error) {
	return s.Update(ctx, sender, model.PlayerPatch{
		Payload: &model.PayloadPatch{CoinsDelta: delta},
	})
}

// SetWelcomeShown records whether the welcome message was shown
func (s *Service) SetWelcomeShown(ctx context.Context, sender string, shown bool) (*model.Player, error) {
	return s.Update(ctx, sender, model.PlayerPatch{
		Payload: &model.PayloadPatch{WelcomeShown: model.Ptr(shown)},
	})
}

// FinalizeRegistration moves the player to the registered state, stamps
// registeredAt and adds bonus coins in one write. An empty kingdom keeps
// the current one.
func (s *Service) FinalizeRegistration(ctx context.Context, sender string, k model.Kingdom, bonus int) (*model.Player, error) {
	now := s.clock.Now()
	patch := model.PlayerPatch{
		State:   model.Ptr(model.PlayerStateRegistered),
		Payload: &model.PayloadPatch{RegisteredAt: &now, CoinsDelta: bonus},
	}
	if k != "" {
		patch.Kingdom = &k
	}

	player, err := s.Update(ctx, sender, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Info("player registered",
		slog.String("sender", sender),
		slog.String("kingdom", string(player.Kingdom)),
		slog.Int("bonus", bonus),
	)
	return player, nil
}

// SetKingdomFromGroup sets the kingdom named by groupName. When nothing
// matches the player is only touched. The last write wins.
func (s *Service) SetKingdomFromGroup(ctx context.Context, sender, groupName string) (*model.Player, error) {
	var patch model.PlayerPatch
	if k, ok := s.resolver.Resolve(groupName); ok {
		patch.Kingdom = &k
	}
	return s.Update(ctx, sender, patch)
}
