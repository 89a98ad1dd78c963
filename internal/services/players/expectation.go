package players

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/kingdom-bot/internal/model"
)

// DefaultExpectationTTL is used when SetExpectation is called without a TTL
const DefaultExpectationTTL = 5 * time.Minute

var errExpectationActive = errors.New("expectation still active")

// SetExpectation records that the bot awaits a follow-up of the given type
// until now+ttl. meta is stored as JSON; nil meta is stored as {}.
func (s *Service) SetExpectation(ctx context.Context, sender, expectationType string, meta any, ttl time.Duration) (*model.Player, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	if meta == nil {
		meta = map[string]any{}
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode expectation meta: %w", err)
	}

	until := s.clock.Now().Add(ttl)
	return s.Update(ctx, sender, model.PlayerPatch{
		Expectation: &model.Expectation{
			Type:  expectationType,
			Meta:  raw,
			Until: &until,
		},
	})
}

// ClearExpectation removes any expectation
func (s *Service) ClearExpectation(ctx context.Context, sender string) (*model.Player, error) {
	return s.Update(ctx, sender, model.PlayerPatch{Expectation: &model.Expectation{}})
}

// ExpireExpectation clears the player's expectation if its deadline has
// passed, returning the fresh record and true. Otherwise the given player
// is returned unchanged.
func (s *Service) ExpireExpectation(ctx context.Context, player *model.Player) (*model.Player, bool, error) {
	now := s.clock.Now()
	if !player.Expectation.ExpiredAt(now) {
		return player, false, nil
	}

	expiredType := player.Expectation.Type
	updated, err := s.storage.UpdatePlayer(ctx, player.Sender, func(p *model.Player) error {
		// Re-checked under the update so a freshly set expectation survives
		if !p.Expectation.ExpiredAt(now) {
			return errExpectationActive
		}
		return model.PlayerPatch{Expectation: &model.Expectation{}}.Apply(p, now)
	})
	if errors.Is(err, errExpectationActive) {
		fresh, err := s.storage.GetPlayer(ctx, player.Sender)
		if err != nil {
			return nil, false, err
		}
		return fresh, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	s.logger.Debug("expectation expired",
		slog.String("sender", player.Sender),
		slog.String("type", expiredType),
	)
	return updated, true, nil
}
