package players

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"

	"github.com/mcoot/kingdom-bot/internal/model"
)

// NicknameCheck is the result of a nickname uniqueness lookup
type NicknameCheck struct {
	Taken bool
	By    string // sender holding the nickname
}

// NormalizeNickname trims whitespace and case-folds the nickname
func NormalizeNickname(nickname string) string {
	return cases.Fold().String(strings.TrimSpace(nickname))
}

// IsNicknameTaken scans all players for a matching normalized nickname
func (s *Service) IsNicknameTaken(ctx context.Context, nickname string) (NicknameCheck, error) {
	player, err := s.FindByNickname(ctx, nickname)
	if errors.Is(err, model.ErrPlayerNotFound) {
		return NicknameCheck{}, nil
	}
	if err != nil {
		return NicknameCheck{}, err
	}
	return NicknameCheck{Taken: true, By: player.Sender}, nil
}

// FindByNickname returns the player holding nickname, or model.ErrPlayerNotFound
func (s *Service) FindByNickname(ctx context.Context, nickname string) (*model.Player, error) {
	want := NormalizeNickname(nickname)
	if want == "" {
		return nil, model.ErrPlayerNotFound
	}

	players, err := s.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range players {
		if p.Payload.Nickname == "" {
			continue
		}
		if NormalizeNickname(p.Payload.Nickname) == want {
			return p, nil
		}
	}
	return nil, model.ErrPlayerNotFound
}

// SetPendingNickname stores a nickname awaiting confirmation
func (s *Service) SetPendingNickname(ctx context.Context, sender, nickname string) (*model.Player, error) {
	return s.Update(ctx, sender, model.PlayerPatch{
		Payload: &model.PayloadPatch{PendingNickname: model.Ptr(strings.TrimSpace(nickname))},
	})
}

// ClearPendingNickname drops the nickname awaiting confirmation
func (s *Service) ClearPendingNickname(ctx context.Context, sender string) (*model.Player, error) {
	return s.Update(ctx, sender, model.PlayerPatch{
		Payload: &model.PayloadPatch{PendingNickname: model.Ptr("")},
	})
}

// ConfirmNickname promotes the pending nickname. It fails with
// model.ErrNoPendingNickname when none is pending and with
// model.ErrNicknameTaken when another player took it in the meantime.
func (s *Service) ConfirmNickname(ctx context.Context, sender string) (*model.Player, error) {
	current, err := s.storage.GetPlayer(ctx, sender)
	if err != nil {
		return nil, err
	}
	pending := current.Payload.PendingNickname
	if pending == "" {
		return nil, model.ErrNoPendingNickname
	}

	check, err := s.IsNicknameTaken(ctx, pending)
	if err != nil {
		return nil, err
	}
	if check.Taken && check.By != sender {
		return nil, model.ErrNicknameTaken
	}

	now := s.clock.Now()
	player, err := s.storage.UpdatePlayer(ctx, sender, func(p *model.Player) error {
		if p.Payload.PendingNickname == "" {
			return model.ErrNoPendingNickname
		}
		if p.Payload.PendingNickname != pending {
			// Replaced while we were checking; the new one has not been verified
			return model.ErrConflict
		}
		return model.PlayerPatch{
			Payload: &model.PayloadPatch{
				Nickname:        model.Ptr(pending),
				PendingNickname: model.Ptr(""),
			},
		}.Apply(p, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("nickname confirmed",
		slog.String("sender", sender),
		slog.String("nickname", pending),
	)
	return player, nil
}
