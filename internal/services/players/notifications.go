package players

import (
	"context"
	"errors"

	"github.com/mcoot/kingdom-bot/internal/model"
)

var errNothingToDrain = errors.New("no notifications")

// AddNotification appends a notification to the player's queue
func (s *Service) AddNotification(ctx context.Context, sender, text string) (*model.Player, error) {
	now := s.clock.Now()
	return s.storage.UpdatePlayer(ctx, sender, func(p *model.Player) error {
		p.Payload.Notifications = append(p.Payload.Notifications, model.Notification{
			Text:      text,
			CreatedAt: now,
		})
		p.UpdatedAt = now
		return nil
	})
}

// PopNotifications returns the queued notifications in insertion order and
// clears the queue in the same atomic update. Unknown senders and empty
// queues yield an empty slice.
func (s *Service) PopNotifications(ctx context.Context, sender string) ([]model.Notification, error) {
	now := s.clock.Now()
	drained := []model.Notification{}

	_, err := s.storage.UpdatePlayer(ctx, sender, func(p *model.Player) error {
		if len(p.Payload.Notifications) == 0 {
			return errNothingToDrain
		}
		drained = append([]model.Notification{}, p.Payload.Notifications...)
		p.Payload.Notifications = []model.Notification{}
		p.UpdatedAt = now
		return nil
	})
	switch {
	case errors.Is(err, errNothingToDrain), errors.Is(err, model.ErrPlayerNotFound):
		return []model.Notification{}, nil
	case err != nil:
		return nil, err
	}
	return drained, nil
}
