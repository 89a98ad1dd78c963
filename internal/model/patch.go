package model

import "time"

// PlayerPatch is a partial update to a player record.
// Nil fields are left untouched.
type PlayerPatch struct {
	DisplayName *string
	Kingdom     *Kingdom
	State       *PlayerState
	// Expectation replaces all three expectation fields; the zero
	// Expectation clears them
	Expectation *Expectation
	Payload     *PayloadPatch
}

// PayloadPatch is shallow-merged into the stored payload
type PayloadPatch struct {
	WelcomeShown    *bool
	Notifications   *[]Notification
	Nickname        *string
	PendingNickname *string
	RegisteredAt    *time.Time
	// CoinsDelta is added to the coin balance
	CoinsDelta int
}

// Apply merges the patch into p and stamps UpdatedAt
func (pp PlayerPatch) Apply(p *Player, now time.Time) error {
	if pp.Payload != nil {
		if err := pp.Payload.apply(&p.Payload); err != nil {
			return err
		}
	}
	if pp.DisplayName != nil {
		p.DisplayName = *pp.DisplayName
	}
	if pp.Kingdom != nil {
		p.Kingdom = *pp.Kingdom
	}
	if pp.State != nil {
		p.State = *pp.State
	}
	if pp.Expectation != nil {
		p.Expectation = Expectation{Type: pp.Expectation.Type}
		if pp.Expectation.Meta != nil {
			p.Expectation.Meta = append([]byte(nil), pp.Expectation.Meta...)
		}
		if pp.Expectation.Until != nil {
			until := *pp.Expectation.Until
			p.Expectation.Until = &until
		}
	}
	p.UpdatedAt = now
	return nil
}

func (pp *PayloadPatch) apply(p *Payload) error {
	if pp.CoinsDelta != 0 {
		if p.Coins+pp.CoinsDelta < 0 {
			return ErrInsufficientCoins
		}
		p.Coins += pp.CoinsDelta
	}
	if pp.WelcomeShown != nil {
		p.WelcomeShown = *pp.WelcomeShown
	}
	if pp.Notifications != nil {
		p.Notifications = append([]Notification{}, (*pp.Notifications)...)
	}
	if pp.Nickname != nil {
		p.Nickname = *pp.Nickname
	}
	if pp.PendingNickname != nil {
		p.PendingNickname = *pp.PendingNickname
	}
	if pp.RegisteredAt != nil {
		at := *pp.RegisteredAt
		p.RegisteredAt = &at
	}
	return nil
}

// Ptr returns a pointer to v, for building patches
func Ptr[T any](v T) *T {
	return &v
}
