package model

import (
	"encoding/json"
	"time"
)

// PlayerState is the registration state of a player
type PlayerState string

const (
	PlayerStateNew        PlayerState = "new"        // Created on first contact
	PlayerStateRegistered PlayerState = "registered" // Finalized registration
)

// Kingdom is an in-game faction label inferred from group chat names.
// The empty Kingdom means unset.
type Kingdom string

// Player is the persistent record for one sender
type Player struct {
	Sender      string // immutable identity key
	DisplayName string
	Kingdom     Kingdom
	State       PlayerState
	Expectation Expectation
	Payload     Payload
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Expectation records that the bot is waiting for a specific follow-up message
// from this player until a deadline. The zero value means no expectation.
type Expectation struct {
	Type  string
	Meta  json.RawMessage
	Until *time.Time
}

// IsSet reports whether any expectation field is set
func (e Expectation) IsSet() bool {
	return e.Type != "" || len(e.Meta) > 0 || e.Until != nil
}

// ExpiredAt reports whether the expectation deadline has passed at now
func (e Expectation) ExpiredAt(now time.Time) bool {
	return e.Until != nil && now.After(*e.Until)
}

// DecodeMeta unmarshals the expectation metadata into v
func (e Expectation) DecodeMeta(v any) error {
	if len(e.Meta) == 0 {
		return nil
	}
	return json.Unmarshal(e.Meta, v)
}

// Expects reports whether the player has an active expectation of the given type
func (p *Player) Expects(expectationType string, now time.Time) bool {
	return p.Expectation.Type == expectationType && !p.Expectation.ExpiredAt(now)
}

// IsRegistered reports whether the player finished registration
func (p *Player) IsRegistered() bool {
	return p.State == PlayerStateRegistered
}

// Clone returns a deep copy of the player
func (p *Player) Clone() *Player {
	c := *p
	if p.Expectation.Meta != nil {
		c.Expectation.Meta = append(json.RawMessage(nil), p.Expectation.Meta...)
	}
	if p.Expectation.Until != nil {
		until := *p.Expectation.Until
		c.Expectation.Until = &until
	}
	c.Payload = p.Payload.Clone()
	return &c
}

// NewPlayer returns a freshly created player with the default payload
func NewPlayer(sender, displayName string, now time.Time) *Player {
	if displayName == "" {
		displayName = sender
	}
	return &Player{
		Sender:      sender,
		DisplayName: displayName,
		State:       PlayerStateNew,
		Payload:     DefaultPayload(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
