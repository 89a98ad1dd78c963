package model

import (
	"encoding/json"
	"time"
)

// Notification is a pending text notice for a player
type Notification struct {
	Text      string
	CreatedAt time.Time
}

type notificationJSON struct {
	Text string `json:"text"`
	At   int64  `json:"at"`
}

// MarshalJSON encodes the notification with a unix millisecond timestamp
func (n Notification) MarshalJSON() ([]byte, error) {
	return json.Marshal(notificationJSON{Text: n.Text, At: n.CreatedAt.UnixMilli()})
}

// UnmarshalJSON decodes a notification written by MarshalJSON
func (n *Notification) UnmarshalJSON(data []byte) error {
	var raw notificationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.Text = raw.Text
	n.CreatedAt = time.UnixMilli(raw.At).UTC()
	return nil
}

// Payload holds the free-form per-player game fields.
// Empty strings stand for null nicknames.
type Payload struct {
	WelcomeShown    bool           `json:"welcomeShown"`
	Notifications   []Notification `json:"notifications"`
	Nickname        string         `json:"nickname,omitempty"`
	Coins           int            `json:"coins"`
	PendingNickname string         `json:"pendingNickname,omitempty"`
	RegisteredAt    *time.Time     `json:"registeredAt,omitempty"`
}

// DefaultPayload is the payload given to newly created players
func DefaultPayload() Payload {
	return Payload{Notifications: []Notification{}}
}

// Clone returns a deep copy of the payload
func (p Payload) Clone() Payload {
	c := p
	if p.Notifications != nil {
		c.Notifications = make([]Notification, len(p.Notifications))
		copy(c.Notifications, p.Notifications)
	}
	if p.RegisteredAt != nil {
		at := *p.RegisteredAt
		c.RegisteredAt = &at
	}
	return c
}

// EncodePayload serializes a payload for storage
func EncodePayload(p Payload) ([]byte, error) {
	if p.Notifications == nil {
		p.Notifications = []Notification{}
	}
	return json.Marshal(p)
}

// DecodePayload parses a stored payload. Empty input yields the empty payload.
// On error the returned payload is empty so callers can fail open.
func DecodePayload(data []byte) (Payload, error) {
	if len(data) == 0 {
		return Payload{Notifications: []Notification{}}, nil
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{Notifications: []Notification{}}, err
	}
	if p.Notifications == nil {
		p.Notifications = []Notification{}
	}
	return p, nil
}
