package redis

import (
	"encoding/json"
	"time"

	"github.com/mcoot/kingdom-bot/internal/model"
)

// playerRecord mirrors the players table: the payload is kept as an opaque
// JSON string so a damaged payload does not make the whole record unreadable
type playerRecord struct {
	Sender        string `json:"sender"`
	DisplayName   string `json:"display_name"`
	Kingdom       string `json:"kingdom,omitempty"`
	State         string `json:"state"`
	ExpectedType  string `json:"expected_type,omitempty"`
	ExpectedMeta  string `json:"expected_meta,omitempty"`
	ExpectedUntil int64  `json:"expected_until,omitempty"` // unix ms
	Data          string `json:"data"`
	CreatedAt     int64  `json:"created_at"`
	UpdatedAt     int64  `json:"updated_at"`
}

type logRecord struct {
	ID        string          `json:"id"`
	Sender    string          `json:"sender"`
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt int64           `json:"created_at"`
}

func encodePlayer(p *model.Player) ([]byte, error) {
	data, err := model.EncodePayload(p.Payload)
	if err != nil {
		return nil, err
	}
	rec := playerRecord{
		Sender:       p.Sender,
		DisplayName:  p.DisplayName,
		Kingdom:      string(p.Kingdom),
		State:        string(p.State),
		ExpectedType: p.Expectation.Type,
		ExpectedMeta: string(p.Expectation.Meta),
		Data:         string(data),
		CreatedAt:    p.CreatedAt.UnixMilli(),
		UpdatedAt:    p.UpdatedAt.UnixMilli(),
	}
	if p.Expectation.Until != nil {
		rec.ExpectedUntil = p.Expectation.Until.UnixMilli()
	}
	return json.Marshal(rec)
}

// decodePlayer parses a stored record. A damaged payload is reported through
// onPayloadErr and replaced by the empty payload.
func decodePlayer(raw []byte, onPayloadErr func(sender string, err error)) (*model.Player, error) {
	var rec playerRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	payload, err := model.DecodePayload([]byte(rec.Data))
	if err != nil && onPayloadErr != nil {
		onPayloadErr(rec.Sender, err)
	}

	p := &model.Player{
		Sender:      rec.Sender,
		DisplayName: rec.DisplayName,
		Kingdom:     model.Kingdom(rec.Kingdom),
		State:       model.PlayerState(rec.State),
		Expectation: model.Expectation{Type: rec.ExpectedType},
		Payload:     payload,
		CreatedAt:   time.UnixMilli(rec.CreatedAt).UTC(),
		UpdatedAt:   time.UnixMilli(rec.UpdatedAt).UTC(),
	}
	if rec.ExpectedMeta != "" {
		p.Expectation.Meta = json.RawMessage(rec.ExpectedMeta)
	}
	if rec.ExpectedUntil != 0 {
		until := time.UnixMilli(rec.ExpectedUntil).UTC()
		p.Expectation.Until = &until
	}
	return p, nil
}
