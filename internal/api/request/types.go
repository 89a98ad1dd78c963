package request

import (
	"strconv"

	"github.com/mcoot/kingdom-bot/internal/model"
)

// WebhookRequest is the body posted by the messaging gateway
type WebhookRequest struct {
	Query Query `json:"query"`
}

// Query carries the inbound message fields. Values are loosely typed
// because gateways send numbers and booleans as either JSON type.
type Query map[string]any

// Event converts the query into a dispatcher event
func (q Query) Event() model.Event {
	raw := make(map[string]any, len(q))
	for k, v := range q {
		raw[k] = v
	}
	return model.Event{
		Sender:           q.Text("sender"),
		Message:          q.Text("message"),
		IsGroup:          q.Truthy("isGroup"),
		GroupParticipant: q.Text("groupParticipant"),
		Query:            raw,
	}
}

// Text returns the field as text; missing, null and false become ""
func (q Query) Text(key string) string {
	switch v := q[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "true"
		}
	}
	return ""
}

// Truthy reports whether the field holds a non-empty, non-zero value
func (q Query) Truthy(key string) bool {
	switch v := q[key].(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	default:
		return true
	}
}
