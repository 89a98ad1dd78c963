package response

import "github.com/mcoot/kingdom-bot/internal/model"

// Banner is the plain text served on GET /
const Banner = "AutoResponder webhook running. POST JSON to /"

// Health is the body of GET /health
type Health struct {
	OK bool `json:"ok"`
}

// Replies is the webhook response body
type Replies struct {
	Replies []Reply `json:"replies"`
}

// Reply is one outbound message
type Reply struct {
	Message string `json:"message"`
}

// RepliesFromModel converts a dispatch response, always producing a non-nil list
func RepliesFromModel(r model.Response) Replies {
	out := Replies{Replies: make([]Reply, 0, len(r.Replies))}
	for _, reply := range r.Replies {
		out.Replies = append(out.Replies, Reply{Message: reply.Message})
	}
	return out
}

// Empty is the body returned when there is nothing to say or the request failed
func Empty() Replies {
	return Replies{Replies: []Reply{}}
}
