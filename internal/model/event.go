package model

import "time"

// DefaultSender is used when an inbound event carries no sender
const DefaultSender = "unknown"

// Event is a single inbound message routed through the dispatcher
type Event struct {
	Sender           string
	Message          string // trimmed raw text
	IsGroup          bool
	GroupParticipant string // raw "participant <sep> group" string
	Participant      string // parsed from GroupParticipant
	GroupName        string // parsed group, or the raw participant string
	Query            map[string]any
}

// Reply is a single outbound message
type Reply struct {
	Message string `json:"message"`
}

// Response is the result of dispatching one event.
// Replies is empty when no plugin answered.
type Response struct {
	Replies []Reply `json:"replies"`
}

// NoReply is the response used when no plugin answered
func NoReply() Response {
	return Response{Replies: []Reply{}}
}

// Replied reports whether the response carries a reply
func (r Response) Replied() bool {
	return len(r.Replies) > 0
}

// LogEventType classifies interaction log entries
type LogEventType string

const (
	LogEventInbound LogEventType = "inbound"
	LogEventReply   LogEventType = "reply"
	LogEventNoReply LogEventType = "no_reply"
	LogEventError   LogEventType = "error"
)

// LogEntry is one row of the interaction log
type LogEntry struct {
	ID        string
	Sender    string
	Event     LogEventType
	Payload   []byte // JSON
	CreatedAt time.Time
}
