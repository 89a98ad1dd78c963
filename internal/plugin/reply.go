package plugin

import (
	"encoding/json"
	"fmt"

	"github.com/mcoot/kingdom-bot/internal/model"
)

// ReplyContext collects the reply a plugin chooses while handling one event
type ReplyContext struct {
	reply *model.Reply
}

// NewReplyContext returns an empty reply context
func NewReplyContext() *ReplyContext {
	return &ReplyContext{}
}

// Reply records msg as the reply and returns it. Strings are used as is;
// replies, Stringers and maps with a non-empty "message" key contribute
// their message; anything else is JSON encoded. A later call replaces an
// earlier one.
func (rc *ReplyContext) Reply(msg any) model.Reply {
	r := model.Reply{Message: replyText(msg)}
	rc.reply = &r
	return r
}

// Replied reports whether Reply was called. An empty message still counts.
func (rc *ReplyContext) Replied() bool {
	return rc.reply != nil
}

// Message returns the recorded reply text
func (rc *ReplyContext) Message() string {
	if rc.reply == nil {
		return ""
	}
	return rc.reply.Message
}

func replyText(msg any) string {
	switch m := msg.(type) {
	case string:
		return m
	case model.Reply:
		return m.Message
	case *model.Reply:
		if m != nil {
			return m.Message
		}
	case fmt.Stringer:
		return m.String()
	case map[string]string:
		if text := m["message"]; text != "" {
			return text
		}
	case map[string]any:
		if text, ok := m["message"].(string); ok && text != "" {
			return text
		}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Sprint(msg)
	}
	return string(data)
}
