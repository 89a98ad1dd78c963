package dispatch

import (
	"strings"

	"github.com/mcoot/kingdom-bot/internal/model"
)

const (
	// NotificationHeader introduces the drained notifications in a reply
	NotificationHeader = "🔔═🔔اشعارات جديدة 🔔 ═🔔"
	// NotificationSeparator sits on its own line between notifications
	NotificationSeparator = " ═ ═ ═ ═ ═ ═ ═ ═ ═  "
)

// AttachNotifications appends the notification block to reply.
// With no notifications the reply is returned unchanged.
func AttachNotifications(reply string, notes []model.Notification) string {
	if len(notes) == 0 {
		return reply
	}
	texts := make([]string, len(notes))
	for i, n := range notes {
		texts[i] = n.Text
	}

	var b strings.Builder
	b.WriteString(reply)
	b.WriteString("\n\n")
	b.WriteString(NotificationHeader)
	b.WriteString("\n")
	b.WriteString(strings.Join(texts, "\n"+NotificationSeparator+"\n"))
	return b.String()
}
