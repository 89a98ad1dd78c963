package dispatch

import (
	"strings"

	"github.com/mcoot/kingdom-bot/internal/model"
	"github.com/mcoot/kingdom-bot/internal/services/kingdom"
)

// NormalizeEvent fills in the sender default, trims the message and derives
// the participant and group name from the raw group participant string
func NormalizeEvent(ev model.Event) model.Event {
	if ev.Sender == "" {
		ev.Sender = model.DefaultSender
	}
	ev.Message = strings.TrimSpace(ev.Message)

	if gp, ok := kingdom.ParseGroupParticipant(ev.GroupParticipant); ok {
		if ev.Participant == "" {
			ev.Participant = gp.Participant
		}
		if ev.GroupName == "" {
			ev.GroupName = gp.Group
		}
	}
	if ev.GroupName == "" {
		ev.GroupName = ev.GroupParticipant
	}
	return ev
}
