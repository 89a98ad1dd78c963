package plugins

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcoot/kingdom-bot/internal/model"
	"github.com/mcoot/kingdom-bot/internal/plugin"
)

var profileKeywords = []string{"ملفي", "profile"}

// Profile shows the player's own record
type Profile struct {
	deps Deps
}

// NewProfile creates the profile plugin
func NewProfile(deps Deps) (*Profile, error) {
	deps, err := deps.prepare()
	if err != nil {
		return nil, err
	}
	return &Profile{deps: deps}, nil
}

func (pr *Profile) Name() string  { return "profile" }
func (pr *Profile) Priority() int { return 90 }

func (pr *Profile) CanHandle(ev *model.Event, _ *model.Player) (bool, error) {
	return matchesAny(ev.Message, profileKeywords...), nil
}

func (pr *Profile) Handle(_ context.Context, _ *model.Event, p *model.Player, rc *plugin.ReplyContext) error {
	rc.Reply(FormatProfile(p))
	return nil
}

// FormatProfile renders a player summary
func FormatProfile(p *model.Player) string {
	var b strings.Builder
	fmt.Fprintf(&b, "الاسم: %s\n", p.DisplayName)
	fmt.Fprintf(&b, "اللقب: %s\n", orDash(p.Payload.Nickname))
	fmt.Fprintf(&b, "المملكة: %s\n", orDash(string(p.Kingdom)))
	fmt.Fprintf(&b, "العملات: %d\n", p.Payload.Coins)
	if p.IsRegistered() {
		b.WriteString("الحالة: مسجل")
	} else {
		b.WriteString("الحالة: غير مسجل")
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
