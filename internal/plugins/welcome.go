package plugins

import (
	"context"
	"fmt"

	"github.com/mcoot/kingdom-bot/internal/dependencies/random"
	"github.com/mcoot/kingdom-bot/internal/model"
	"github.com/mcoot/kingdom-bot/internal/plugin"
)

var greetings = []string{
	"مرحبا بك في عالم الممالك!",
	"أهلا بك أيها المغامر!",
	"Welcome to the kingdoms, traveller!",
}

// Welcome greets a player the first time they write
type Welcome struct {
	deps Deps
}

// NewWelcome creates the welcome plugin
func NewWelcome(deps Deps) (*Welcome, error) {
	deps, err := deps.prepare()
	if err != nil {
		return nil, err
	}
	return &Welcome{deps: deps}, nil
}

func (w *Welcome) Name() string  { return "welcome" }
func (w *Welcome) Priority() int { return 10 }

func (w *Welcome) CanHandle(_ *model.Event, p *model.Player) (bool, error) {
	return !p.Payload.WelcomeShown, nil
}

func (w *Welcome) Handle(ctx context.Context, _ *model.Event, p *model.Player, rc *plugin.ReplyContext) error {
	if _, err := w.deps.Players.SetWelcomeShown(ctx, p.Sender, true); err != nil {
		return err
	}
	greeting := random.Pick(w.deps.Random, greetings)
	rc.Reply(fmt.Sprintf("%s\nأرسل \"%s\" للتسجيل.", greeting, registerKeywords[0]))
	return nil
}
