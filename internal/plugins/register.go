package plugins

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/kingdom-bot/internal/model"
	"github.com/mcoot/kingdom-bot/internal/plugin"
)

// RegistrationBonus is granted once when a player registers
const RegistrationBonus = 50

var registerKeywords = []string{"تسجيل", "register"}

// Register finalizes registration for players who already belong to a kingdom
type Register struct {
	deps Deps
}

// NewRegister creates the registration plugin
func NewRegister(deps Deps) (*Register, error) {
	deps, err := deps.prepare()
	if err != nil {
		return nil, err
	}
	return &Register{deps: deps}, nil
}

func (r *Register) Name() string  { return "register" }
func (r *Register) Priority() int { return 20 }

func (r *Register) CanHandle(ev *model.Event, p *model.Player) (bool, error) {
	return !p.IsRegistered() && matchesAny(ev.Message, registerKeywords...), nil
}

func (r *Register) Handle(ctx context.Context, _ *model.Event, p *model.Player, rc *plugin.ReplyContext) error {
	if p.Kingdom == "" {
		rc.Reply("انضم إلى مجموعة مملكتك أولا ثم أرسل تسجيل.")
		return nil
	}

	registered, err := r.deps.Players.FinalizeRegistration(ctx, p.Sender, p.Kingdom, RegistrationBonus)
	if err != nil {
		return err
	}
	if _, err := r.deps.Players.AddNotification(ctx, p.Sender,
		fmt.Sprintf("حصلت على %d عملة كهدية تسجيل", RegistrationBonus)); err != nil {
		// best-effort
		r.deps.Logger.Warn("failed to queue registration notice",
			slog.String("sender", p.Sender),
			slog.String("error", err.Error()))
	}

	rc.Reply(fmt.Sprintf("تم تسجيلك في مملكة %s!", registered.Kingdom))
	return nil
}
