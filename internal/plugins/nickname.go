package plugins

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/mcoot/kingdom-bot/internal/model"
	"github.com/mcoot/kingdom-bot/internal/plugin"
)

// ExpectNicknameConfirm is the expectation type set while a nickname awaits confirmation
const ExpectNicknameConfirm = "nickname_confirm"

const (
	minNicknameLen = 2
	maxNicknameLen = 20
)

var (
	nicknameKeywords = []string{"لقب", "nick"}
	yesKeywords      = []string{"نعم", "yes"}
	noKeywords       = []string{"لا", "no"}
)

// nicknameMeta is stored with the confirmation expectation
type nicknameMeta struct {
	Nickname string `json:"nickname"`
}

// Nickname lets registered players claim a unique nickname in two steps:
// a request and a yes/no confirmation while the expectation is active.
type Nickname struct {
	deps Deps
}

// NewNickname creates the nickname plugin
func NewNickname(deps Deps) (*Nickname, error) {
	deps, err := deps.prepare()
	if err != nil {
		return nil, err
	}
	return &Nickname{deps: deps}, nil
}

func (n *Nickname) Name() string  { return "nickname" }
func (n *Nickname) Priority() int { return 30 }

func (n *Nickname) CanHandle(ev *model.Event, p *model.Player) (bool, error) {
	if p.Expects(ExpectNicknameConfirm, n.deps.now()) {
		return matchesAny(ev.Message, yesKeywords...) || matchesAny(ev.Message, noKeywords...), nil
	}
	_, ok := cutKeyword(ev.Message, nicknameKeywords...)
	return ok && p.IsRegistered(), nil
}

func (n *Nickname) Handle(ctx context.Context, ev *model.Event, p *model.Player, rc *plugin.ReplyContext) error {
	if p.Expects(ExpectNicknameConfirm, n.deps.now()) {
		return n.confirm(ctx, ev, p, rc)
	}
	requested, _ := cutKeyword(ev.Message, nicknameKeywords...)
	return n.request(ctx, p, requested, rc)
}

func (n *Nickname) request(ctx context.Context, p *model.Player, requested string, rc *plugin.ReplyContext) error {
	length := utf8.RuneCountInString(requested)
	if length < minNicknameLen || length > maxNicknameLen {
		rc.Reply(fmt.Sprintf("اللقب يجب أن يكون بين %d و %d حرفا.", minNicknameLen, maxNicknameLen))
		return nil
	}

	check, err := n.deps.Players.IsNicknameTaken(ctx, requested)
	if err != nil {
		return err
	}
	if check.Taken && check.By != p.Sender {
		rc.Reply(fmt.Sprintf("اللقب %s مستخدم بالفعل.", requested))
		return nil
	}

	if _, err := n.deps.Players.SetPendingNickname(ctx, p.Sender, requested); err != nil {
		return err
	}
	if _, err := n.deps.Players.SetExpectation(ctx, p.Sender, ExpectNicknameConfirm,
		nicknameMeta{Nickname: requested}, 0); err != nil {
		return err
	}
	rc.Reply(fmt.Sprintf("هل تريد اعتماد اللقب %s؟ أرسل نعم أو لا.", requested))
	return nil
}

func (n *Nickname) confirm(ctx context.Context, ev *model.Event, p *model.Player, rc *plugin.ReplyContext) error {
	var meta nicknameMeta
	if err := p.Expectation.DecodeMeta(&meta); err != nil {
		return fmt.Errorf("decode nickname expectation: %w", err)
	}

	if matchesAny(ev.Message, noKeywords...) {
		if _, err := n.deps.Players.ClearPendingNickname(ctx, p.Sender); err != nil {
			return err
		}
		if _, err := n.deps.Players.ClearExpectation(ctx, p.Sender); err != nil {
			return err
		}
		rc.Reply("تم إلغاء تغيير اللقب.")
		return nil
	}

	_, err := n.deps.Players.ConfirmNickname(ctx, p.Sender)
	switch {
	case errors.Is(err, model.ErrNicknameTaken):
		rc.Reply(fmt.Sprintf("عذرا، اللقب %s أخذه لاعب آخر.", meta.Nickname))
		if _, err := n.deps.Players.ClearPendingNickname(ctx, p.Sender); err != nil {
			n.deps.Logger.Warn("failed to clear pending nickname",
				slog.String("sender", p.Sender),
				slog.String("error", err.Error()))
		}
	case errors.Is(err, model.ErrNoPendingNickname):
		rc.Reply("لا يوجد لقب بانتظار التأكيد.")
	case err != nil:
		return err
	default:
		rc.Reply(fmt.Sprintf("أصبح لقبك %s.", meta.Nickname))
	}

	if _, err := n.deps.Players.ClearExpectation(ctx, p.Sender); err != nil {
		return err
	}
	return nil
}
