// Package plugins contains the built-in message handlers.
package plugins

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/mcoot/kingdom-bot/internal/dependencies/clock"
	"github.com/mcoot/kingdom-bot/internal/dependencies/random"
	"github.com/mcoot/kingdom-bot/internal/model"
	"github.com/mcoot/kingdom-bot/internal/plugin"
	"github.com/mcoot/kingdom-bot/internal/services/players"
)

// PlayerStore is the subset of the player service the built-in plugins use
type PlayerStore interface {
	SetWelcomeShown(ctx context.Context, sender string, shown bool) (*model.Player, error)
	FinalizeRegistration(ctx context.Context, sender string, k model.Kingdom, bonus int) (*model.Player, error)
	IsNicknameTaken(ctx context.Context, nickname string) (players.NicknameCheck, error)
	SetPendingNickname(ctx context.Context, sender, nickname string) (*model.Player, error)
	ClearPendingNickname(ctx context.Context, sender string) (*model.Player, error)
	ConfirmNickname(ctx context.Context, sender string) (*model.Player, error)
	SetExpectation(ctx context.Context, sender, expectationType string, meta any, ttl time.Duration) (*model.Player, error)
	ClearExpectation(ctx context.Context, sender string) (*model.Player, error)
	AddNotification(ctx context.Context, sender, text string) (*model.Player, error)
}

var _ PlayerStore = (*players.Service)(nil)

// Deps are the collaborators shared by the built-in plugins
type Deps struct {
	Players PlayerStore
	Clock   clock.Clock
	Random  random.Random
	Logger  *slog.Logger
}

var errMissingPlayers = errors.New("player store is required")

// Loaders returns a loader for every built-in plugin
func Loaders(deps Deps) []plugin.Loader {
	return []plugin.Loader{
		func() (plugin.Plugin, error) { return NewWelcome(deps) },
		func() (plugin.Plugin, error) { return NewRegister(deps) },
		func() (plugin.Plugin, error) { return NewNickname(deps) },
		func() (plugin.Plugin, error) { return NewProfile(deps) },
	}
}

// prepare checks required collaborators and fills in defaults
func (d Deps) prepare() (Deps, error) {
	if d.Players == nil {
		return d, errMissingPlayers
	}
	if d.Clock == nil {
		d.Clock = clock.New()
	}
	if d.Random == nil {
		d.Random = random.New()
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	d.Logger = d.Logger.With(slog.String("component", "plugins"))
	return d, nil
}

func (d Deps) now() time.Time {
	return d.Clock.Now()
}

// fold normalizes message text for keyword comparison
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// matchesAny reports whether the folded message equals one of the keywords
func matchesAny(message string, keywords ...string) bool {
	m := fold(message)
	for _, k := range keywords {
		if m == fold(k) {
			return true
		}
	}
	return false
}

// cutKeyword strips a leading keyword (followed by a space) from message
func cutKeyword(message string, keywords ...string) (string, bool) {
	trimmed := strings.TrimSpace(message)
	head, rest, found := strings.Cut(trimmed, " ")
	if !found {
		return "", false
	}
	for _, k := range keywords {
		if fold(head) == fold(k) {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}
