// Package plugin defines the message handler contract and the registry
// that orders handlers by priority.
package plugin

import (
	"context"
	"fmt"

	"github.com/mcoot/kingdom-bot/internal/model"
)

// DefaultPriority applies to plugins that do not implement Prioritized
const DefaultPriority = 100

// Plugin is a message handler. The dispatcher calls CanHandle for each
// plugin in priority order and Handle for those that accept.
type Plugin interface {
	CanHandle(ev *model.Event, p *model.Player) (bool, error)
	Handle(ctx context.Context, ev *model.Event, p *model.Player, rc *ReplyContext) error
}

// Prioritized plugins run in ascending priority order
type Prioritized interface {
	Priority() int
}

// Named plugins are identified by name in logs and config overrides
type Named interface {
	Name() string
}

// Loader constructs a plugin. A failing loader is skipped by the registry.
type Loader func() (Plugin, error)

// Static returns a loader for an already constructed plugin
func Static(p Plugin) Loader {
	return func() (Plugin, error) { return p, nil }
}

// PriorityOf returns the plugin's declared priority or DefaultPriority
func PriorityOf(p Plugin) int {
	if pr, ok := p.(Prioritized); ok {
		return pr.Priority()
	}
	return DefaultPriority
}

// NameOf returns the plugin's declared name or its Go type
func NameOf(p Plugin) string {
	if n, ok := p.(Named); ok && n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("%T", p)
}
