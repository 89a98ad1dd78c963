// Package dispatch routes one inbound event through player resolution,
// expectation expiry, kingdom resolution and the plugin chain.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mcoot/kingdom-bot/internal/dependencies/clock"
	"github.com/mcoot/kingdom-bot/internal/model"
	"github.com/mcoot/kingdom-bot/internal/plugin"
	"github.com/mcoot/kingdom-bot/internal/services/players"
	"github.com/mcoot/kingdom-bot/internal/storage"
)

// Config controls optional dispatcher behaviour
type Config struct {
	// SerializeSenders runs events from the same sender one at a time
	SerializeSenders bool
}

// Dispatcher runs the per-event state machine
type Dispatcher struct {
	players  *players.Service
	registry *plugin.Registry
	logs     storage.Storage
	clock    clock.Clock
	logger   *slog.Logger
	cfg      Config
	locks    *senderLocks
}

// New creates a Dispatcher. logs receives the interaction log and may be nil.
func New(
	players *players.Service,
	registry *plugin.Registry,
	logs storage.Storage,
	clock clock.Clock,
	logger *slog.Logger,
	cfg Config,
) *Dispatcher {
	return &Dispatcher{
		players:  players,
		registry: registry,
		logs:     logs,
		clock:    clock,
		logger:   logger.With(slog.String("component", "dispatcher")),
		cfg:      cfg,
		locks:    newSenderLocks(),
	}
}

// Handle processes one event and returns at most one reply. Errors are
// request-level failures; plugin failures never surface here.
func (d *Dispatcher) Handle(ctx context.Context, ev model.Event) (model.Response, error) {
	ev = NormalizeEvent(ev)
	logger := d.logger.With(slog.String("sender", ev.Sender))

	if d.cfg.SerializeSenders {
		unlock := d.locks.lock(ev.Sender)
		defer unlock()
	}

	d.appendLog(ctx, logger, ev.Sender, model.LogEventInbound, inboundPayload{
		Message:          ev.Message,
		IsGroup:          ev.IsGroup,
		GroupParticipant: ev.GroupParticipant,
		GroupName:        ev.GroupName,
	})

	// RESOLVE_PLAYER
	player, err := d.players.CreateOrGet(ctx, ev.Sender, ev.Sender)
	if err != nil {
		return d.fail(ctx, logger, ev.Sender, "resolve player", err)
	}

	// EXPIRE_CHECK
	player, expired, err := d.players.ExpireExpectation(ctx, player)
	if err != nil {
		return d.fail(ctx, logger, ev.Sender, "expire expectation", err)
	}
	if expired {
		logger.Debug("cleared expired expectation")
	}

	// RESOLVE_KINGDOM
	player, err = d.players.SetKingdomFromGroup(ctx, ev.Sender, ev.GroupName)
	if err != nil {
		return d.fail(ctx, logger, ev.Sender, "resolve kingdom", err)
	}

	// PLUGIN_SCAN
	reply, handledBy, ok := d.scan(ctx, logger, &ev, player)
	if !ok {
		d.appendLog(ctx, logger, ev.Sender, model.LogEventNoReply, struct{}{})
		return model.NoReply(), nil
	}

	// DRAIN_NOTIFICATIONS
	notes, err := d.players.PopNotifications(ctx, ev.Sender)
	if err != nil {
		return d.fail(ctx, logger, ev.Sender, "drain notifications", err)
	}
	message := AttachNotifications(reply, notes)

	// RESPOND
	logger.Info("reply sent",
		slog.String("plugin", handledBy),
		slog.Int("notifications", len(notes)),
	)
	d.appendLog(ctx, logger, ev.Sender, model.LogEventReply, replyPayload{
		Message: message,
		Plugin:  handledBy,
	})
	return model.Response{Replies: []model.Reply{{Message: message}}}, nil
}

// scan offers the event to each plugin in order and returns the first reply
func (d *Dispatcher) scan(ctx context.Context, logger *slog.Logger, ev *model.Event, player *model.Player) (string, string, bool) {
	for _, e := range d.registry.Entries() {
		name := e.Name
		view := player.Clone()

		ok, err := e.CanHandle(ev, view)
		if err != nil {
			logger.Warn("plugin predicate failed",
				slog.String("plugin", name),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !ok {
			continue
		}

		rc := plugin.NewReplyContext()
		if err := e.Handle(ctx, ev, view, rc); err != nil {
			logger.Warn("plugin handler failed",
				slog.String("plugin", name),
				slog.String("error", err.Error()),
			)
			continue
		}
		if rc.Replied() {
			return rc.Message(), name, true
		}
	}
	return "", "", false
}

func (d *Dispatcher) fail(ctx context.Context, logger *slog.Logger, sender, stage string, err error) (model.Response, error) {
	logger.Error("dispatch failed",
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
	d.appendLog(ctx, logger, sender, model.LogEventError, errorPayload{Stage: stage, Error: err.Error()})
	return model.NoReply(), fmt.Errorf("%s: %w", stage, err)
}

type inboundPayload struct {
	Message          string `json:"message"`
	IsGroup          bool   `json:"isGroup"`
	GroupParticipant string `json:"groupParticipant,omitempty"`
	GroupName        string `json:"groupName,omitempty"`
}

type replyPayload struct {
	Message string `json:"message"`
	Plugin  string `json:"plugin"`
}

type errorPayload struct {
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// appendLog writes an interaction log entry; failures are only logged
func (d *Dispatcher) appendLog(ctx context.Context, logger *slog.Logger, sender string, event model.LogEventType, payload any) {
	if d.logs == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Warn("failed to encode log payload", slog.String("error", err.Error()))
		return
	}
	entry := &model.LogEntry{
		ID:        uuid.NewString(),
		Sender:    sender,
		Event:     event,
		Payload:   data,
		CreatedAt: d.clock.Now(),
	}
	if err := d.logs.AppendLog(ctx, entry); err != nil {
		logger.Warn("failed to append interaction log",
			slog.String("event", string(event)),
			slog.String("error", err.Error()),
		)
	}
}
