package plugin

import (
	"context"

	"github.com/mcoot/kingdom-bot/internal/model"
)

// CanHandle calls the plugin's CanHandle, converting errors and panics into *Error
func (e Entry) CanHandle(ev *model.Event, player *model.Player) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = &Error{Plugin: e.Name, Stage: StageCanHandle, Err: &PanicError{Value: r}}
		}
	}()

	ok, err = e.Plugin.CanHandle(ev, player)
	if err != nil {
		return false, &Error{Plugin: e.Name, Stage: StageCanHandle, Err: err}
	}
	return ok, nil
}

// Handle calls the plugin's Handle, converting errors and panics into *Error
func (e Entry) Handle(ctx context.Context, ev *model.Event, player *model.Player, rc *ReplyContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Plugin: e.Name, Stage: StageHandle, Err: &PanicError{Value: r}}
		}
	}()

	if err := e.Plugin.Handle(ctx, ev, player, rc); err != nil {
		return &Error{Plugin: e.Name, Stage: StageHandle, Err: err}
	}
	return nil
}
