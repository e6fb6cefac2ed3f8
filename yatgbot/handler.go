package yatgbot

import (
	"context"

	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
	"github.com/gotd/td/tg"
)

// statusClientClosedRequest reports an update abandoned because ctx is done.
const statusClientClosedRequest = 499

// Handle implements telegram.UpdateHandler. Every update of the batch is
// normalized and passed to the router. Handler failures are logged and do
// not stop the batch, only a done ctx does.
//
// Example usage:
//
//	gaps := yatgclient.NewUpdatesManager(bot, stateStorage)
func (b *Bot) Handle(ctx context.Context, u tg.UpdatesClass) error {
	list, users, chats := updateList(u)
	b.resolver.Collect(users, chats)

	for _, raw := range list {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := b.HandleUpdate(ctx, raw); err != nil {
			b.log.Errorf("Failed to handle %T: %v", raw, err)
		}
	}

	return nil
}

// HandleUpdate normalizes one wire update and dispatches it to the router.
// Suppressed updates and updates no route accepts are dropped.
func (b *Bot) HandleUpdate(ctx context.Context, raw tg.UpdateClass) yaerrors.Error {
	upd, err := b.Normalize(ctx, raw)
	if err != nil {
		return yaerrors.FromError(statusClientClosedRequest, err, "failed to normalize update")
	}

	if upd == nil || b.router == nil {
		return nil
	}

	log := b.log.WithRandomRequestID().WithField("update_id", upd.UpdateID)

	handled, yaErr := b.router.dispatch(ctx, &HandlerData{
		Bot:    b,
		Update: upd,
		Log:    log,
	})
	if yaErr != nil {
		return yaErr.Wrap("failed to dispatch update")
	}

	if !handled {
		log.Debugf("No route for %s update", upd.Type)
	}

	return nil
}
