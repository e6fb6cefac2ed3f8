// Package yatgclient wraps the gotd MTProto client with the lifecycle steps a
// bot needs: background connection, bot authorization and the updates
// manager that recovers gaps.
package yatgclient

import (
	"context"
	"net/http"

	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
	"github.com/YaCodeDev/GoYaTgBotAPI/yalogger"
	"github.com/gotd/contrib/bg"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/updates"
)

type Client struct {
	*telegram.Client
	entityID int64
	log      yalogger.Logger
}

type ClientOptions struct {
	AppID           int
	AppHash         string
	EntityID        int64
	TelegramOptions telegram.Options
}

func NewClient(options ClientOptions, log yalogger.Logger) *Client {
	if log == nil {
		log = yalogger.NewBaseLogger(nil).NewLogger()
	}

	return &Client{
		Client:   telegram.NewClient(options.AppID, options.AppHash, options.TelegramOptions),
		entityID: options.EntityID,
		log:      log.WithField("entity_id", options.EntityID),
	}
}

// BackgroundConnect connects in a background goroutine and disconnects when
// ctx is cancelled.
func (c *Client) BackgroundConnect(ctx context.Context) yaerrors.Error {
	stop, err := bg.Connect(c.Client, bg.WithContext(ctx))
	if err != nil {
		return yaerrors.FromErrorWithLog(
			http.StatusInternalServerError,
			err,
			"failed to connect background client",
			c.log,
		)
	}

	go func() {
		<-ctx.Done()

		if err := stop(); err != nil {
			c.log.Errorf("Failed to stop telegram client connection: %v", err)
		}
	}()

	return nil
}

// BotAuthorization logs in with botToken unless the stored session is
// already authorized.
func (c *Client) BotAuthorization(ctx context.Context, botToken string) yaerrors.Error {
	status, err := c.Auth().Status(ctx)
	if err != nil {
		return yaerrors.FromRPC(err, "failed to check bot authorization status").WrapWithLog("authorize bot", c.log)
	}

	if status.Authorized {
		return nil
	}

	if _, err := c.Auth().Bot(ctx, botToken); err != nil {
		return yaerrors.FromRPC(err, "failed to authorize bot").WrapWithLog("authorize bot", c.log)
	}

	c.log.Info("Bot authorized")

	return nil
}

// EntityError reports a failure of a long-running task bound to one bot.
type EntityError struct {
	Err      yaerrors.Error
	EntityID int64
}

// RunUpdatesManager starts gaps in the background. The returned channel
// receives at most one error; it is closed when the manager stops.
func (c *Client) RunUpdatesManager(
	ctx context.Context,
	gaps *updates.Manager,
	options updates.AuthOptions,
) <-chan EntityError {
	errs := make(chan EntityError, 1)

	c.log.Debug("Fetching self...")

	user, err := c.Self(ctx)
	if err != nil {
		errs <- EntityError{
			Err:      yaerrors.FromRPC(err, "failed to get self for updates manager"),
			EntityID: c.entityID,
		}
		close(errs)

		return errs
	}

	go func() {
		defer close(errs)

		if err := gaps.Run(ctx, c.API(), user.ID, options); err != nil && ctx.Err() == nil {
			errs <- EntityError{
				Err: yaerrors.FromErrorWithLog(
					http.StatusInternalServerError,
					err,
					"failed to run updates manager",
					c.log,
				),
				EntityID: c.entityID,
			}
		}
	}()

	c.log.Debug("Updates manager started")

	return errs
}

// GapStorage is the persistence the updates manager needs.
type GapStorage interface {
	TelegramStorageCompatible() updates.StateStorage
	TelegramAccessHasherCompatible() updates.ChannelAccessHasher
}

// NewUpdatesManager builds a gap-recovering manager that forwards ordered
// updates to handler.
func NewUpdatesManager(handler telegram.UpdateHandler, storage GapStorage) *updates.Manager {
	return updates.New(updates.Config{
		Handler:      handler,
		Storage:      storage.TelegramStorageCompatible(),
		AccessHasher: storage.TelegramAccessHasherCompatible(),
	})
}
