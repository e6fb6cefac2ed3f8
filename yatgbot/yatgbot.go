package yatgbot

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/YaCodeDev/GoYaTgBotAPI/yacache"
	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
	"github.com/YaCodeDev/GoYaTgBotAPI/yalogger"
	"github.com/YaCodeDev/GoYaTgBotAPI/yatgbot/messagequeue"
	"github.com/YaCodeDev/GoYaTgBotAPI/yatgclient"
	"github.com/YaCodeDev/GoYaTgBotAPI/yatgstorage"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/dcs"
	"github.com/gotd/td/telegram/updates"
	"github.com/gotd/td/tg"
	"gorm.io/gorm"
)

const fileCachePrefix = "yatgbot:file:"

// InitOptions configure InitYaTgBot.
type InitOptions[T yacache.Container] struct {
	AppID    int
	AppHash  string
	BotToken string
	// PoolDB keeps the encrypted MTProto session.
	PoolDB *gorm.DB
	// Cache keeps the update state and, unless FileCache is set, the file cache.
	Cache     yacache.Cache[T]
	FileCache FileCache
	// Resolver dials Telegram through a proxy when set, see yatgclient.NewProxyResolver.
	Resolver dcs.Resolver

	QueueWorkers   uint
	QueueInterval  time.Duration
	AllowedUpdates AllowedUpdates
	Router         *RouterGroup
	Log            yalogger.Logger
}

// Instance is a started bot.
type Instance struct {
	Bot    *Bot
	Client *yatgclient.Client
	// Errors receives the failure of the updates manager, if any.
	Errors <-chan yatgclient.EntityError
}

// InitYaTgBot connects and authorizes a bot, starts the updates manager and
// returns a Bot whose updates flow into options.Router.
//
// Example usage:
//
//	instance, err := yatgbot.InitYaTgBot(ctx, yatgbot.InitOptions[*redis.Client]{
//	    AppID:        appID,
//	    AppHash:      appHash,
//	    BotToken:     botToken,
//	    PoolDB:       poolDB,
//	    Cache:        cache,
//	    QueueWorkers: 4,
//	    Router:       mainRouter,
//	    Log:          log,
//	})
//
//	if err != nil {
//	    // Handle error
//	}
func InitYaTgBot[T yacache.Container](ctx context.Context, options InitOptions[T]) (*Instance, yaerrors.Error) {
	log := options.Log
	if log == nil {
		log = yalogger.NewBaseLogger(nil).NewLogger()
	}

	botID, yaErr := BotIDFromToken(options.BotToken)
	if yaErr != nil {
		return nil, yaErr.Wrap("failed to init bot")
	}

	gormSessionRepo, yaErr := yatgstorage.NewGormSessionRepo(options.PoolDB)
	if yaErr != nil {
		return nil, yaErr.Wrap("failed to init bot")
	}

	sessionStorage := yatgstorage.NewSessionStorageWithCustomRepo(botID, options.BotToken, gormSessionRepo)
	stateStorage := yatgstorage.NewStateStorage(options.Cache, log)

	fileCache := options.FileCache
	if fileCache == nil {
		fileCache = yatgstorage.NewCacheFileCache(options.Cache, fileCachePrefix, 0)
	}

	var bot *Bot

	gaps := yatgclient.NewUpdatesManager(
		telegram.UpdateHandlerFunc(func(ctx context.Context, u tg.UpdatesClass) error {
			return bot.Handle(ctx, u)
		}),
		stateStorage,
	)

	client := yatgclient.NewClient(
		yatgclient.ClientOptions{
			AppID:    options.AppID,
			AppHash:  options.AppHash,
			EntityID: botID,
			TelegramOptions: telegram.Options{
				SessionStorage: sessionStorage.TelegramSessionStorageCompatible(),
				UpdateHandler:  gaps,
				Resolver:       options.Resolver,
			},
		},
		log,
	)

	var queue *messagequeue.Dispatcher

	if options.QueueWorkers > 0 {
		interval := options.QueueInterval
		if interval == 0 {
			interval = messagequeue.DefaultInterval
		}

		queue = messagequeue.NewDispatcher(ctx, options.QueueWorkers, interval, log)
	}

	bot = New(client.API(), Options{
		SelfID:         botID,
		FileCache:      fileCache,
		Queue:          queue,
		AllowedUpdates: options.AllowedUpdates,
		Router:         options.Router,
		Log:            log,
	})

	if err := client.BackgroundConnect(ctx); err != nil {
		return nil, err.Wrap("failed to init bot")
	}

	if err := client.BotAuthorization(ctx, options.BotToken); err != nil {
		return nil, err.Wrap("failed to init bot")
	}

	if _, err := bot.GetMe(ctx); err != nil {
		return nil, err.Wrap("failed to init bot")
	}

	errs := client.RunUpdatesManager(ctx, gaps, updates.AuthOptions{IsBot: true})

	return &Instance{
		Bot:    bot,
		Client: client,
		Errors: errs,
	}, nil
}

// BotIDFromToken returns the bot user ID encoded before the colon of a bot token.
func BotIDFromToken(botToken string) (int64, yaerrors.Error) {
	head, _, _ := strings.Cut(botToken, ":")

	botID, err := strconv.ParseInt(strings.TrimSpace(head), 10, 64)
	if err != nil {
		return 0, yaerrors.FromError(http.StatusBadRequest, err, "invalid bot token provided")
	}

	if botID <= 0 {
		return 0, yaerrors.FromString(http.StatusBadRequest, "invalid bot token provided")
	}

	return botID, nil
}
