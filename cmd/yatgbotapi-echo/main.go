// Command yatgbotapi-echo runs a bot that answers every text message with
// the same text. It is configured from the environment or a .env file:
//
//	APP_ID, APP_HASH, BOT_TOKEN   required
//	DATABASE_PATH                 session database, default yatgbot.db
//	REDIS_ENABLED, REDIS_HOST, ...
//	PROXY                         socks5:// or https://t.me/proxy?... URL
//	ALLOWED_UPDATES               comma separated Bot API update names
package main

import (
	"context"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/YaCodeDev/GoYaTgBotAPI/config"
	"github.com/YaCodeDev/GoYaTgBotAPI/yacache"
	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
	"github.com/YaCodeDev/GoYaTgBotAPI/yalogger"
	"github.com/YaCodeDev/GoYaTgBotAPI/yatgbot"
	"github.com/YaCodeDev/GoYaTgBotAPI/yatgclient"
	"github.com/gotd/td/telegram/dcs"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Redis struct {
	Enabled  bool   `default:"false"`
	Host     string `default:"localhost"`
	Port     uint16 `default:"6379"`
	Password string `default:""`
	DB       int    `default:"0"`
}

type Config struct {
	AppID          int
	AppHash        string
	BotToken       string
	DatabasePath   string                 `default:"yatgbot.db"`
	Proxy          string                 `default:""`
	QueueWorkers   uint                   `default:"4"`
	QueueInterval  time.Duration          `default:"1s"`
	AllowedUpdates yatgbot.AllowedUpdates `default:""`
	LogLevel       yalogger.Level         `default:"info"`
	Redis          Redis
}

var textPattern = regexp.MustCompile(`\S`)

func main() {
	var cfg Config

	config.LoadConfigStructFromEnv(&cfg, nil)

	log := yalogger.NewBaseLogger(&yalogger.Config{
		BaseLoggerType: yalogger.Logrus,
		Level:          cfg.LogLevel,
		FullTimestamp:  true,
	}).NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolDB, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	var resolver dcs.Resolver

	if cfg.Proxy != "" {
		var yaErr yaerrors.Error

		resolver, yaErr = yatgclient.NewProxyResolver(cfg.Proxy, log)
		if yaErr != nil {
			log.Fatalf("Failed to parse proxy: %v", yaErr)
		}
	}

	if cfg.Redis.Enabled {
		cache := yacache.NewCache(yacache.NewRedisClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			log,
		))

		run(ctx, cfg, poolDB, cache, resolver, log)

		return
	}

	run(ctx, cfg, poolDB, yacache.NewCache(yacache.NewMemoryContainer()), resolver, log)
}

func run[T yacache.Container](
	ctx context.Context,
	cfg Config,
	poolDB *gorm.DB,
	cache yacache.Cache[T],
	resolver dcs.Resolver,
	log yalogger.Logger,
) {
	instance, yaErr := yatgbot.InitYaTgBot(ctx, yatgbot.InitOptions[T]{
		AppID:          cfg.AppID,
		AppHash:        cfg.AppHash,
		BotToken:       cfg.BotToken,
		PoolDB:         poolDB,
		Cache:          cache,
		Resolver:       resolver,
		QueueWorkers:   cfg.QueueWorkers,
		QueueInterval:  cfg.QueueInterval,
		AllowedUpdates: cfg.AllowedUpdates,
		Router:         newRouter(),
		Log:            log,
	})
	if yaErr != nil {
		log.Fatalf("Failed to start bot: %v", yaErr)
	}

	me := instance.Bot.Me(ctx)
	log.Infof("Bot @%s is running", me.Username)

	select {
	case <-ctx.Done():
		log.Info("Shutting down")
	case failure, ok := <-instance.Errors:
		if ok {
			log.Errorf("Updates manager of bot %d stopped: %v", failure.EntityID, failure.Err)
		}
	}
}

func newRouter() *yatgbot.RouterGroup {
	router := yatgbot.NewRouterGroup()

	router.AddMiddleware(logUpdate)
	router.OnMessage(start, yatgbot.Command("start"))
	router.OnMessage(echo, yatgbot.TextRegex(textPattern))

	return router
}

func logUpdate(
	ctx context.Context,
	hd *yatgbot.HandlerData,
	upd *yatgbot.Update,
	next yatgbot.HandlerNext,
) yaerrors.Error {
	started := time.Now()
	err := next(ctx, hd, upd)

	hd.Log.Debugf("Handled %s in %s", upd.Type, time.Since(started))

	return err
}

func start(ctx context.Context, hd *yatgbot.HandlerData, msg *yatgbot.Message) yaerrors.Error {
	_, err := hd.Bot.SendMessage(ctx, msg.Chat.ID, "Send me any text and I will send it back.", nil)

	return err
}

func echo(ctx context.Context, hd *yatgbot.HandlerData, msg *yatgbot.Message) yaerrors.Error {
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	_, err := hd.Bot.SendMessage(ctx, msg.Chat.ID, text, &yatgbot.SendOptions{
		ReplyToMessageID: msg.MessageID,
		MessageThreadID:  msg.MessageThreadID,
	})

	return err
}
