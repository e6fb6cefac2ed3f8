package yatgbot

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/YaCodeDev/GoYaTgBotAPI/yacache"
	"github.com/YaCodeDev/GoYaTgBotAPI/yalogger"
	"github.com/YaCodeDev/GoYaTgBotAPI/yatgbot/messagequeue"
)

// Bot adapts an MTProto bot session to the Bot API model. It normalizes
// incoming updates, materializes messages and builds outbound requests.
// A Bot is safe for concurrent use.
type Bot struct {
	rpc      RPC
	resolver *Resolver
	files    FileCache
	queue    *messagequeue.Dispatcher
	router   *RouterGroup
	log      yalogger.Logger

	selfID   int64
	allowed  AllowedUpdates
	updateID atomic.Int64
	polls    yacache.Cache[*yacache.MemoryContainer]
	pollTTL  time.Duration
}

// Options configure a Bot. Only SelfID is required.
type Options struct {
	// SelfID is the user ID of the bot account.
	SelfID int64
	// FileCache keeps derived values such as sticker set names. Optional.
	FileCache FileCache
	// Queue paces outbound calls. Without a queue calls run inline.
	Queue *messagequeue.Dispatcher
	// AllowedUpdates selects the update types Normalize emits. The zero
	// value means DefaultAllowedUpdates.
	AllowedUpdates AllowedUpdates
	// Router receives the updates passed to Handle.
	Router *RouterGroup
	Log    yalogger.Logger
	// FirstUpdateID is the ID the first emitted update gets minus one.
	FirstUpdateID int64
	// PollTTL bounds how long a seen poll is remembered for mapping votes.
	// Zero means DefaultPollTTL.
	PollTTL time.Duration
}

// DefaultPollTTL is how long polls are remembered when Options.PollTTL is zero.
const DefaultPollTTL = 7 * 24 * time.Hour

// New builds a Bot on top of rpc, usually the API of a connected client.
//
// Example:
//
//	bot := yatgbot.New(client.API(), yatgbot.Options{SelfID: botID, Router: router, Log: log})
//	msg, err := bot.SendMessage(ctx, chatID, "hello", nil)
func New(rpc RPC, options Options) *Bot {
	log := options.Log
	if log == nil {
		log = yalogger.NewBaseLogger(nil).NewLogger()
	}

	bot := &Bot{
		rpc:      rpc,
		resolver: NewResolver(rpc, log),
		files:    options.FileCache,
		queue:    options.Queue,
		router:   options.Router,
		log:      log.WithField("bot_id", options.SelfID),
		selfID:   options.SelfID,
		allowed:  options.AllowedUpdates,
		polls:    yacache.NewCache(yacache.NewMemoryContainer()),
		pollTTL:  options.PollTTL,
	}

	if bot.pollTTL <= 0 {
		bot.pollTTL = DefaultPollTTL
	}

	bot.updateID.Store(options.FirstUpdateID)

	return bot
}

// Me returns the bot user. A failed lookup yields a stub with the bot ID.
func (b *Bot) Me(ctx context.Context) *User {
	return b.resolver.ResolveUser(ctx, b.selfID)
}

// ID returns the user ID of the bot.
func (b *Bot) ID() int64 {
	return b.selfID
}

func (b *Bot) Resolver() *Resolver {
	return b.resolver
}
