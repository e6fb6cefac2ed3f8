package yatgbot

import (
	"context"

	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
	"github.com/YaCodeDev/GoYaTgBotAPI/yalogger"
)

// HandlerData holds the dependencies and context for a handler execution.
type HandlerData struct {
	Bot    *Bot
	Update *Update
	Log    yalogger.Logger
}

type (
	// MessageHandler processes messages, edited messages and channel posts.
	MessageHandler func(ctx context.Context, handlerData *HandlerData, msg *Message) yaerrors.Error

	// CallbackHandler processes callback queries.
	CallbackHandler func(ctx context.Context, handlerData *HandlerData, query *CallbackQuery) yaerrors.Error

	InlineQueryHandler func(ctx context.Context, handlerData *HandlerData, query *InlineQuery) yaerrors.Error

	ChosenInlineResultHandler func(
		ctx context.Context,
		handlerData *HandlerData,
		result *ChosenInlineResult,
	) yaerrors.Error

	ChatMemberHandler func(ctx context.Context, handlerData *HandlerData, update *ChatMemberUpdated) yaerrors.Error

	PollHandler func(ctx context.Context, handlerData *HandlerData, poll *Poll) yaerrors.Error

	PollAnswerHandler func(ctx context.Context, handlerData *HandlerData, answer *PollAnswer) yaerrors.Error

	ChatJoinRequestHandler func(ctx context.Context, handlerData *HandlerData, request *ChatJoinRequest) yaerrors.Error

	ShippingQueryHandler func(ctx context.Context, handlerData *HandlerData, query *ShippingQuery) yaerrors.Error

	// PreCheckoutQueryHandler processes pre-checkout queries.
	PreCheckoutQueryHandler func(ctx context.Context, handlerData *HandlerData, query *PreCheckoutQuery) yaerrors.Error
)

// RouterGroup is the main struct that holds routes, sub-routers, and middlewares.
type RouterGroup struct {
	parent      *RouterGroup
	base        []Filter
	sub         []*RouterGroup
	routes      []route
	middlewares []HandlerMiddleware
}

// route represents a single route in the router.
type route struct {
	typ     UpdateType
	filters []Filter
	handler HandlerNext
}

// NewRouterGroup creates an empty router.
//
// Example usage:
//
//	r := yatgbot.NewRouterGroup()
//	r.OnMessage(YourMessageHandler, yatgbot.Command("start"))
func NewRouterGroup() *RouterGroup {
	return &RouterGroup{}
}

// IncludeRouter includes sub-routers into the current router. A sub-router
// runs its parents' base filters and middlewares before its own.
//
// Example usage:
//
//	admin := yatgbot.NewRouterGroup()
//	admin.AddFilters(yatgbot.ChatTypeIs(yatgbot.ChatTypePrivate))
//
//	mainRouter.IncludeRouter(admin)
func (r *RouterGroup) IncludeRouter(subs ...*RouterGroup) {
	for _, s := range subs {
		s.parent = r

		r.sub = append(r.sub, s)
	}
}

// AddFilters adds filters every route of the group and its sub-routers must pass.
func (r *RouterGroup) AddFilters(filters ...Filter) {
	r.base = append(r.base, filters...)
}

// OnMessage registers a handler for new messages.
//
// Example usage:
//
//	router.OnMessage(YourMessageHandler, YourFilter1, YourFilter2)
func (r *RouterGroup) OnMessage(h MessageHandler, filters ...Filter) {
	r.handle(UpdateTypeMessage, wrapHandler(h, UpdateTypeMessage), filters)
}

func (r *RouterGroup) OnEditedMessage(h MessageHandler, filters ...Filter) {
	r.handle(UpdateTypeEditedMessage, wrapHandler(h, UpdateTypeEditedMessage), filters)
}

func (r *RouterGroup) OnChannelPost(h MessageHandler, filters ...Filter) {
	r.handle(UpdateTypeChannelPost, wrapHandler(h, UpdateTypeChannelPost), filters)
}

func (r *RouterGroup) OnEditedChannelPost(h MessageHandler, filters ...Filter) {
	r.handle(UpdateTypeEditedChannelPost, wrapHandler(h, UpdateTypeEditedChannelPost), filters)
}

// OnCallback registers a callback query handler.
//
// Example usage:
//
//	router.OnCallback(YourCallbackHandler, yatgbot.CallbackPrefix("page:"))
func (r *RouterGroup) OnCallback(h CallbackHandler, filters ...Filter) {
	r.handle(UpdateTypeCallbackQuery, wrapHandler(h, UpdateTypeCallbackQuery), filters)
}

func (r *RouterGroup) OnInlineQuery(h InlineQueryHandler, filters ...Filter) {
	r.handle(UpdateTypeInlineQuery, wrapHandler(h, UpdateTypeInlineQuery), filters)
}

func (r *RouterGroup) OnChosenInlineResult(h ChosenInlineResultHandler, filters ...Filter) {
	r.handle(UpdateTypeChosenInlineResult, wrapHandler(h, UpdateTypeChosenInlineResult), filters)
}

// OnMyChatMember registers a handler for changes of the bot's own status.
func (r *RouterGroup) OnMyChatMember(h ChatMemberHandler, filters ...Filter) {
	r.handle(UpdateTypeMyChatMember, wrapHandler(h, UpdateTypeMyChatMember), filters)
}

func (r *RouterGroup) OnChatMember(h ChatMemberHandler, filters ...Filter) {
	r.handle(UpdateTypeChatMember, wrapHandler(h, UpdateTypeChatMember), filters)
}

func (r *RouterGroup) OnPoll(h PollHandler, filters ...Filter) {
	r.handle(UpdateTypePoll, wrapHandler(h, UpdateTypePoll), filters)
}

func (r *RouterGroup) OnPollAnswer(h PollAnswerHandler, filters ...Filter) {
	r.handle(UpdateTypePollAnswer, wrapHandler(h, UpdateTypePollAnswer), filters)
}

func (r *RouterGroup) OnChatJoinRequest(h ChatJoinRequestHandler, filters ...Filter) {
	r.handle(UpdateTypeChatJoinRequest, wrapHandler(h, UpdateTypeChatJoinRequest), filters)
}

func (r *RouterGroup) OnShippingQuery(h ShippingQueryHandler, filters ...Filter) {
	r.handle(UpdateTypeShippingQuery, wrapHandler(h, UpdateTypeShippingQuery), filters)
}

func (r *RouterGroup) OnPreCheckoutQuery(h PreCheckoutQueryHandler, filters ...Filter) {
	r.handle(UpdateTypePreCheckoutQuery, wrapHandler(h, UpdateTypePreCheckoutQuery), filters)
}

func (r *RouterGroup) handle(typ UpdateType, handler HandlerNext, filters []Filter) {
	r.routes = append(r.routes, route{
		typ:     typ,
		handler: handler,
		filters: filters,
	})
}
