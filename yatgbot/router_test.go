package yatgbot_test

import (
	"context"
	"net/http"
	"regexp"
	"sync"
	"testing"

	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
	"github.com/YaCodeDev/GoYaTgBotAPI/yatgbot"
	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerCalls struct {
	mu    sync.Mutex
	calls []string
}

func (c *handlerCalls) add(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, name)
}

func (c *handlerCalls) list() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string(nil), c.calls...)
}

func recordMessage(calls *handlerCalls, name string) yatgbot.MessageHandler {
	return func(_ context.Context, _ *yatgbot.HandlerData, _ *yatgbot.Message) yaerrors.Error {
		calls.add(name)

		return nil
	}
}

func recordMiddleware(calls *handlerCalls, name string) yatgbot.HandlerMiddleware {
	return func(
		ctx context.Context,
		hd *yatgbot.HandlerData,
		upd *yatgbot.Update,
		next yatgbot.HandlerNext,
	) yaerrors.Error {
		calls.add(name)

		return next(ctx, hd, upd)
	}
}

func newRouterBot(t *testing.T, router *yatgbot.RouterGroup) *yatgbot.Bot {
	t.Helper()

	rpc := newFakeRPC()
	rpc.addUser(&tg.User{ID: 100, FirstName: "Bob"})
	rpc.addUser(&tg.User{ID: 200, FirstName: "Admin"})

	return newTestBot(t, rpc, func(o *yatgbot.Options) { o.Router = router })
}

func handleText(t *testing.T, bot *yatgbot.Bot, userID int64, text string) {
	t.Helper()

	err := bot.HandleUpdate(context.Background(), &tg.UpdateNewMessage{Message: userMessage(1, userID, text)})
	require.Nil(t, err)
}

func TestRouter_Command(t *testing.T) {
	calls := &handlerCalls{}

	router := yatgbot.NewRouterGroup()
	router.OnMessage(recordMessage(calls, "start"), yatgbot.Command("start", "help"))
	router.OnMessage(recordMessage(calls, "echo"), yatgbot.TextRegex(regexp.MustCompile(`\S`)))

	bot := newRouterBot(t, router)

	handleText(t, bot, 100, "/start")
	handleText(t, bot, 100, "/help@Echo_Bot now")
	handleText(t, bot, 100, "/start@other_bot")
	handleText(t, bot, 100, "/stop")
	handleText(t, bot, 100, "hello")

	assert.Equal(t, []string{"start", "start", "echo", "echo", "echo"}, calls.list())
}

func TestRouter_MiddlewareOrder(t *testing.T) {
	calls := &handlerCalls{}

	root := yatgbot.NewRouterGroup()
	root.AddMiddleware(recordMiddleware(calls, "root-1"), recordMiddleware(calls, "root-2"))

	sub := yatgbot.NewRouterGroup()
	sub.AddMiddleware(recordMiddleware(calls, "sub"))
	sub.OnMessage(recordMessage(calls, "handler"))

	root.IncludeRouter(sub)

	handleText(t, newRouterBot(t, root), 100, "hi")

	assert.Equal(t, []string{"root-1", "root-2", "sub", "handler"}, calls.list())
}

func TestRouter_SubRouterBaseFilter(t *testing.T) {
	calls := &handlerCalls{}

	admin := yatgbot.NewRouterGroup()
	admin.AddFilters(yatgbot.FromUser(200))
	admin.OnMessage(recordMessage(calls, "admin"))

	root := yatgbot.NewRouterGroup()
	root.AddFilters(yatgbot.ChatTypeIs(yatgbot.ChatTypePrivate))
	root.IncludeRouter(admin)

	bot := newRouterBot(t, root)

	handleText(t, bot, 100, "let me in")
	handleText(t, bot, 200, "status")

	assert.Equal(t, []string{"admin"}, calls.list())
}

func TestRouter_LocalRoutesBeforeSubRouters(t *testing.T) {
	calls := &handlerCalls{}

	sub := yatgbot.NewRouterGroup()
	sub.OnMessage(recordMessage(calls, "sub"))

	root := yatgbot.NewRouterGroup()
	root.IncludeRouter(sub)
	root.OnMessage(recordMessage(calls, "root"))

	handleText(t, newRouterBot(t, root), 100, "hi")

	assert.Equal(t, []string{"root"}, calls.list())
}

func TestRouter_RoutesByUpdateType(t *testing.T) {
	calls := &handlerCalls{}

	router := yatgbot.NewRouterGroup()
	router.OnCallback(func(_ context.Context, _ *yatgbot.HandlerData, q *yatgbot.CallbackQuery) yaerrors.Error {
		calls.add("callback:" + q.Data)

		return nil
	}, yatgbot.CallbackPrefix("vote:"))
	router.OnEditedMessage(recordMessage(calls, "edited"))

	bot := newRouterBot(t, router)

	handleText(t, bot, 100, "not routed")

	require.Nil(t, bot.HandleUpdate(context.Background(), &tg.UpdateBotCallbackQuery{
		QueryID: 1,
		UserID:  100,
		Peer:    &tg.PeerUser{UserID: 100},
		Data:    []byte("vote:2"),
	}))
	require.Nil(t, bot.HandleUpdate(context.Background(), &tg.UpdateEditMessage{Message: userMessage(1, 100, "v2")}))

	assert.Equal(t, []string{"callback:vote:2", "edited"}, calls.list())
}

func TestRouter_HandlerError(t *testing.T) {
	router := yatgbot.NewRouterGroup()
	router.OnMessage(func(context.Context, *yatgbot.HandlerData, *yatgbot.Message) yaerrors.Error {
		return yaerrors.FromString(http.StatusTeapot, "boom")
	})

	err := newRouterBot(t, router).HandleUpdate(
		context.Background(),
		&tg.UpdateNewMessage{Message: userMessage(1, 100, "hi")},
	)

	require.NotNil(t, err)
	assert.Equal(t, http.StatusTeapot, err.Code())
}

func TestRouter_ServiceAndMediaFilters(t *testing.T) {
	calls := &handlerCalls{}

	router := yatgbot.NewRouterGroup()
	router.OnMessage(recordMessage(calls, "welcome"), yatgbot.ServiceActionIs[yatgbot.NewChatMembers]())
	router.OnMessage(recordMessage(calls, "dice"), yatgbot.HasMedia[*yatgbot.Dice]())

	bot := newRouterBot(t, router)
	bot.Resolver().Collect(nil, []tg.ChatClass{&tg.Chat{ID: 12, Title: "Friends"}})

	require.Nil(t, bot.HandleUpdate(context.Background(), &tg.UpdateNewMessage{Message: &tg.MessageService{
		ID:     1,
		FromID: &tg.PeerUser{UserID: 100},
		PeerID: &tg.PeerChat{ChatID: 12},
		Action: &tg.MessageActionChatAddUser{Users: []int64{200}},
	}}))

	dice := userMessage(2, 100, "")
	dice.Media = &tg.MessageMediaDice{Value: 3, Emoticon: "🎲"}
	require.Nil(t, bot.HandleUpdate(context.Background(), &tg.UpdateNewMessage{Message: dice}))

	handleText(t, bot, 100, "plain")

	assert.Equal(t, []string{"welcome", "dice"}, calls.list())
}

func TestHandle_Batch(t *testing.T) {
	calls := &handlerCalls{}

	router := yatgbot.NewRouterGroup()
	router.OnMessage(func(_ context.Context, hd *yatgbot.HandlerData, msg *yatgbot.Message) yaerrors.Error {
		calls.add(msg.From.FirstName + ":" + msg.Text)

		return nil
	})

	rpc := newFakeRPC()
	bot := newTestBot(t, rpc, func(o *yatgbot.Options) { o.Router = router })

	err := bot.Handle(context.Background(), &tg.Updates{
		Updates: []tg.UpdateClass{
			&tg.UpdateNewMessage{Message: userMessage(1, 300, "one")},
			&tg.UpdateNewMessage{Message: userMessage(2, 300, "two")},
		},
		Users: []tg.UserClass{&tg.User{ID: 300, FirstName: "Carol"}},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"Carol:one", "Carol:two"}, calls.list())
	assert.Zero(t, rpc.getUsersCalls)
}
