package yatgbot_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/YaCodeDev/GoYaTgBotAPI/yatgbot"
	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_PrivateMessage(t *testing.T) {
	rpc := newFakeRPC()
	rpc.addUser(&tg.User{ID: 100, FirstName: "Bob"})
	bot := newTestBot(t, rpc)

	upd, err := bot.Normalize(context.Background(), &tg.UpdateNewMessage{Message: userMessage(42, 100, "hi")})

	require.NoError(t, err)
	require.NotNil(t, upd)
	assert.Equal(t, int64(1), upd.UpdateID)
	assert.Equal(t, yatgbot.UpdateTypeMessage, upd.Type)

	msg, ok := upd.Message()
	require.True(t, ok)
	assert.Equal(t, "hi", msg.Text)
	assert.Equal(t, "Bob", upd.EffectiveUser().FirstName)
	assert.Equal(t, int64(100), upd.EffectiveChat().ID)
}

func TestNormalize_UpdateIDsIncrease(t *testing.T) {
	bot := newTestBot(t, newFakeRPC(), func(o *yatgbot.Options) { o.FirstUpdateID = 100 })

	for want := int64(101); want <= 103; want++ {
		upd, err := bot.Normalize(context.Background(), &tg.UpdateNewMessage{Message: userMessage(1, 100, "x")})

		require.NoError(t, err)
		assert.Equal(t, want, upd.UpdateID)
	}
}

func TestNormalize_OutgoingSuppressed(t *testing.T) {
	bot := newTestBot(t, newFakeRPC())

	wire := userMessage(42, 100, "mine")
	wire.Out = true

	upd, err := bot.Normalize(context.Background(), &tg.UpdateNewMessage{Message: wire})
	require.NoError(t, err)
	assert.Nil(t, upd)

	upd, err = bot.Normalize(context.Background(), &tg.UpdateNewMessage{Message: userMessage(43, 100, "yours")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), upd.UpdateID)
}

func TestNormalize_UnknownUpdateSuppressed(t *testing.T) {
	upd, err := newTestBot(t, newFakeRPC()).Normalize(context.Background(), &tg.UpdateDialogPinned{})

	require.NoError(t, err)
	assert.Nil(t, upd)
}

func TestNormalize_CancelledContext(t *testing.T) {
	bot := newTestBot(t, newFakeRPC())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	upd, err := bot.Normalize(ctx, &tg.UpdateNewMessage{Message: userMessage(1, 100, "x")})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, upd)

	upd, err = bot.Normalize(context.Background(), &tg.UpdateNewMessage{Message: userMessage(1, 100, "x")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), upd.UpdateID)
}

func TestNormalize_EditedChannelPost(t *testing.T) {
	bot := newTestBot(t, newFakeRPC())
	bot.Resolver().Collect(nil, []tg.ChatClass{&tg.Channel{ID: 10, Broadcast: true, Title: "News"}})

	upd, err := bot.Normalize(context.Background(), &tg.UpdateEditChannelMessage{Message: &tg.Message{
		ID:       7,
		PeerID:   &tg.PeerChannel{ChannelID: 10},
		Message:  "fixed typo",
		EditDate: 1700000100,
	}})

	require.NoError(t, err)
	require.NotNil(t, upd)
	assert.Equal(t, yatgbot.UpdateTypeEditedChannelPost, upd.Type)

	msg, _ := upd.Message()
	assert.Equal(t, int64(1700000100), msg.EditDate)
	assert.Equal(t, int64(-1000000000010), msg.SenderChat.ID)
}

func TestNormalize_ChatMemberNeedsOptIn(t *testing.T) {
	update := &tg.UpdateChannelParticipant{
		ChannelID:      11,
		Date:           1700000000,
		ActorID:        100,
		UserID:         200,
		NewParticipant: &tg.ChannelParticipant{UserID: 200, Date: 1700000000},
	}

	upd, err := newTestBot(t, newFakeRPC()).Normalize(context.Background(), update)
	require.NoError(t, err)
	assert.Nil(t, upd)

	bot := newTestBot(t, newFakeRPC(), func(o *yatgbot.Options) {
		o.AllowedUpdates = yatgbot.AllowUpdates(yatgbot.UpdateTypeChatMember)
	})

	upd, err = bot.Normalize(context.Background(), update)
	require.NoError(t, err)
	require.NotNil(t, upd)
	assert.Equal(t, yatgbot.UpdateTypeChatMember, upd.Type)

	member, ok := upd.ChatMember()
	require.True(t, ok)
	assert.Equal(t, yatgbot.MemberStatusLeft, member.OldChatMember.Status)
	assert.Equal(t, yatgbot.MemberStatusMember, member.NewChatMember.Status)
	assert.Equal(t, int64(200), member.NewChatMember.User.ID)
}

func TestNormalize_MyChatMemberByDefault(t *testing.T) {
	upd, err := newTestBot(t, newFakeRPC()).Normalize(context.Background(), &tg.UpdateChannelParticipant{
		ChannelID:      11,
		ActorID:        100,
		UserID:         testBotID,
		NewParticipant: &tg.ChannelParticipant{UserID: testBotID},
	})

	require.NoError(t, err)
	require.NotNil(t, upd)
	assert.Equal(t, yatgbot.UpdateTypeMyChatMember, upd.Type)
}

func TestNormalize_BotStopped(t *testing.T) {
	upd, err := newTestBot(t, newFakeRPC()).Normalize(context.Background(), &tg.UpdateBotStopped{
		UserID:  100,
		Date:    1700000000,
		Stopped: true,
	})

	require.NoError(t, err)
	require.NotNil(t, upd)
	assert.Equal(t, yatgbot.UpdateTypeMyChatMember, upd.Type)

	member, _ := upd.ChatMember()
	assert.Equal(t, yatgbot.MemberStatusMember, member.OldChatMember.Status)
	assert.Equal(t, yatgbot.MemberStatusKicked, member.NewChatMember.Status)
	assert.Equal(t, testBotID, member.NewChatMember.User.ID)
	assert.Equal(t, yatgbot.ChatTypePrivate, member.Chat.Type)
}

func TestNormalize_CallbackQuery(t *testing.T) {
	rpc := newFakeRPC()
	rpc.addMessage(&tg.Message{Out: true, ID: 42, PeerID: &tg.PeerUser{UserID: 100}, Message: "vote?"})
	bot := newTestBot(t, rpc)

	upd, err := bot.Normalize(context.Background(), &tg.UpdateBotCallbackQuery{
		QueryID:      77,
		UserID:       100,
		Peer:         &tg.PeerUser{UserID: 100},
		MsgID:        42,
		ChatInstance: 5,
		Data:         []byte("vote:1"),
	})

	require.NoError(t, err)
	require.NotNil(t, upd)
	assert.Equal(t, yatgbot.UpdateTypeCallbackQuery, upd.Type)

	query, ok := upd.CallbackQuery()
	require.True(t, ok)
	assert.Equal(t, "77", query.ID)
	assert.Equal(t, "5", query.ChatInstance)
	assert.Equal(t, "vote:1", query.Data)
	require.NotNil(t, query.Message)
	assert.Equal(t, "vote?", query.Message.Text)
	assert.Equal(t, testBotID, query.Message.From.ID)
	assert.Equal(t, int64(100), upd.EffectiveChat().ID)
}

func TestNormalize_FetchesRepliedMessage(t *testing.T) {
	rpc := newFakeRPC()
	rpc.addMessage(userMessage(41, 100, "question"))
	bot := newTestBot(t, rpc)

	wire := userMessage(42, 100, "answer")
	wire.ReplyTo = &tg.MessageReplyHeader{ReplyToMsgID: 41}

	upd, err := bot.Normalize(context.Background(), &tg.UpdateNewMessage{Message: wire})
	require.NoError(t, err)

	msg, _ := upd.Message()
	require.NotNil(t, msg.ReplyToMessage)
	assert.Equal(t, "question", msg.ReplyToMessage.Text)
	assert.Nil(t, msg.ReplyToMessage.ReplyToMessage)
}

func TestNormalize_InlineCallbackQuery(t *testing.T) {
	inlineID := &tg.InputBotInlineMessageID{DCID: 2, ID: 3, AccessHash: 4}

	upd, err := newTestBot(t, newFakeRPC()).Normalize(context.Background(), &tg.UpdateInlineBotCallbackQuery{
		QueryID: 78,
		UserID:  100,
		MsgID:   inlineID,
		Data:    []byte("inline"),
	})
	require.NoError(t, err)

	query, ok := upd.CallbackQuery()
	require.True(t, ok)
	assert.Nil(t, query.Message)

	decoded, yaErr := yatgbot.DecodeInlineMessageID(query.InlineMessageID)
	require.Nil(t, yaErr)
	assert.Equal(t, inlineID, decoded)
}

func TestDecodeInlineMessageID_Invalid(t *testing.T) {
	_, err := yatgbot.DecodeInlineMessageID(yatgbot.EncodeFileUniqueID(1, ""))

	require.NotNil(t, err)
	assert.ErrorIs(t, err, yatgbot.ErrInvalidInlineID)
}

func TestUpdate_MarshalJSON(t *testing.T) {
	rpc := newFakeRPC()
	rpc.addUser(&tg.User{ID: 100, FirstName: "Bob"})

	upd, err := newTestBot(t, rpc).Normalize(
		context.Background(),
		&tg.UpdateNewMessage{Message: userMessage(42, 100, "hi")},
	)
	require.NoError(t, err)

	raw, err := json.Marshal(upd)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"update_id": 1,
		"message": {
			"message_id": 42,
			"from": {"id": 100, "is_bot": false, "first_name": "Bob"},
			"chat": {"id": 100, "type": "private", "first_name": "Bob"},
			"date": 1700000000,
			"text": "hi"
		}
	}`, string(raw))
}
