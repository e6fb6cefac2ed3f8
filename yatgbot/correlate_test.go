package yatgbot_test

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/YaCodeDev/GoYaTgBotAPI/yatgbot"
	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sentRecords(chatID int64, randomStart int64, ids ...int) []tg.UpdateClass {
	peer, _ := yatgbot.PeerFromChatID(chatID)
	records := make([]tg.UpdateClass, 0, 2*len(ids))

	for i, id := range ids {
		records = append(records,
			&tg.UpdateMessageID{ID: id, RandomID: randomStart + int64(i)},
			&tg.UpdateNewMessage{Message: &tg.Message{
				Out:     true,
				ID:      id,
				PeerID:  peer,
				Message: "item " + strconv.Itoa(id),
			}},
		)
	}

	return records
}

// permutations calls fn with every ordering of items.
func permutations(items []tg.UpdateClass, fn func([]tg.UpdateClass)) {
	var permute func(k int)

	permute = func(k int) {
		if k == len(items) {
			fn(append([]tg.UpdateClass(nil), items...))

			return
		}

		for i := k; i < len(items); i++ {
			items[k], items[i] = items[i], items[k]
			permute(k + 1)
			items[k], items[i] = items[i], items[k]
		}
	}

	permute(0)
}

func messageIDs(messages []*yatgbot.Message) []int {
	ids := make([]int, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.MessageID)
	}

	return ids
}

func TestCorrelateMany_AnyAnswerOrder(t *testing.T) {
	ctx := context.Background()
	bot := newTestBot(t, newFakeRPC())
	records := sentRecords(100, 1000, 501, 502, 503)

	orders := 0

	permutations(records, func(order []tg.UpdateClass) {
		orders++

		messages, err := bot.CorrelateMany(ctx, &tg.Updates{Updates: order}, 3, 1000, nil)
		require.Nil(t, err)
		require.Equal(t, []int{501, 502, 503}, messageIDs(messages))
		assert.Equal(t, "item 502", messages[1].Text)
	})

	assert.Equal(t, 720, orders)
}

func TestCorrelateMany_IgnoresForeignRecords(t *testing.T) {
	records := sentRecords(100, 1000, 501, 502)
	records = append(records,
		&tg.UpdateMessageID{ID: 600, RandomID: 5},
		&tg.UpdateNewMessage{Message: &tg.Message{Out: true, ID: 600, PeerID: &tg.PeerUser{UserID: 100}}},
		&tg.UpdateReadHistoryOutbox{MaxID: 502},
	)

	messages, err := newTestBot(t, newFakeRPC()).CorrelateMany(
		context.Background(),
		&tg.Updates{Updates: records},
		2,
		1000,
		nil,
	)

	require.Nil(t, err)
	assert.Equal(t, []int{501, 502}, messageIDs(messages))
}

func TestCorrelateMany_DuplicateRandomID(t *testing.T) {
	records := sentRecords(100, 1000, 501, 502)
	records = append(records, &tg.UpdateMessageID{ID: 503, RandomID: 1001})

	_, err := newTestBot(t, newFakeRPC()).CorrelateMany(
		context.Background(),
		&tg.Updates{Updates: records},
		2,
		1000,
		nil,
	)

	require.NotNil(t, err)
	assert.Equal(t, http.StatusBadGateway, err.Code())
	assert.ErrorIs(t, err, yatgbot.ErrDuplicateRandomID)
}

func TestCorrelateMany_Incomplete(t *testing.T) {
	records := sentRecords(100, 1000, 501, 502, 503)[:5]

	_, err := newTestBot(t, newFakeRPC()).CorrelateMany(
		context.Background(),
		&tg.Updates{Updates: records},
		3,
		1000,
		nil,
	)

	require.NotNil(t, err)
	assert.ErrorIs(t, err, yatgbot.ErrSentMessagesIncomplete)
}

func TestCorrelateMany_RejectsEmptyBatch(t *testing.T) {
	bot := newTestBot(t, newFakeRPC())

	for _, n := range []int{0, -1} {
		messages, err := bot.CorrelateMany(context.Background(), &tg.Updates{}, n, 1000, nil)

		require.NotNil(t, err, "n=%d", n)
		assert.Nil(t, messages)
		assert.Equal(t, http.StatusBadRequest, err.Code())
		assert.ErrorIs(t, err, yatgbot.ErrInvalidBatchSize)
	}
}

func TestCorrelateOne_ShortSentMessage(t *testing.T) {
	reply := &yatgbot.Message{MessageID: 3}

	msg, err := newTestBot(t, newFakeRPC()).CorrelateOne(
		context.Background(),
		&tg.UpdateShortSentMessage{Out: true, ID: 900, Date: 1700000000},
		100,
		"hi",
		reply,
	)

	require.Nil(t, err)
	assert.Equal(t, 900, msg.MessageID)
	assert.Equal(t, "hi", msg.Text)
	assert.Equal(t, testBotID, msg.From.ID)
	assert.Equal(t, int64(100), msg.Chat.ID)
	assert.Same(t, reply, msg.ReplyToMessage)
}

func TestCorrelateOne_ShortSentMessageInChannel(t *testing.T) {
	bot := newTestBot(t, newFakeRPC())
	bot.Resolver().Collect(nil, []tg.ChatClass{&tg.Channel{ID: 10, Broadcast: true, Title: "News"}})

	msg, err := bot.CorrelateOne(
		context.Background(),
		&tg.UpdateShortSentMessage{Out: true, ID: 901},
		-1000000000010,
		"post",
		nil,
	)

	require.Nil(t, err)
	assert.Nil(t, msg.From)
	assert.Equal(t, msg.Chat, msg.SenderChat)
}

func TestCorrelateOne_ShortMessageShape(t *testing.T) {
	msg, err := newTestBot(t, newFakeRPC()).CorrelateOne(
		context.Background(),
		&tg.UpdateShortMessage{Out: true, ID: 902, UserID: 100, Message: "expanded"},
		100,
		"expanded",
		nil,
	)

	require.Nil(t, err)
	assert.Equal(t, 902, msg.MessageID)
	assert.Equal(t, testBotID, msg.From.ID)
}

func TestCorrelateOne_Edit(t *testing.T) {
	msg, err := newTestBot(t, newFakeRPC()).CorrelateOne(
		context.Background(),
		&tg.Updates{Updates: []tg.UpdateClass{
			&tg.UpdateEditMessage{Message: &tg.Message{
				Out:      true,
				ID:       903,
				PeerID:   &tg.PeerUser{UserID: 100},
				Message:  "edited",
				EditDate: 1700000001,
			}},
		}},
		100,
		"edited",
		nil,
	)

	require.Nil(t, err)
	assert.Equal(t, "edited", msg.Text)
	assert.Equal(t, int64(1700000001), msg.EditDate)
}

func TestCorrelateOne_NotFound(t *testing.T) {
	_, err := newTestBot(t, newFakeRPC()).CorrelateOne(context.Background(), &tg.Updates{}, 100, "lost", nil)

	require.NotNil(t, err)
	assert.Equal(t, http.StatusBadGateway, err.Code())
	assert.ErrorIs(t, err, yatgbot.ErrSentMessageNotFound)
}
