package yatgbot_test

import (
	"context"
	"testing"
	"time"

	"github.com/YaCodeDev/GoYaTgBotAPI/yatgbot"
	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiz() tg.Poll {
	return tg.Poll{
		ID:       555,
		Quiz:     true,
		Question: tg.TextWithEntities{Text: "2+2?"},
		Answers: []tg.PollAnswer{
			{Text: tg.TextWithEntities{Text: "3"}, Option: []byte("a")},
			{Text: tg.TextWithEntities{Text: "4"}, Option: []byte("b")},
			{Text: tg.TextWithEntities{Text: "four"}, Option: []byte("c")},
		},
	}
}

func TestNormalize_PollCorrectOption(t *testing.T) {
	update := &tg.UpdateMessagePoll{
		PollID: 555,
		Results: tg.PollResults{
			TotalVoters: 7,
			Solution:    "basic math",
			Results: []tg.PollAnswerVoters{
				{Option: []byte("a"), Voters: 1},
				{Option: []byte("c"), Voters: 2, Correct: true},
				{Option: []byte("b"), Voters: 4, Correct: true},
			},
		},
	}
	update.SetPoll(quiz())

	upd, err := newTestBot(t, newFakeRPC()).Normalize(context.Background(), update)
	require.NoError(t, err)
	require.NotNil(t, upd)

	poll, ok := upd.Poll()
	require.True(t, ok)
	assert.Equal(t, "555", poll.ID)
	assert.Equal(t, yatgbot.PollTypeQuiz, poll.Type)
	assert.True(t, poll.IsAnonymous)
	assert.Equal(t, 7, poll.TotalVoterCount)
	assert.Equal(t, "basic math", poll.Explanation)
	require.NotNil(t, poll.CorrectOptionID)
	assert.Equal(t, 2, *poll.CorrectOptionID)

	require.Len(t, poll.Options, 3)
	assert.Equal(t, yatgbot.PollOption{Text: "4", VoterCount: 4}, poll.Options[1])
}

func TestNormalize_PollVoteMapsKnownOptions(t *testing.T) {
	bot := newTestBot(t, newFakeRPC())

	update := &tg.UpdateMessagePoll{PollID: 555}
	update.SetPoll(quiz())

	_, err := bot.Normalize(context.Background(), update)
	require.NoError(t, err)

	upd, err := bot.Normalize(context.Background(), &tg.UpdateMessagePollVote{
		PollID:  555,
		Peer:    &tg.PeerUser{UserID: 100},
		Options: [][]byte{[]byte("c"), []byte("a")},
	})
	require.NoError(t, err)

	answer, ok := upd.PollAnswer()
	require.True(t, ok)
	assert.Equal(t, "555", answer.PollID)
	assert.Equal(t, []int{2, 0}, answer.OptionIDs)
	assert.Equal(t, int64(100), answer.User.ID)
}

func TestNormalize_PollVoteUnknownPoll(t *testing.T) {
	upd, err := newTestBot(t, newFakeRPC()).Normalize(context.Background(), &tg.UpdateMessagePollVote{
		PollID:  556,
		Peer:    &tg.PeerChannel{ChannelID: 10},
		Options: [][]byte{{1}},
	})
	require.NoError(t, err)

	answer, _ := upd.PollAnswer()
	assert.Equal(t, []int{1}, answer.OptionIDs)
	assert.Equal(t, yatgbot.ChannelBotID, answer.User.ID)
	assert.Equal(t, int64(-1000000000010), answer.VoterChat.ID)
}

func TestNormalize_PollResultsWithoutPoll(t *testing.T) {
	upd, err := newTestBot(t, newFakeRPC()).Normalize(context.Background(), &tg.UpdateMessagePoll{PollID: 999})

	require.NoError(t, err)
	assert.Nil(t, upd)
}

func TestNormalize_PollVoteAfterPollExpired(t *testing.T) {
	bot := newTestBot(t, newFakeRPC(), func(o *yatgbot.Options) { o.PollTTL = 20 * time.Millisecond })

	update := &tg.UpdateMessagePoll{PollID: 555}
	update.SetPoll(quiz())

	_, err := bot.Normalize(context.Background(), update)
	require.NoError(t, err)

	vote := &tg.UpdateMessagePollVote{
		PollID:  555,
		Peer:    &tg.PeerUser{UserID: 100},
		Options: [][]byte{[]byte("c")},
	}

	upd, err := bot.Normalize(context.Background(), vote)
	require.NoError(t, err)

	answer, _ := upd.PollAnswer()
	assert.Equal(t, []int{2}, answer.OptionIDs)

	time.Sleep(50 * time.Millisecond)

	upd, err = bot.Normalize(context.Background(), vote)
	require.NoError(t, err)

	answer, _ = upd.PollAnswer()
	assert.Equal(t, []int{int('c')}, answer.OptionIDs)
}
