package yatgbot

import (
	"bytes"
	"context"

	"github.com/YaCodeDev/GoYaTgBotAPI/yaencoding"
	"github.com/gotd/td/tg"
)

// Poll kinds.
const (
	PollTypeRegular = "regular"
	PollTypeQuiz    = "quiz"
)

type PollOption struct {
	Text         string          `json:"text"`
	TextEntities []MessageEntity `json:"text_entities,omitempty"`
	VoterCount   int             `json:"voter_count"`
}

type Poll struct {
	ID                    string          `json:"id"`
	Question              string          `json:"question"`
	QuestionEntities      []MessageEntity `json:"question_entities,omitempty"`
	Options               []PollOption    `json:"options"`
	TotalVoterCount       int             `json:"total_voter_count"`
	IsClosed              bool            `json:"is_closed"`
	IsAnonymous           bool            `json:"is_anonymous"`
	Type                  string          `json:"type"`
	AllowsMultipleAnswers bool            `json:"allows_multiple_answers"`
	CorrectOptionID       *int            `json:"correct_option_id,omitempty"`
	Explanation           string          `json:"explanation,omitempty"`
	ExplanationEntities   []MessageEntity `json:"explanation_entities,omitempty"`
	OpenPeriod            int             `json:"open_period,omitempty"`
	CloseDate             int64           `json:"close_date,omitempty"`
}

// pollFromTG converts a poll with its results and remembers the poll, so that
// later votes can be mapped to option indexes.
func (b *Bot) pollFromTG(ctx context.Context, poll tg.Poll, results tg.PollResults) *Poll {
	b.rememberPoll(ctx, poll)

	result := &Poll{
		ID:                    formatID(poll.ID),
		Question:              poll.Question.Text,
		QuestionEntities:      b.convertEntities(ctx, poll.Question.Entities),
		Options:               make([]PollOption, 0, len(poll.Answers)),
		TotalVoterCount:       results.TotalVoters,
		IsClosed:              poll.Closed,
		IsAnonymous:           !poll.PublicVoters,
		Type:                  PollTypeRegular,
		AllowsMultipleAnswers: poll.MultipleChoice,
		Explanation:           results.Solution,
		ExplanationEntities:   b.convertEntities(ctx, results.SolutionEntities),
		OpenPeriod:            poll.ClosePeriod,
		CloseDate:             int64(poll.CloseDate),
	}

	if poll.Quiz {
		result.Type = PollTypeQuiz
	}

	for _, answer := range poll.Answers {
		option := PollOption{
			Text:         answer.Text.Text,
			TextEntities: b.convertEntities(ctx, answer.Text.Entities),
		}

		for _, voters := range results.Results {
			if bytes.Equal(voters.Option, answer.Option) {
				option.VoterCount = voters.Voters

				break
			}
		}

		result.Options = append(result.Options, option)
	}

	result.CorrectOptionID = correctOption(poll, results)

	return result
}

// correctOption returns the index of the first answer flagged correct.
func correctOption(poll tg.Poll, results tg.PollResults) *int {
	for _, voters := range results.Results {
		if !voters.Correct {
			continue
		}

		for i, answer := range poll.Answers {
			if bytes.Equal(voters.Option, answer.Option) {
				return &i
			}
		}
	}

	return nil
}

// rememberPoll keeps the option payloads of poll for pollTTL.
func (b *Bot) rememberPoll(ctx context.Context, poll tg.Poll) {
	options := make([][]byte, 0, len(poll.Answers))
	for _, answer := range poll.Answers {
		options = append(options, answer.Option)
	}

	raw, err := yaencoding.EncodeMessagePack(options)
	if err != nil {
		b.log.Debugf("Failed to encode options of poll %d: %v", poll.ID, err)

		return
	}

	if err := b.polls.Set(ctx, formatID(poll.ID), string(raw), b.pollTTL); err != nil {
		b.log.Debugf("Failed to remember poll %d: %v", poll.ID, err)
	}
}

func (b *Bot) pollOptions(ctx context.Context, pollID int64) ([][]byte, bool) {
	raw, err := b.polls.Get(ctx, formatID(pollID))
	if err != nil {
		return nil, false
	}

	options, err := yaencoding.DecodeMessagePack[[][]byte]([]byte(raw))
	if err != nil {
		return nil, false
	}

	return *options, true
}

// pollOptionIDs maps chosen option payloads to answer indexes. When the poll
// was never seen, or has expired, the first byte of each payload is taken as
// the index.
func (b *Bot) pollOptionIDs(ctx context.Context, pollID int64, chosen [][]byte) []int {
	ids := make([]int, 0, len(chosen))
	options, known := b.pollOptions(ctx, pollID)

	for _, option := range chosen {
		if !known {
			if len(option) > 0 {
				ids = append(ids, int(option[0]))
			}

			continue
		}

		for i, payload := range options {
			if bytes.Equal(option, payload) {
				ids = append(ids, i)

				break
			}
		}
	}

	return ids
}
