package yatgbot

import (
	"context"
	"net/http"

	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
	"github.com/gotd/td/tg"
)

// CorrelateOne finds the message a single send produced in the server
// answer. A short answer carries no message, so one is rebuilt from the sent
// text and the destination chat.
func (b *Bot) CorrelateOne(
	ctx context.Context,
	updates tg.UpdatesClass,
	chatID int64,
	text string,
	replyTo *Message,
) (*Message, yaerrors.Error) {
	if short, ok := updates.(*tg.UpdateShortSentMessage); ok {
		return b.shortSentMessage(ctx, short, chatID, text, replyTo), nil
	}

	list, users, chats := updateList(updates)
	b.resolver.Collect(users, chats)

	for _, update := range list {
		wire, ok := sentMessage(update, true)
		if !ok {
			continue
		}

		if msg := b.Materialize(ctx, wire, replyTo); msg != nil {
			return msg, nil
		}
	}

	return nil, yaerrors.FromError(http.StatusBadGateway, ErrSentMessageNotFound, "failed to correlate sent message")
}

// CorrelateMany matches the n messages of one batch send to the random IDs
// startRandomID..startRandomID+n-1 they were sent with. The result follows
// request order whatever order the server answered in.
func (b *Bot) CorrelateMany(
	ctx context.Context,
	updates tg.UpdatesClass,
	n int,
	startRandomID int64,
	replyTo *Message,
) ([]*Message, yaerrors.Error) {
	if n < 1 {
		return nil, yaerrors.FromError(http.StatusBadRequest, ErrInvalidBatchSize, "failed to correlate sent messages")
	}

	list, users, chats := updateList(updates)
	b.resolver.Collect(users, chats)

	serverIDs := make([]int, n)
	slots := make(map[int]int, n)

	for _, update := range list {
		answer, ok := update.(*tg.UpdateMessageID)
		if !ok {
			continue
		}

		slot := answer.RandomID - startRandomID
		if slot < 0 || slot >= int64(n) {
			continue
		}

		if serverIDs[slot] != 0 {
			return nil, yaerrors.FromError(
				http.StatusBadGateway,
				ErrDuplicateRandomID,
				"failed to correlate sent messages",
			)
		}

		serverIDs[slot] = answer.ID
		slots[answer.ID] = int(slot)
	}

	messages := make([]*Message, n)

	for _, update := range list {
		wire, ok := sentMessage(update, false)
		if !ok {
			continue
		}

		slot, ok := slots[wire.GetID()]
		if !ok || messages[slot] != nil {
			continue
		}

		messages[slot] = b.Materialize(ctx, wire, replyTo)
	}

	for _, msg := range messages {
		if msg == nil {
			return nil, yaerrors.FromError(
				http.StatusBadGateway,
				ErrSentMessagesIncomplete,
				"failed to correlate sent messages",
			)
		}
	}

	return messages, nil
}

// sentMessage extracts the message of a new-message record. Edits count only
// when withEdits is set.
func sentMessage(update tg.UpdateClass, withEdits bool) (tg.MessageClass, bool) {
	switch u := update.(type) {
	case *tg.UpdateNewMessage:
		return u.Message, true
	case *tg.UpdateNewChannelMessage:
		return u.Message, true
	case *tg.UpdateNewScheduledMessage:
		return u.Message, true
	case *tg.UpdateEditMessage:
		return u.Message, withEdits
	case *tg.UpdateEditChannelMessage:
		return u.Message, withEdits
	default:
		return nil, false
	}
}

func (b *Bot) shortSentMessage(
	ctx context.Context,
	short *tg.UpdateShortSentMessage,
	chatID int64,
	text string,
	replyTo *Message,
) *Message {
	msg := &Message{
		MessageID:      short.ID,
		From:           b.Me(ctx),
		Date:           int64(short.Date),
		Chat:           b.resolver.ResolveChat(ctx, chatID),
		ReplyToMessage: replyTo,
		Raw: &tg.Message{
			Out:      short.Out,
			ID:       short.ID,
			PeerID:   peerOrNil(chatID),
			Date:     short.Date,
			Message:  text,
			Media:    short.Media,
			Entities: short.Entities,
		},
	}

	if msg.Chat.Type == ChatTypeChannel {
		msg.From = nil
		msg.SenderChat = msg.Chat
	}

	b.attachMedia(ctx, msg, short.Media, text, short.Entities)

	return msg
}

func peerOrNil(chatID int64) tg.PeerClass {
	peer, _ := PeerFromChatID(chatID)

	return peer
}

// updateList flattens every answer shape into a list of updates plus the
// entities that came with them. Short message shapes are expanded into
// UpdateNewMessage records.
func updateList(updates tg.UpdatesClass) ([]tg.UpdateClass, []tg.UserClass, []tg.ChatClass) {
	switch u := updates.(type) {
	case *tg.Updates:
		return u.Updates, u.Users, u.Chats
	case *tg.UpdatesCombined:
		return u.Updates, u.Users, u.Chats
	case *tg.UpdateShort:
		return []tg.UpdateClass{u.Update}, nil, nil
	case *tg.UpdateShortMessage:
		msg := &tg.Message{
			Out:      u.Out,
			Silent:   u.Silent,
			ID:       u.ID,
			PeerID:   &tg.PeerUser{UserID: u.UserID},
			Date:     u.Date,
			Message:  u.Message,
			FwdFrom:  u.FwdFrom,
			ViaBotID: u.ViaBotID,
			ReplyTo:  u.ReplyTo,
			Entities: u.Entities,
		}

		if !u.Out {
			msg.FromID = &tg.PeerUser{UserID: u.UserID}
		}

		return []tg.UpdateClass{&tg.UpdateNewMessage{Message: msg, Pts: u.Pts, PtsCount: u.PtsCount}}, nil, nil
	case *tg.UpdateShortChatMessage:
		msg := &tg.Message{
			Out:      u.Out,
			Silent:   u.Silent,
			ID:       u.ID,
			FromID:   &tg.PeerUser{UserID: u.FromID},
			PeerID:   &tg.PeerChat{ChatID: u.ChatID},
			Date:     u.Date,
			Message:  u.Message,
			FwdFrom:  u.FwdFrom,
			ViaBotID: u.ViaBotID,
			ReplyTo:  u.ReplyTo,
			Entities: u.Entities,
		}

		return []tg.UpdateClass{&tg.UpdateNewMessage{Message: msg, Pts: u.Pts, PtsCount: u.PtsCount}}, nil, nil
	default:
		return nil, nil, nil
	}
}
