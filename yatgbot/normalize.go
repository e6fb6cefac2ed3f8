package yatgbot

import (
	"context"
	"net/http"

	"github.com/YaCodeDev/GoYaTgBotAPI/yaencoding"
	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
	"github.com/gotd/td/bin"
	"github.com/gotd/td/tg"
)

// Normalize converts one wire update into a canonical Update. A nil update
// with a nil error means the update was suppressed: it is outgoing, filtered
// by the allowed updates, or has no Bot API counterpart. The error is only
// reported when ctx is done.
func (b *Bot) Normalize(ctx context.Context, raw tg.UpdateClass) (*Update, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		typ     UpdateType
		payload UpdatePayload
	)

	switch u := raw.(type) {
	case *tg.UpdateNewMessage:
		typ, payload = b.normalizeMessage(ctx, u.Message, false)
	case *tg.UpdateNewChannelMessage:
		typ, payload = b.normalizeMessage(ctx, u.Message, false)
	case *tg.UpdateEditMessage:
		typ, payload = b.normalizeMessage(ctx, u.Message, true)
	case *tg.UpdateEditChannelMessage:
		typ, payload = b.normalizeMessage(ctx, u.Message, true)
	case *tg.UpdateBotInlineQuery:
		typ, payload = b.normalizeInlineQuery(ctx, u)
	case *tg.UpdateBotInlineSend:
		typ, payload = b.normalizeInlineSend(ctx, u)
	case *tg.UpdateBotCallbackQuery:
		typ, payload = b.normalizeCallbackQuery(ctx, u)
	case *tg.UpdateInlineBotCallbackQuery:
		typ, payload = b.normalizeInlineCallbackQuery(ctx, u)
	case *tg.UpdateChannelParticipant:
		typ, payload = b.normalizeChannelParticipant(ctx, u)
	case *tg.UpdateChatParticipant:
		typ, payload = b.normalizeChatParticipant(ctx, u)
	case *tg.UpdateBotStopped:
		typ, payload = b.normalizeBotStopped(ctx, u)
	case *tg.UpdateMessagePoll:
		typ, payload = b.normalizePoll(ctx, u)
	case *tg.UpdateMessagePollVote:
		typ, payload = b.normalizePollVote(ctx, u)
	case *tg.UpdateBotChatInviteRequester:
		typ, payload = b.normalizeJoinRequest(ctx, u)
	case *tg.UpdateBotShippingQuery:
		typ, payload = b.normalizeShippingQuery(ctx, u)
	case *tg.UpdateBotPrecheckoutQuery:
		typ, payload = b.normalizePreCheckoutQuery(ctx, u)
	}

	if payload == nil {
		b.log.Debugf("Update %T suppressed", raw)

		return nil, nil
	}

	return &Update{
		UpdateID: b.updateID.Add(1),
		Type:     typ,
		Payload:  payload,
		Raw:      raw,
	}, nil
}

// NotAllowed reports whether updates of type t are filtered out.
func (b *Bot) NotAllowed(t UpdateType) bool {
	return !b.allowed.Allows(t)
}

func (b *Bot) normalizeMessage(ctx context.Context, wire tg.MessageClass, edited bool) (UpdateType, UpdatePayload) {
	var (
		peer    tg.PeerClass
		replyTo tg.MessageReplyHeaderClass
	)

	switch m := wire.(type) {
	case *tg.Message:
		if m.Out {
			return 0, nil
		}

		peer, replyTo = m.PeerID, m.ReplyTo
	case *tg.MessageService:
		if m.Out {
			return 0, nil
		}

		peer, replyTo = m.PeerID, m.ReplyTo
	default:
		return 0, nil
	}

	chat := b.resolver.ClassifyPeer(ctx, peer, true)
	if chat == nil {
		return 0, nil
	}

	typ := messageUpdateType(chat.Type == ChatTypeChannel, edited)
	if b.NotAllowed(typ) {
		return 0, nil
	}

	reply := b.fetchMessage(ctx, chat, replyToMessageID(replyTo))

	msg := b.Materialize(ctx, wire, reply)
	if msg == nil {
		return 0, nil
	}

	return typ, msg
}

func messageUpdateType(channel, edited bool) UpdateType {
	switch {
	case channel && edited:
		return UpdateTypeEditedChannelPost
	case channel:
		return UpdateTypeChannelPost
	case edited:
		return UpdateTypeEditedMessage
	default:
		return UpdateTypeMessage
	}
}

// fetchMessage loads one message of chat and materializes it without its
// own reply. Failures are logged and yield nil.
func (b *Bot) fetchMessage(ctx context.Context, chat *Chat, id int) *Message {
	if id == 0 || chat == nil {
		return nil
	}

	ids := []tg.InputMessageClass{&tg.InputMessageID{ID: id}}

	var (
		answer tg.MessagesMessagesClass
		err    error
	)

	if isChannelChatID(chat.ID) {
		channel, yaErr := b.resolver.InputChannel(ctx, chat.ID)
		if yaErr != nil {
			return nil
		}

		answer, err = b.rpc.ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{Channel: channel, ID: ids})
	} else {
		answer, err = b.rpc.MessagesGetMessages(ctx, ids)
	}

	if err != nil {
		b.log.Debugf("Failed to fetch message %d of chat %d: %v", id, chat.ID, err)

		return nil
	}

	var messages []tg.MessageClass

	switch a := answer.(type) {
	case *tg.MessagesMessages:
		b.resolver.Collect(a.Users, a.Chats)
		messages = a.Messages
	case *tg.MessagesMessagesSlice:
		b.resolver.Collect(a.Users, a.Chats)
		messages = a.Messages
	case *tg.MessagesChannelMessages:
		b.resolver.Collect(a.Users, a.Chats)
		messages = a.Messages
	}

	for _, m := range messages {
		if m.GetID() == id {
			return b.Materialize(ctx, m, nil)
		}
	}

	return nil
}

func (b *Bot) normalizeInlineQuery(ctx context.Context, u *tg.UpdateBotInlineQuery) (UpdateType, UpdatePayload) {
	if b.NotAllowed(UpdateTypeInlineQuery) {
		return 0, nil
	}

	return UpdateTypeInlineQuery, &InlineQuery{
		ID:       formatID(u.QueryID),
		From:     b.resolver.ResolveUser(ctx, u.UserID),
		Query:    u.Query,
		Offset:   u.Offset,
		ChatType: inlineChatType(u.PeerType),
		Location: locationFromGeo(u.Geo),
	}
}

func inlineChatType(peerType tg.InlineQueryPeerTypeClass) ChatType {
	switch peerType.(type) {
	case *tg.InlineQueryPeerTypeSameBotPM:
		return ChatTypeSender
	case *tg.InlineQueryPeerTypePM, *tg.InlineQueryPeerTypeBotPM:
		return ChatTypePrivate
	case *tg.InlineQueryPeerTypeChat:
		return ChatTypeGroup
	case *tg.InlineQueryPeerTypeMegagroup:
		return ChatTypeSupergroup
	case *tg.InlineQueryPeerTypeBroadcast:
		return ChatTypeChannel
	default:
		return ""
	}
}

func (b *Bot) normalizeInlineSend(ctx context.Context, u *tg.UpdateBotInlineSend) (UpdateType, UpdatePayload) {
	if b.NotAllowed(UpdateTypeChosenInlineResult) {
		return 0, nil
	}

	result := &ChosenInlineResult{
		ResultID: u.ID,
		From:     b.resolver.ResolveUser(ctx, u.UserID),
		Location: locationFromGeo(u.Geo),
		Query:    u.Query,
	}

	if u.MsgID != nil {
		result.InlineMessageID = EncodeInlineMessageID(u.MsgID)
	}

	return UpdateTypeChosenInlineResult, result
}

func (b *Bot) normalizeCallbackQuery(ctx context.Context, u *tg.UpdateBotCallbackQuery) (UpdateType, UpdatePayload) {
	if b.NotAllowed(UpdateTypeCallbackQuery) {
		return 0, nil
	}

	chat := b.resolver.ClassifyPeer(ctx, u.Peer, true)

	return UpdateTypeCallbackQuery, &CallbackQuery{
		ID:            formatID(u.QueryID),
		From:          b.resolver.ResolveUser(ctx, u.UserID),
		Message:       b.fetchMessage(ctx, chat, u.MsgID),
		ChatInstance:  formatID(u.ChatInstance),
		Data:          string(u.Data),
		GameShortName: u.GameShortName,
	}
}

func (b *Bot) normalizeInlineCallbackQuery(
	ctx context.Context,
	u *tg.UpdateInlineBotCallbackQuery,
) (UpdateType, UpdatePayload) {
	if b.NotAllowed(UpdateTypeCallbackQuery) {
		return 0, nil
	}

	return UpdateTypeCallbackQuery, &CallbackQuery{
		ID:              formatID(u.QueryID),
		From:            b.resolver.ResolveUser(ctx, u.UserID),
		InlineMessageID: EncodeInlineMessageID(u.MsgID),
		ChatInstance:    formatID(u.ChatInstance),
		Data:            string(u.Data),
		GameShortName:   u.GameShortName,
	}
}

func (b *Bot) normalizePoll(ctx context.Context, u *tg.UpdateMessagePoll) (UpdateType, UpdatePayload) {
	if b.NotAllowed(UpdateTypePoll) {
		return 0, nil
	}

	poll, ok := u.GetPoll()
	if !ok {
		if poll, ok = b.polls.Get(u.PollID); !ok {
			return 0, nil
		}
	}

	return UpdateTypePoll, b.pollFromTG(ctx, poll, u.Results)
}

func (b *Bot) normalizePollVote(ctx context.Context, u *tg.UpdateMessagePollVote) (UpdateType, UpdatePayload) {
	if b.NotAllowed(UpdateTypePollAnswer) {
		return 0, nil
	}

	answer := &PollAnswer{
		PollID:    formatID(u.PollID),
		OptionIDs: b.pollOptionIDs(ctx, u.PollID, u.Options),
	}

	switch p := u.Peer.(type) {
	case *tg.PeerUser:
		answer.User = b.resolver.ResolveUser(ctx, p.UserID)
	case *tg.PeerChat, *tg.PeerChannel:
		answer.VoterChat = b.resolver.ClassifyPeer(ctx, p, false)
		answer.User = channelBotUser()
	}

	return UpdateTypePollAnswer, answer
}

func (b *Bot) normalizeJoinRequest(ctx context.Context, u *tg.UpdateBotChatInviteRequester) (UpdateType, UpdatePayload) {
	if b.NotAllowed(UpdateTypeChatJoinRequest) {
		return 0, nil
	}

	chat := b.resolver.ClassifyPeer(ctx, u.Peer, false)
	if chat == nil {
		return 0, nil
	}

	return UpdateTypeChatJoinRequest, &ChatJoinRequest{
		Chat:       chat,
		From:       b.resolver.ResolveUser(ctx, u.UserID),
		UserChatID: u.UserID,
		Date:       int64(u.Date),
		Bio:        u.About,
		InviteLink: b.inviteLink(ctx, u.Invite),
	}
}

func (b *Bot) normalizeShippingQuery(ctx context.Context, u *tg.UpdateBotShippingQuery) (UpdateType, UpdatePayload) {
	if b.NotAllowed(UpdateTypeShippingQuery) {
		return 0, nil
	}

	return UpdateTypeShippingQuery, &ShippingQuery{
		ID:              formatID(u.QueryID),
		From:            b.resolver.ResolveUser(ctx, u.UserID),
		InvoicePayload:  string(u.Payload),
		ShippingAddress: shippingAddressFromTG(u.ShippingAddress),
	}
}

func (b *Bot) normalizePreCheckoutQuery(
	ctx context.Context,
	u *tg.UpdateBotPrecheckoutQuery,
) (UpdateType, UpdatePayload) {
	if b.NotAllowed(UpdateTypePreCheckoutQuery) {
		return 0, nil
	}

	return UpdateTypePreCheckoutQuery, &PreCheckoutQuery{
		ID:               formatID(u.QueryID),
		From:             b.resolver.ResolveUser(ctx, u.UserID),
		Currency:         u.Currency,
		TotalAmount:      u.TotalAmount,
		InvoicePayload:   string(u.Payload),
		ShippingOptionID: u.ShippingOptionID,
		OrderInfo:        orderInfoFromTG(u.Info),
	}
}

// EncodeInlineMessageID packs a wire inline message reference into the
// string Bot API uses.
func EncodeInlineMessageID(id tg.InputBotInlineMessageIDClass) string {
	var buf bin.Buffer

	if err := id.Encode(&buf); err != nil {
		return ""
	}

	return yaencoding.ToURLString(buf.Buf)
}

// DecodeInlineMessageID reverses EncodeInlineMessageID.
func DecodeInlineMessageID(id string) (tg.InputBotInlineMessageIDClass, yaerrors.Error) {
	raw, err := yaencoding.FromURLString(id)
	if err != nil {
		return nil, err.Wrap("failed to decode inline message id")
	}

	decoded, decodeErr := tg.DecodeInputBotInlineMessageID(&bin.Buffer{Buf: raw})
	if decodeErr != nil {
		return nil, yaerrors.FromError(http.StatusBadRequest, ErrInvalidInlineID, "failed to decode inline message id")
	}

	return decoded, nil
}
