package yatgbot

import (
	"context"

	"github.com/gotd/td/tg"
)

// Materialize builds the canonical form of a wire message. replyTo is used
// as the replied message as is, it is never fetched here. Empty messages and
// service messages without a Bot API counterpart yield nil.
func (b *Bot) Materialize(ctx context.Context, wire tg.MessageClass, replyTo *Message) *Message {
	switch m := wire.(type) {
	case *tg.Message:
		return b.materializeMessage(ctx, m, replyTo)
	case *tg.MessageService:
		return b.materializeService(ctx, m, replyTo)
	default:
		return nil
	}
}

func (b *Bot) materializeMessage(ctx context.Context, wire *tg.Message, replyTo *Message) *Message {
	msg := &Message{
		MessageID:             wire.ID,
		Date:                  int64(wire.Date),
		EditDate:              int64(wire.EditDate),
		HasProtectedContent:   wire.Noforwards,
		AuthorSignature:       wire.PostAuthor,
		ShowCaptionAboveMedia: wire.InvertMedia,
		ReplyToMessage:        replyTo,
		Raw:                   wire,
	}

	if wire.GroupedID != 0 {
		msg.MediaGroupID = formatID(wire.GroupedID)
	}

	if wire.ViaBotID != 0 {
		msg.ViaBot = b.resolver.ResolveUser(ctx, wire.ViaBotID)
	}

	b.fillSender(ctx, msg, wire.FromID, wire.PeerID)
	b.fillForward(ctx, msg, wire.FwdFrom)
	b.fillSenderFallback(ctx, msg, wire.FromID, wire.PeerID, wire.Out)
	fillThread(msg, wire.ReplyTo, false)

	b.attachMedia(ctx, msg, wire.Media, wire.Message, wire.Entities)

	return msg
}

func (b *Bot) materializeService(ctx context.Context, wire *tg.MessageService, replyTo *Message) *Message {
	msg := &Message{
		MessageID: wire.ID,
		Date:      int64(wire.Date),
		Raw:       wire,
	}

	b.fillSender(ctx, msg, wire.FromID, wire.PeerID)
	b.fillSenderFallback(ctx, msg, wire.FromID, wire.PeerID, wire.Out)

	_, topicCreate := wire.Action.(*tg.MessageActionTopicCreate)
	fillThread(msg, wire.ReplyTo, topicCreate)

	action := b.serviceAction(ctx, msg, wire, replyTo)
	if action == nil {
		b.log.Debugf("Unsupported service action %T in message %d", wire.Action, wire.ID)

		return nil
	}

	msg.Action = action

	// The replied message of a pin is the pinned message itself.
	if _, pinned := action.(*PinnedMessage); !pinned {
		msg.ReplyToMessage = replyTo
	}

	return msg
}

// fillSender sets the author and the chat from the wire peers.
func (b *Bot) fillSender(ctx context.Context, msg *Message, fromID, peerID tg.PeerClass) {
	msg.Chat = b.resolver.ClassifyPeer(ctx, peerID, true)
	if msg.Chat == nil {
		msg.Chat = &Chat{ID: ChatIDFromPeer(peerID), Type: guessChatType(ChatIDFromPeer(peerID))}
	}

	switch from := fromID.(type) {
	case *tg.PeerUser:
		msg.From = b.resolver.ResolveUser(ctx, from.UserID)
	case *tg.PeerChat, *tg.PeerChannel:
		msg.SenderChat = b.resolver.ClassifyPeer(ctx, from, false)
	}
}

// fillSenderFallback fills From the way Bot API does for messages whose
// author is not a user.
func (b *Bot) fillSenderFallback(ctx context.Context, msg *Message, fromID, peerID tg.PeerClass, out bool) {
	if msg.From != nil {
		return
	}

	switch msg.Chat.Type {
	case ChatTypeChannel:
		if msg.SenderChat == nil {
			msg.SenderChat = msg.Chat
		}
	case ChatTypePrivate:
		if out {
			msg.From = b.Me(ctx)

			return
		}

		if peer, ok := peerID.(*tg.PeerUser); ok {
			msg.From = b.resolver.ResolveUser(ctx, peer.UserID)
		}
	case ChatTypeGroup, ChatTypeSupergroup:
		switch {
		case fromID == nil || (msg.SenderChat != nil && msg.SenderChat.ID == msg.Chat.ID):
			msg.From = groupAnonymousBotUser()
			msg.SenderChat = msg.Chat
		case msg.IsAutomaticForward:
			msg.From = serviceNotificationUser()
		default:
			msg.From = channelBotUser()
		}
	}
}

// fillForward sets the forward origin and the automatic forward flag.
func (b *Bot) fillForward(ctx context.Context, msg *Message, fwd tg.MessageFwdHeader) {
	if fwd.Date == 0 && fwd.FromID == nil && fwd.FromName == "" {
		return
	}

	origin := &MessageOrigin{Date: int64(fwd.Date)}

	switch from := fwd.FromID.(type) {
	case *tg.PeerUser:
		origin.Type = OriginUser
		origin.SenderUser = b.resolver.ResolveUser(ctx, from.UserID)
	case *tg.PeerChannel:
		chat := b.resolver.ClassifyPeer(ctx, from, false)

		if fwd.ChannelPost != 0 {
			origin.Type = OriginChannel
			origin.Chat = chat
			origin.MessageID = fwd.ChannelPost
		} else {
			origin.Type = OriginChat
			origin.SenderChat = chat
		}

		origin.AuthorSignature = fwd.PostAuthor
	case *tg.PeerChat:
		origin.Type = OriginChat
		origin.SenderChat = b.resolver.ClassifyPeer(ctx, from, false)
		origin.AuthorSignature = fwd.PostAuthor
	default:
		origin.Type = OriginHiddenUser
		origin.SenderUserName = fwd.FromName
	}

	msg.ForwardOrigin = origin

	_, fromChannel := fwd.FromID.(*tg.PeerChannel)
	_, savedFromChannel := fwd.SavedFromPeer.(*tg.PeerChannel)
	msg.IsAutomaticForward = fromChannel && savedFromChannel && msg.Chat.Type == ChatTypeSupergroup
}

// fillThread sets the forum topic a message belongs to. A topic creation
// message anchors its own topic.
func fillThread(msg *Message, replyTo tg.MessageReplyHeaderClass, topicCreate bool) {
	header, ok := replyTo.(*tg.MessageReplyHeader)

	switch {
	case ok && header.ForumTopic:
		msg.MessageThreadID = header.ReplyToTopID
		if msg.MessageThreadID == 0 {
			msg.MessageThreadID = header.ReplyToMsgID
		}

		msg.IsTopicMessage = true
	case replyTo == nil && topicCreate:
		msg.MessageThreadID = msg.MessageID
		msg.IsTopicMessage = true
	}
}

// replyToMessageID returns the ID of the message a wire message replies to
// within the same chat.
func replyToMessageID(replyTo tg.MessageReplyHeaderClass) int {
	header, ok := replyTo.(*tg.MessageReplyHeader)
	if !ok || header.ReplyToPeerID != nil {
		return 0
	}

	return header.ReplyToMsgID
}
