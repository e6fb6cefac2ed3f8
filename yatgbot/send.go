package yatgbot

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net/http"
	"unicode/utf8"

	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
	"github.com/gotd/td/tg"
)

const (
	minMediaGroupSize    = 2
	maxMediaGroupSize    = 10
	maxCustomTitleLength = 16
	defaultDiceEmoji     = "🎲"
)

// SendOptions are the optional parameters shared by the send methods. Fields
// a method has no use for are ignored.
type SendOptions struct {
	ReplyToMessageID      int
	MessageThreadID       int
	DisableNotification   bool
	ProtectContent        bool
	DisableWebPagePreview bool
	ShowCaptionAboveMedia bool
	HasSpoiler            bool
	Entities              []MessageEntity
	// Priority orders the call in the message queue, lower runs first.
	Priority uint16
}

func (o *SendOptions) orDefault() *SendOptions {
	if o == nil {
		return &SendOptions{}
	}

	return o
}

func (o *SendOptions) replyTo() tg.InputReplyToClass {
	if o.ReplyToMessageID == 0 && o.MessageThreadID == 0 {
		return nil
	}

	reply := &tg.InputReplyToMessage{ReplyToMsgID: o.ReplyToMessageID, TopMsgID: o.MessageThreadID}
	if reply.ReplyToMsgID == 0 {
		reply.ReplyToMsgID = o.MessageThreadID
	}

	return reply
}

// InputMediaItem is one element of a media group, referenced by file ID.
type InputMediaItem struct {
	FileID          string
	Caption         string
	CaptionEntities []MessageEntity
	HasSpoiler      bool
}

// GetMe returns the bot user and refreshes the cached record.
func (b *Bot) GetMe(ctx context.Context) (*User, yaerrors.Error) {
	users, err := b.rpc.UsersGetUsers(ctx, []tg.InputUserClass{&tg.InputUserSelf{}})
	if err != nil {
		return nil, yaerrors.FromRPC(err, "failed to get bot user")
	}

	for _, u := range users {
		if user, ok := u.(*tg.User); ok {
			b.resolver.Collect([]tg.UserClass{user}, nil)

			return userFromTG(user), nil
		}
	}

	return nil, yaerrors.FromError(http.StatusBadGateway, ErrSelfNotFound, "failed to get bot user")
}

// GetChat returns the chat with chatID. Unknown chats yield a stub.
func (b *Bot) GetChat(ctx context.Context, chatID int64) (*Chat, yaerrors.Error) {
	if _, ok := PeerFromChatID(chatID); !ok {
		return nil, yaerrors.FromError(http.StatusBadRequest, ErrInvalidChatID, "failed to get chat")
	}

	return b.resolver.ResolveChat(ctx, chatID), nil
}

// SendMessage sends a text message.
//
//	msg, err := bot.SendMessage(ctx, chatID, "hi", &yatgbot.SendOptions{ReplyToMessageID: 42})
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) (*Message, yaerrors.Error) {
	opts = opts.orDefault()

	if text == "" {
		return nil, yaerrors.FromError(http.StatusBadRequest, ErrEmptyText, "failed to send message")
	}

	peer, yaErr := b.resolver.InputPeer(ctx, chatID)
	if yaErr != nil {
		return nil, yaErr.Wrap("failed to send message")
	}

	request := &tg.MessagesSendMessageRequest{
		NoWebpage:   opts.DisableWebPagePreview,
		Silent:      opts.DisableNotification,
		Noforwards:  opts.ProtectContent,
		InvertMedia: opts.ShowCaptionAboveMedia,
		Peer:        peer,
		ReplyTo:     opts.replyTo(),
		Message:     text,
		RandomID:    randomIDs(1),
		Entities:    b.entitiesToTG(ctx, opts.Entities),
	}

	updates, yaErr := b.invoke(ctx, opts.Priority, func(ctx context.Context) (tg.UpdatesClass, error) {
		return b.rpc.MessagesSendMessage(ctx, request)
	})
	if yaErr != nil {
		return nil, yaErr.Wrap("failed to send message")
	}

	msg, yaErr := b.CorrelateOne(ctx, updates, chatID, text, b.replyTarget(ctx, chatID, opts))
	if yaErr != nil {
		return nil, yaErr.Wrap("failed to send message")
	}

	return msg, nil
}

// SendPhoto sends a photo that is already on the server.
func (b *Bot) SendPhoto(
	ctx context.Context,
	chatID int64,
	fileID string,
	caption string,
	opts *SendOptions,
) (*Message, yaerrors.Error) {
	media, yaErr := inputMediaFromFileID(fileID, opts.orDefault().HasSpoiler)
	if yaErr != nil {
		return nil, yaErr.Wrap("failed to send photo")
	}

	if _, ok := media.(*tg.InputMediaPhoto); !ok {
		return nil, yaerrors.FromError(http.StatusBadRequest, ErrInvalidFileID, "failed to send photo: not a photo")
	}

	return b.sendMedia(ctx, chatID, media, caption, opts)
}

// SendDocument sends a document that is already on the server.
func (b *Bot) SendDocument(
	ctx context.Context,
	chatID int64,
	fileID string,
	caption string,
	opts *SendOptions,
) (*Message, yaerrors.Error) {
	media, yaErr := inputMediaFromFileID(fileID, opts.orDefault().HasSpoiler)
	if yaErr != nil {
		return nil, yaErr.Wrap("failed to send document")
	}

	if _, ok := media.(*tg.InputMediaDocument); !ok {
		return nil, yaerrors.FromError(http.StatusBadRequest, ErrInvalidFileID, "failed to send document: not a document")
	}

	return b.sendMedia(ctx, chatID, media, caption, opts)
}

// SendDice sends an animated emoji with a random value. An empty emoji
// means a die.
func (b *Bot) SendDice(ctx context.Context, chatID int64, emoji string, opts *SendOptions) (*Message, yaerrors.Error) {
	if emoji == "" {
		emoji = defaultDiceEmoji
	}

	return b.sendMedia(ctx, chatID, &tg.InputMediaDice{Emoticon: emoji}, "", opts)
}

func (b *Bot) SendLocation(
	ctx context.Context,
	chatID int64,
	latitude, longitude float64,
	opts *SendOptions,
) (*Message, yaerrors.Error) {
	return b.sendMedia(ctx, chatID, &tg.InputMediaGeoPoint{
		GeoPoint: &tg.InputGeoPoint{Lat: latitude, Long: longitude},
	}, "", opts)
}

func (b *Bot) SendContact(
	ctx context.Context,
	chatID int64,
	phoneNumber, firstName, lastName string,
	opts *SendOptions,
) (*Message, yaerrors.Error) {
	if firstName == "" {
		return nil, yaerrors.FromError(http.StatusBadRequest, ErrEmptyFirstName, "failed to send contact")
	}

	return b.sendMedia(ctx, chatID, &tg.InputMediaContact{
		PhoneNumber: phoneNumber,
		FirstName:   firstName,
		LastName:    lastName,
	}, "", opts)
}

func (b *Bot) sendMedia(
	ctx context.Context,
	chatID int64,
	media tg.InputMediaClass,
	caption string,
	opts *SendOptions,
) (*Message, yaerrors.Error) {
	opts = opts.orDefault()

	peer, yaErr := b.resolver.InputPeer(ctx, chatID)
	if yaErr != nil {
		return nil, yaErr.Wrap("failed to send media")
	}

	request := &tg.MessagesSendMediaRequest{
		Silent:      opts.DisableNotification,
		Noforwards:  opts.ProtectContent,
		InvertMedia: opts.ShowCaptionAboveMedia,
		Peer:        peer,
		ReplyTo:     opts.replyTo(),
		Media:       media,
		Message:     caption,
		RandomID:    randomIDs(1),
		Entities:    b.entitiesToTG(ctx, opts.Entities),
	}

	updates, yaErr := b.invoke(ctx, opts.Priority, func(ctx context.Context) (tg.UpdatesClass, error) {
		return b.rpc.MessagesSendMedia(ctx, request)
	})
	if yaErr != nil {
		return nil, yaErr.Wrap("failed to send media")
	}

	msg, yaErr := b.CorrelateOne(ctx, updates, chatID, caption, b.replyTarget(ctx, chatID, opts))
	if yaErr != nil {
		return nil, yaErr.Wrap("failed to send media")
	}

	return msg, nil
}

// SendMediaGroup sends 2-10 photos or documents as one album. The result
// follows the order of items.
func (b *Bot) SendMediaGroup(
	ctx context.Context,
	chatID int64,
	items []InputMediaItem,
	opts *SendOptions,
) ([]*Message, yaerrors.Error) {
	opts = opts.orDefault()

	if len(items) < minMediaGroupSize || len(items) > maxMediaGroupSize {
		return nil, yaerrors.FromError(http.StatusBadRequest, ErrMediaGroupSize, "failed to send media group")
	}

	peer, yaErr := b.resolver.InputPeer(ctx, chatID)
	if yaErr != nil {
		return nil, yaErr.Wrap("failed to send media group")
	}

	start := randomIDs(len(items))
	multi := make([]tg.InputSingleMedia, 0, len(items))

	for i, item := range items {
		media, yaErr := inputMediaFromFileID(item.FileID, item.HasSpoiler)
		if yaErr != nil {
			return nil, yaErr.Wrap("failed to send media group")
		}

		multi = append(multi, tg.InputSingleMedia{
			Media:    media,
			RandomID: start + int64(i),
			Message:  item.Caption,
			Entities: b.entitiesToTG(ctx, item.CaptionEntities),
		})
	}

	request := &tg.MessagesSendMultiMediaRequest{
		Silent:      opts.DisableNotification,
		Noforwards:  opts.ProtectContent,
		InvertMedia: opts.ShowCaptionAboveMedia,
		Peer:        peer,
		ReplyTo:     opts.replyTo(),
		MultiMedia:  multi,
	}

	updates, yaErr := b.invoke(ctx, opts.Priority, func(ctx context.Context) (tg.UpdatesClass, error) {
		return b.rpc.MessagesSendMultiMedia(ctx, request)
	})
	if yaErr != nil {
		return nil, yaErr.Wrap("failed to send media group")
	}

	messages, yaErr := b.CorrelateMany(ctx, updates, len(items), start, b.replyTarget(ctx, chatID, opts))
	if yaErr != nil {
		return nil, yaErr.Wrap("failed to send media group")
	}

	return messages, nil
}

// ForwardMessage forwards one message of fromChatID to chatID.
func (b *Bot) ForwardMessage(
	ctx context.Context,
	chatID, fromChatID int64,
	messageID int,
	opts *SendOptions,
) (*Message, yaerrors.Error) {
	opts = opts.orDefault()

	if messageID <= 0 {
		return nil, yaerrors.FromError(http.StatusBadRequest, ErrInvalidMessageID, "failed to forward message")
	}

	to, yaErr := b.resolver.InputPeer(ctx, chatID)
	if yaErr != nil {
		return nil, yaErr.Wrap("failed to forward message")
	}

	from, yaErr := b.resolver.InputPeer(ctx, fromChatID)
	if yaErr != nil {
		return nil, yaErr.Wrap("failed to forward message")
	}

	randomID := randomIDs(1)
	request := &tg.MessagesForwardMessagesRequest{
		Silent:     opts.DisableNotification,
		Noforwards: opts.ProtectContent,
		FromPeer:   from,
		ID:         []int{messageID},
		RandomID:   []int64{randomID},
		ToPeer:     to,
		TopMsgID:   opts.MessageThreadID,
	}

	updates, yaErr := b.invoke(ctx, opts.Priority, func(ctx context.Context) (tg.UpdatesClass, error) {
		return b.rpc.MessagesForwardMessages(ctx, request)
	})
	if yaErr != nil {
		return nil, yaErr.Wrap("failed to forward message")
	}

	messages, yaErr := b.CorrelateMany(ctx, updates, 1, randomID, nil)
	if yaErr != nil {
		return nil, yaErr.Wrap("failed to forward message")
	}

	return messages[0], nil
}

// EditMessageText replaces the text of a message sent by the bot.
func (b *Bot) EditMessageText(
	ctx context.Context,
	chatID int64,
	messageID int,
	text string,
	opts *SendOptions,
) (*Message, yaerrors.Error) {
	opts = opts.orDefault()

	if text == "" {
		return nil, yaerrors.FromError(http.StatusBadRequest, ErrEmptyText, "failed to edit message text")
	}

	if messageID <= 0 {
		return nil, yaerrors.FromError(http.StatusBadRequest, ErrInvalidMessageID, "failed to edit message text")
	}

	peer, yaErr := b.resolver.InputPeer(ctx, chatID)
	if yaErr != nil {
		return nil, yaErr.Wrap("failed to edit message text")
	}

	request := &tg.MessagesEditMessageRequest{
		NoWebpage:   opts.DisableWebPagePreview,
		InvertMedia: opts.ShowCaptionAboveMedia,
		Peer:        peer,
		ID:          messageID,
		Message:     text,
		Entities:    b.entitiesToTG(ctx, opts.Entities),
	}

	updates, yaErr := b.invoke(ctx, opts.Priority, func(ctx context.Context) (tg.UpdatesClass, error) {
		return b.rpc.MessagesEditMessage(ctx, request)
	})
	if yaErr != nil {
		return nil, yaErr.Wrap("failed to edit message text")
	}

	msg, yaErr := b.CorrelateOne(ctx, updates, chatID, text, nil)
	if yaErr != nil {
		return nil, yaErr.Wrap("failed to edit message text")
	}

	return msg, nil
}

// DeleteMessage deletes a message for everyone.
func (b *Bot) DeleteMessage(ctx context.Context, chatID int64, messageID int) yaerrors.Error {
	if messageID <= 0 {
		return yaerrors.FromError(http.StatusBadRequest, ErrInvalidMessageID, "failed to delete message")
	}

	if _, ok := PeerFromChatID(chatID); !ok {
		return yaerrors.FromError(http.StatusBadRequest, ErrInvalidChatID, "failed to delete message")
	}

	var err error

	if isChannelChatID(chatID) {
		channel, yaErr := b.resolver.InputChannel(ctx, chatID)
		if yaErr != nil {
			return yaErr.Wrap("failed to delete message")
		}

		_, err = b.rpc.ChannelsDeleteMessages(ctx, &tg.ChannelsDeleteMessagesRequest{
			Channel: channel,
			ID:      []int{messageID},
		})
	} else {
		_, err = b.rpc.MessagesDeleteMessages(ctx, &tg.MessagesDeleteMessagesRequest{
			Revoke: true,
			ID:     []int{messageID},
		})
	}

	if err != nil {
		return yaerrors.FromRPC(err, "failed to delete message")
	}

	return nil
}

// SetChatTitle renames a group, supergroup or channel.
func (b *Bot) SetChatTitle(ctx context.Context, chatID int64, title string) yaerrors.Error {
	if title == "" {
		return yaerrors.FromError(http.StatusBadRequest, ErrEmptyTitle, "failed to set chat title")
	}

	if yaErr := requireGroup(chatID); yaErr != nil {
		return yaErr.Wrap("failed to set chat title")
	}

	var (
		updates tg.UpdatesClass
		yaErr   yaerrors.Error
	)

	if isGroupChatID(chatID) {
		updates, yaErr = b.invoke(ctx, 0, func(ctx context.Context) (tg.UpdatesClass, error) {
			return b.rpc.MessagesEditChatTitle(ctx, &tg.MessagesEditChatTitleRequest{ChatID: -chatID, Title: title})
		})
	} else {
		channel, err := b.resolver.InputChannel(ctx, chatID)
		if err != nil {
			return err.Wrap("failed to set chat title")
		}

		updates, yaErr = b.invoke(ctx, 0, func(ctx context.Context) (tg.UpdatesClass, error) {
			return b.rpc.ChannelsEditTitle(ctx, &tg.ChannelsEditTitleRequest{Channel: channel, Title: title})
		})
	}

	if yaErr != nil {
		return yaErr.Wrap("failed to set chat title")
	}

	b.collectUpdates(updates)

	return nil
}

// PinChatMessage pins a message. Silent pins do not notify members.
func (b *Bot) PinChatMessage(ctx context.Context, chatID int64, messageID int, disableNotification bool) yaerrors.Error {
	if messageID <= 0 {
		return yaerrors.FromError(http.StatusBadRequest, ErrInvalidMessageID, "failed to pin message")
	}

	peer, yaErr := b.resolver.InputPeer(ctx, chatID)
	if yaErr != nil {
		return yaErr.Wrap("failed to pin message")
	}

	updates, yaErr := b.invoke(ctx, 0, func(ctx context.Context) (tg.UpdatesClass, error) {
		return b.rpc.MessagesUpdatePinnedMessage(ctx, &tg.MessagesUpdatePinnedMessageRequest{
			Silent: disableNotification,
			Peer:   peer,
			ID:     messageID,
		})
	})
	if yaErr != nil {
		return yaErr.Wrap("failed to pin message")
	}

	b.collectUpdates(updates)

	return nil
}

// SetChatAdministratorCustomTitle changes the title shown next to an
// administrator promoted by the bot in a supergroup.
func (b *Bot) SetChatAdministratorCustomTitle(
	ctx context.Context,
	chatID, userID int64,
	customTitle string,
) yaerrors.Error {
	if utf8.RuneCountInString(customTitle) > maxCustomTitleLength {
		return yaerrors.FromError(http.StatusBadRequest, ErrCustomTitleTooLong, "failed to set custom title")
	}

	if yaErr := requireSupergroup(chatID); yaErr != nil {
		return yaErr.Wrap("failed to set custom title")
	}

	channel, yaErr := b.resolver.InputChannel(ctx, chatID)
	if yaErr != nil {
		return yaErr.Wrap("failed to set custom title")
	}

	user, yaErr := b.resolver.InputUser(ctx, userID)
	if yaErr != nil {
		return yaErr.Wrap("failed to set custom title")
	}

	participant, err := b.rpc.ChannelsGetParticipant(ctx, &tg.ChannelsGetParticipantRequest{
		Channel:     channel,
		Participant: &tg.InputPeerUser{UserID: userID, AccessHash: inputUserAccessHash(user)},
	})
	if err != nil {
		return yaerrors.FromRPC(err, "failed to get chat member").Wrap("failed to set custom title")
	}

	b.resolver.Collect(participant.Users, participant.Chats)

	admin, ok := participant.Participant.(*tg.ChannelParticipantAdmin)
	if !ok {
		return yaerrors.FromError(http.StatusBadRequest, ErrNotAdministrator, "failed to set custom title")
	}

	updates, yaErr := b.invoke(ctx, 0, func(ctx context.Context) (tg.UpdatesClass, error) {
		return b.rpc.ChannelsEditAdmin(ctx, &tg.ChannelsEditAdminRequest{
			Channel:     channel,
			UserID:      user,
			AdminRights: admin.AdminRights,
			Rank:        customTitle,
		})
	})
	if yaErr != nil {
		return yaErr.Wrap("failed to set custom title")
	}

	b.collectUpdates(updates)

	return nil
}

// invoke runs one RPC through the message queue when the bot has one.
func (b *Bot) invoke(
	ctx context.Context,
	priority uint16,
	run func(ctx context.Context) (tg.UpdatesClass, error),
) (tg.UpdatesClass, yaerrors.Error) {
	var (
		updates tg.UpdatesClass
		err     error
	)

	if b.queue != nil {
		updates, err = b.queue.Do(ctx, priority, 1, run)
	} else {
		updates, err = run(ctx)
	}

	if err != nil {
		var yaErr yaerrors.Error
		if errors.As(err, &yaErr) {
			return nil, yaErr
		}

		return nil, yaerrors.FromRPC(err, "rpc call failed")
	}

	return updates, nil
}

// replyTarget fetches the message a send replies to, so that the sent
// message can carry it.
func (b *Bot) replyTarget(ctx context.Context, chatID int64, opts *SendOptions) *Message {
	if opts.ReplyToMessageID == 0 {
		return nil
	}

	return b.fetchMessage(ctx, b.resolver.ResolveChat(ctx, chatID), opts.ReplyToMessageID)
}

func (b *Bot) collectUpdates(updates tg.UpdatesClass) {
	_, users, chats := updateList(updates)
	b.resolver.Collect(users, chats)
}

func inputMediaFromFileID(fileID string, spoiler bool) (tg.InputMediaClass, yaerrors.Error) {
	location, yaErr := DecodeFileID(fileID)
	if yaErr != nil {
		return nil, yaErr
	}

	media, yaErr := location.InputMedia()
	if yaErr != nil {
		return nil, yaErr
	}

	switch m := media.(type) {
	case *tg.InputMediaPhoto:
		m.Spoiler = spoiler
	case *tg.InputMediaDocument:
		m.Spoiler = spoiler
	}

	return media, nil
}

func inputUserAccessHash(user tg.InputUserClass) int64 {
	if u, ok := user.(*tg.InputUser); ok {
		return u.AccessHash
	}

	return 0
}

func requireGroup(chatID int64) yaerrors.Error {
	peer, ok := PeerFromChatID(chatID)
	if !ok {
		return yaerrors.FromError(http.StatusBadRequest, ErrInvalidChatID, "invalid chat")
	}

	if _, private := peer.(*tg.PeerUser); private {
		return yaerrors.FromError(http.StatusBadRequest, ErrGroupChatOnly, "private chat")
	}

	return nil
}

func requireSupergroup(chatID int64) yaerrors.Error {
	if yaErr := requireGroup(chatID); yaErr != nil {
		return yaErr
	}

	if isGroupChatID(chatID) {
		return yaerrors.FromError(http.StatusBadRequest, ErrSupergroupOnly, "basic group")
	}

	return nil
}

// randomIDs reserves a block of n consecutive random IDs and returns the
// first one.
func randomIDs(n int) int64 {
	return rand.Int64N(math.MaxInt64 - int64(n))
}
