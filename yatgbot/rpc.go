package yatgbot

import (
	"context"

	"github.com/gotd/td/tg"
)

// RPC is the subset of the MTProto API the adapter calls. *tg.Client
// satisfies it.
type RPC interface {
	UsersGetUsers(ctx context.Context, id []tg.InputUserClass) ([]tg.UserClass, error)
	ChannelsGetChannels(ctx context.Context, id []tg.InputChannelClass) (tg.MessagesChatsClass, error)
	MessagesGetChats(ctx context.Context, id []int64) (tg.MessagesChatsClass, error)
	MessagesGetMessages(ctx context.Context, id []tg.InputMessageClass) (tg.MessagesMessagesClass, error)
	ChannelsGetMessages(
		ctx context.Context,
		request *tg.ChannelsGetMessagesRequest,
	) (tg.MessagesMessagesClass, error)
	MessagesGetStickerSet(
		ctx context.Context,
		request *tg.MessagesGetStickerSetRequest,
	) (tg.MessagesStickerSetClass, error)

	MessagesSendMessage(ctx context.Context, request *tg.MessagesSendMessageRequest) (tg.UpdatesClass, error)
	MessagesSendMedia(ctx context.Context, request *tg.MessagesSendMediaRequest) (tg.UpdatesClass, error)
	MessagesSendMultiMedia(
		ctx context.Context,
		request *tg.MessagesSendMultiMediaRequest,
	) (tg.UpdatesClass, error)
	MessagesForwardMessages(
		ctx context.Context,
		request *tg.MessagesForwardMessagesRequest,
	) (tg.UpdatesClass, error)
	MessagesEditMessage(ctx context.Context, request *tg.MessagesEditMessageRequest) (tg.UpdatesClass, error)
	MessagesDeleteMessages(
		ctx context.Context,
		request *tg.MessagesDeleteMessagesRequest,
	) (*tg.MessagesAffectedMessages, error)
	ChannelsDeleteMessages(
		ctx context.Context,
		request *tg.ChannelsDeleteMessagesRequest,
	) (*tg.MessagesAffectedMessages, error)
	MessagesEditChatTitle(ctx context.Context, request *tg.MessagesEditChatTitleRequest) (tg.UpdatesClass, error)
	ChannelsEditTitle(ctx context.Context, request *tg.ChannelsEditTitleRequest) (tg.UpdatesClass, error)
	MessagesUpdatePinnedMessage(
		ctx context.Context,
		request *tg.MessagesUpdatePinnedMessageRequest,
	) (tg.UpdatesClass, error)
	ChannelsGetParticipant(
		ctx context.Context,
		request *tg.ChannelsGetParticipantRequest,
	) (*tg.ChannelsChannelParticipant, error)
	ChannelsEditAdmin(ctx context.Context, request *tg.ChannelsEditAdminRequest) (tg.UpdatesClass, error)
}

// FileCache stores small derived values, such as sticker set names, between
// updates. A miss is reported as (false, nil).
type FileCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Put(ctx context.Context, key string, value any) error
}
