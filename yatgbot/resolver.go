package yatgbot

import (
	"context"
	"net/http"

	"github.com/YaCodeDev/GoYaTgBotAPI/threadsafemap"
	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
	"github.com/YaCodeDev/GoYaTgBotAPI/yalogger"
	"github.com/gotd/td/tg"
)

type userRecord struct {
	user       *User
	accessHash int64
	min        bool
}

type chatRecord struct {
	chat       *Chat
	accessHash int64
	min        bool
}

// Resolver turns user and chat IDs into canonical records. Records come from
// the entities delivered with updates and RPC answers, and a miss costs one
// round trip. Resolution never fails: when the server cannot be asked a stub
// carrying just the ID is returned, and stubs are not cached.
//
// Users are keyed by user ID and chats by Bot API chat ID. The cache lock is
// held only around a single map access, so two concurrent misses may both
// fetch the same record; the later write wins.
type Resolver struct {
	rpc   RPC
	users *threadsafemap.ThreadSafeMap[int64, userRecord]
	chats *threadsafemap.ThreadSafeMap[int64, chatRecord]
	log   yalogger.Logger
}

func NewResolver(rpc RPC, log yalogger.Logger) *Resolver {
	if log == nil {
		log = yalogger.NewBaseLogger(nil).NewLogger()
	}

	return &Resolver{
		rpc:   rpc,
		users: threadsafemap.NewThreadSafeMap[int64, userRecord](),
		chats: threadsafemap.NewThreadSafeMap[int64, chatRecord](),
		log:   log,
	}
}

// ResolveUser returns the user with id, asking users.getUsers on a miss.
func (r *Resolver) ResolveUser(ctx context.Context, id int64) *User {
	if id <= 0 {
		return &User{ID: id}
	}

	record, ok := r.users.Get(id)
	if ok && record.user != nil {
		return record.user
	}

	users, err := r.rpc.UsersGetUsers(ctx, []tg.InputUserClass{
		&tg.InputUser{UserID: id, AccessHash: record.accessHash},
	})
	if err != nil {
		r.log.Debugf("Failed to fetch user %d, using stub: %v", id, err)

		return &User{ID: id}
	}

	r.Collect(users, nil)

	if record, ok := r.users.Get(id); ok && record.user != nil {
		return record.user
	}

	r.log.Debugf("User %d is missing in server answer, using stub", id)

	return &User{ID: id}
}

// ResolveChat returns the chat with a Bot API chat ID. Private chats are built
// from the user record.
func (r *Resolver) ResolveChat(ctx context.Context, chatID int64) *Chat {
	peer, ok := PeerFromChatID(chatID)
	if !ok {
		return stubChat(chatID)
	}

	if p, ok := peer.(*tg.PeerUser); ok {
		user := r.ResolveUser(ctx, p.UserID)

		return privateChat(user)
	}

	record, ok := r.chats.Get(chatID)
	if ok && record.chat != nil {
		return record.chat
	}

	var (
		chats tg.MessagesChatsClass
		err   error
	)

	switch p := peer.(type) {
	case *tg.PeerChat:
		chats, err = r.rpc.MessagesGetChats(ctx, []int64{p.ChatID})
	case *tg.PeerChannel:
		chats, err = r.rpc.ChannelsGetChannels(ctx, []tg.InputChannelClass{
			&tg.InputChannel{ChannelID: p.ChannelID, AccessHash: record.accessHash},
		})
	}

	if err != nil {
		r.log.Debugf("Failed to fetch chat %d, using stub: %v", chatID, err)

		return stubChat(chatID)
	}

	if chats != nil {
		r.Collect(nil, chats.GetChats())
	}

	if record, ok := r.chats.Get(chatID); ok && record.chat != nil {
		return record.chat
	}

	r.log.Debugf("Chat %d is missing in server answer, using stub", chatID)

	return stubChat(chatID)
}

// ClassifyPeer resolves the chat a wire peer points to. User peers become
// private chats only when allowUserAsChat is set.
func (r *Resolver) ClassifyPeer(ctx context.Context, peer tg.PeerClass, allowUserAsChat bool) *Chat {
	switch p := peer.(type) {
	case *tg.PeerUser:
		if !allowUserAsChat {
			return nil
		}

		return r.ResolveChat(ctx, p.UserID)
	case *tg.PeerChat:
		return r.ResolveChat(ctx, GroupChatID(p.ChatID))
	case *tg.PeerChannel:
		return r.ResolveChat(ctx, ChannelChatID(p.ChannelID))
	default:
		return nil
	}
}

// Collect refreshes the cache with entities that came along an update or an
// RPC answer. A min record never replaces a full one.
func (r *Resolver) Collect(users []tg.UserClass, chats []tg.ChatClass) {
	for _, u := range users {
		user, ok := u.(*tg.User)
		if !ok {
			continue
		}

		r.storeUser(userRecord{user: userFromTG(user), accessHash: user.AccessHash, min: user.Min}, user.ID)
	}

	for _, c := range chats {
		switch chat := c.(type) {
		case *tg.Chat:
			r.chats.Set(GroupChatID(chat.ID), chatRecord{chat: &Chat{
				ID:    GroupChatID(chat.ID),
				Type:  ChatTypeGroup,
				Title: chat.Title,
			}})
		case *tg.ChatForbidden:
			r.chats.Set(GroupChatID(chat.ID), chatRecord{chat: &Chat{
				ID:    GroupChatID(chat.ID),
				Type:  ChatTypeGroup,
				Title: chat.Title,
			}})
		case *tg.Channel:
			r.storeChat(chatRecord{
				chat:       channelFromTG(chat.ID, chat.Title, chat.Username, chat.Broadcast, chat.Forum),
				accessHash: chat.AccessHash,
				min:        chat.Min,
			})
		case *tg.ChannelForbidden:
			r.storeChat(chatRecord{
				chat:       channelFromTG(chat.ID, chat.Title, "", chat.Broadcast, false),
				accessHash: chat.AccessHash,
			})
		}
	}
}

// RememberUser caches user as is. It is meant for records built outside of
// Collect, such as the bot itself.
func (r *Resolver) RememberUser(user *User, accessHash int64) {
	r.users.Set(user.ID, userRecord{user: user, accessHash: accessHash})
}

// InputPeer rebuilds the wire reference to a chat from cached access hashes.
func (r *Resolver) InputPeer(ctx context.Context, chatID int64) (tg.InputPeerClass, yaerrors.Error) {
	peer, ok := PeerFromChatID(chatID)
	if !ok {
		return nil, yaerrors.FromError(http.StatusBadRequest, ErrInvalidChatID, "failed to build input peer")
	}

	switch p := peer.(type) {
	case *tg.PeerUser:
		return &tg.InputPeerUser{UserID: p.UserID, AccessHash: r.userAccessHash(ctx, p.UserID)}, nil
	case *tg.PeerChat:
		return &tg.InputPeerChat{ChatID: p.ChatID}, nil
	case *tg.PeerChannel:
		return &tg.InputPeerChannel{ChannelID: p.ChannelID, AccessHash: r.channelAccessHash(ctx, chatID)}, nil
	}

	return nil, yaerrors.FromError(http.StatusBadRequest, ErrInvalidChatID, "failed to build input peer")
}

func (r *Resolver) InputUser(ctx context.Context, userID int64) (tg.InputUserClass, yaerrors.Error) {
	if userID <= 0 {
		return nil, yaerrors.FromError(http.StatusBadRequest, ErrInvalidChatID, "failed to build input user")
	}

	return &tg.InputUser{UserID: userID, AccessHash: r.userAccessHash(ctx, userID)}, nil
}

func (r *Resolver) InputChannel(ctx context.Context, chatID int64) (tg.InputChannelClass, yaerrors.Error) {
	if !isChannelChatID(chatID) {
		return nil, yaerrors.FromError(http.StatusBadRequest, ErrSupergroupOnly, "failed to build input channel")
	}

	return &tg.InputChannel{
		ChannelID:  channelChatIDBase - chatID,
		AccessHash: r.channelAccessHash(ctx, chatID),
	}, nil
}

func (r *Resolver) userAccessHash(ctx context.Context, userID int64) int64 {
	if record, ok := r.users.Get(userID); ok {
		return record.accessHash
	}

	r.ResolveUser(ctx, userID)

	record, _ := r.users.Get(userID)

	return record.accessHash
}

func (r *Resolver) channelAccessHash(ctx context.Context, chatID int64) int64 {
	if record, ok := r.chats.Get(chatID); ok {
		return record.accessHash
	}

	r.ResolveChat(ctx, chatID)

	record, _ := r.chats.Get(chatID)

	return record.accessHash
}

func (r *Resolver) storeUser(record userRecord, id int64) {
	r.users.Update(id, func(old userRecord, exists bool) userRecord {
		if record.min && exists && old.user != nil && !old.min {
			return old
		}

		return record
	})
}

func (r *Resolver) storeChat(record chatRecord) {
	r.chats.Update(record.chat.ID, func(old chatRecord, exists bool) chatRecord {
		if record.min && exists && old.chat != nil && !old.min {
			return old
		}

		return record
	})
}

func channelFromTG(id int64, title, username string, broadcast, forum bool) *Chat {
	chat := &Chat{
		ID:       ChannelChatID(id),
		Type:     ChatTypeSupergroup,
		Title:    title,
		Username: username,
		IsForum:  forum,
	}

	if broadcast {
		chat.Type = ChatTypeChannel
	}

	return chat
}

func stubChat(chatID int64) *Chat {
	return &Chat{ID: chatID, Type: guessChatType(chatID)}
}
