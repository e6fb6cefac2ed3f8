package yatgbot_test

import (
	"context"
	"sync"
	"testing"

	"github.com/YaCodeDev/GoYaTgBotAPI/yatgbot"
	"github.com/gotd/td/tg"
)

const testBotID int64 = 7000

// fakeRPC answers lookups from in-memory tables and hands every send request
// to answer.
type fakeRPC struct {
	mu sync.Mutex

	users    map[int64]*tg.User
	chats    map[int64]tg.ChatClass
	messages map[int]tg.MessageClass

	usersErr error
	sendErr  error

	getUsersCalls    int
	stickerSetCalls  int
	stickerSetName   string
	participant      tg.ChannelParticipantClass
	participantErr   error
	requests         []any
	deleteRequests   []any
	answer           func(request any) tg.UpdatesClass
	lastGetMessageID []tg.InputMessageClass
}

func newFakeRPC() *fakeRPC {
	return &fakeRPC{
		users: map[int64]*tg.User{
			testBotID: {ID: testBotID, Bot: true, FirstName: "Echo", Username: "echo_bot", AccessHash: 1},
		},
		chats:    map[int64]tg.ChatClass{},
		messages: map[int]tg.MessageClass{},
	}
}

func (f *fakeRPC) addUser(user *tg.User) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.users[user.ID] = user
}

func (f *fakeRPC) addChat(chat tg.ChatClass) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.chats[chat.GetID()] = chat
}

func (f *fakeRPC) addMessage(msg tg.MessageClass) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.messages[msg.GetID()] = msg
}

func (f *fakeRPC) UsersGetUsers(_ context.Context, ids []tg.InputUserClass) ([]tg.UserClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.getUsersCalls++

	if f.usersErr != nil {
		return nil, f.usersErr
	}

	var result []tg.UserClass

	for _, id := range ids {
		var userID int64

		switch input := id.(type) {
		case *tg.InputUser:
			userID = input.UserID
		case *tg.InputUserSelf:
			userID = testBotID
		}

		if user, ok := f.users[userID]; ok {
			result = append(result, user)
		}
	}

	return result, nil
}

func (f *fakeRPC) chatsByID(ids []int64) tg.MessagesChatsClass {
	var result []tg.ChatClass

	for _, id := range ids {
		if chat, ok := f.chats[id]; ok {
			result = append(result, chat)
		}
	}

	return &tg.MessagesChats{Chats: result}
}

func (f *fakeRPC) ChannelsGetChannels(_ context.Context, ids []tg.InputChannelClass) (tg.MessagesChatsClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw := make([]int64, 0, len(ids))

	for _, id := range ids {
		if channel, ok := id.(*tg.InputChannel); ok {
			raw = append(raw, channel.ChannelID)
		}
	}

	return f.chatsByID(raw), nil
}

func (f *fakeRPC) MessagesGetChats(_ context.Context, ids []int64) (tg.MessagesChatsClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.chatsByID(ids), nil
}

func (f *fakeRPC) messagesByID(ids []tg.InputMessageClass) []tg.MessageClass {
	f.lastGetMessageID = ids

	var result []tg.MessageClass

	for _, id := range ids {
		if input, ok := id.(*tg.InputMessageID); ok {
			if msg, ok := f.messages[input.ID]; ok {
				result = append(result, msg)
			}
		}
	}

	return result
}

func (f *fakeRPC) MessagesGetMessages(_ context.Context, ids []tg.InputMessageClass) (tg.MessagesMessagesClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return &tg.MessagesMessages{Messages: f.messagesByID(ids)}, nil
}

func (f *fakeRPC) ChannelsGetMessages(
	_ context.Context,
	request *tg.ChannelsGetMessagesRequest,
) (tg.MessagesMessagesClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return &tg.MessagesChannelMessages{Messages: f.messagesByID(request.ID)}, nil
}

func (f *fakeRPC) MessagesGetStickerSet(
	_ context.Context,
	_ *tg.MessagesGetStickerSetRequest,
) (tg.MessagesStickerSetClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stickerSetCalls++

	return &tg.MessagesStickerSet{Set: tg.StickerSet{ShortName: f.stickerSetName}}, nil
}

func (f *fakeRPC) send(request any) (tg.UpdatesClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, request)

	if f.sendErr != nil {
		return nil, f.sendErr
	}

	if f.answer == nil {
		return &tg.Updates{}, nil
	}

	return f.answer(request), nil
}

func (f *fakeRPC) lastRequest() any {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.requests) == 0 {
		return nil
	}

	return f.requests[len(f.requests)-1]
}

func (f *fakeRPC) MessagesSendMessage(_ context.Context, r *tg.MessagesSendMessageRequest) (tg.UpdatesClass, error) {
	return f.send(r)
}

func (f *fakeRPC) MessagesSendMedia(_ context.Context, r *tg.MessagesSendMediaRequest) (tg.UpdatesClass, error) {
	return f.send(r)
}

func (f *fakeRPC) MessagesSendMultiMedia(
	_ context.Context,
	r *tg.MessagesSendMultiMediaRequest,
) (tg.UpdatesClass, error) {
	return f.send(r)
}

func (f *fakeRPC) MessagesForwardMessages(
	_ context.Context,
	r *tg.MessagesForwardMessagesRequest,
) (tg.UpdatesClass, error) {
	return f.send(r)
}

func (f *fakeRPC) MessagesEditMessage(_ context.Context, r *tg.MessagesEditMessageRequest) (tg.UpdatesClass, error) {
	return f.send(r)
}

func (f *fakeRPC) MessagesDeleteMessages(
	_ context.Context,
	r *tg.MessagesDeleteMessagesRequest,
) (*tg.MessagesAffectedMessages, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleteRequests = append(f.deleteRequests, r)

	return &tg.MessagesAffectedMessages{}, f.sendErr
}

func (f *fakeRPC) ChannelsDeleteMessages(
	_ context.Context,
	r *tg.ChannelsDeleteMessagesRequest,
) (*tg.MessagesAffectedMessages, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleteRequests = append(f.deleteRequests, r)

	return &tg.MessagesAffectedMessages{}, f.sendErr
}

func (f *fakeRPC) MessagesEditChatTitle(
	_ context.Context,
	r *tg.MessagesEditChatTitleRequest,
) (tg.UpdatesClass, error) {
	return f.send(r)
}

func (f *fakeRPC) ChannelsEditTitle(_ context.Context, r *tg.ChannelsEditTitleRequest) (tg.UpdatesClass, error) {
	return f.send(r)
}

func (f *fakeRPC) MessagesUpdatePinnedMessage(
	_ context.Context,
	r *tg.MessagesUpdatePinnedMessageRequest,
) (tg.UpdatesClass, error) {
	return f.send(r)
}

func (f *fakeRPC) ChannelsGetParticipant(
	_ context.Context,
	_ *tg.ChannelsGetParticipantRequest,
) (*tg.ChannelsChannelParticipant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.participantErr != nil {
		return nil, f.participantErr
	}

	return &tg.ChannelsChannelParticipant{Participant: f.participant}, nil
}

func (f *fakeRPC) ChannelsEditAdmin(_ context.Context, r *tg.ChannelsEditAdminRequest) (tg.UpdatesClass, error) {
	return f.send(r)
}

func newTestBot(t *testing.T, rpc *fakeRPC, options ...func(*yatgbot.Options)) *yatgbot.Bot {
	t.Helper()

	opts := yatgbot.Options{SelfID: testBotID}
	for _, apply := range options {
		apply(&opts)
	}

	return yatgbot.New(rpc, opts)
}

// userMessage is a plain text message sent by userID in the private chat with the bot.
func userMessage(id int, userID int64, text string) *tg.Message {
	return &tg.Message{
		ID:      id,
		FromID:  &tg.PeerUser{UserID: userID},
		PeerID:  &tg.PeerUser{UserID: userID},
		Date:    1700000000,
		Message: text,
	}
}
