package yatgbot

import "github.com/gotd/td/tg"

const (
	// channelChatIDBase is the offset Bot API applies to channel and
	// supergroup IDs.
	channelChatIDBase int64 = -1000000000000
	// maxPeerID bounds raw group and channel IDs so that the user, group and
	// channel chat ID ranges never overlap.
	maxPeerID int64 = 1000000000000
)

// ChannelChatID converts a raw channel ID into a Bot API chat ID.
func ChannelChatID(channelID int64) int64 {
	return channelChatIDBase - channelID
}

// GroupChatID converts a raw basic group ID into a Bot API chat ID.
func GroupChatID(chatID int64) int64 {
	return -chatID
}

// PeerFromChatID classifies a Bot API chat ID and returns the wire peer it
// stands for. IDs outside the three ranges report false.
//
//	PeerFromChatID(42)             // &tg.PeerUser{UserID: 42}
//	PeerFromChatID(-42)            // &tg.PeerChat{ChatID: 42}
//	PeerFromChatID(-1000000000042) // &tg.PeerChannel{ChannelID: 42}
func PeerFromChatID(chatID int64) (tg.PeerClass, bool) {
	switch {
	case chatID > 0:
		return &tg.PeerUser{UserID: chatID}, true
	case chatID < 0 && chatID > -maxPeerID:
		return &tg.PeerChat{ChatID: -chatID}, true
	case chatID < channelChatIDBase && chatID > channelChatIDBase-maxPeerID:
		return &tg.PeerChannel{ChannelID: channelChatIDBase - chatID}, true
	default:
		return nil, false
	}
}

// ChatIDFromPeer is the inverse of PeerFromChatID. Unknown peers yield 0.
func ChatIDFromPeer(peer tg.PeerClass) int64 {
	switch p := peer.(type) {
	case *tg.PeerUser:
		return p.UserID
	case *tg.PeerChat:
		return GroupChatID(p.ChatID)
	case *tg.PeerChannel:
		return ChannelChatID(p.ChannelID)
	default:
		return 0
	}
}

func isChannelChatID(chatID int64) bool {
	_, ok := PeerFromChatID(chatID)

	return ok && chatID < channelChatIDBase
}

func isGroupChatID(chatID int64) bool {
	return chatID < 0 && chatID > -maxPeerID
}

// guessChatType picks the chat type a chat ID most likely has when nothing
// else is known about it.
func guessChatType(chatID int64) ChatType {
	switch {
	case chatID < channelChatIDBase:
		return ChatTypeChannel
	case chatID < 0:
		return ChatTypeGroup
	default:
		return ChatTypePrivate
	}
}
