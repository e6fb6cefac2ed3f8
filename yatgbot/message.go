package yatgbot

import (
	"encoding/json"

	"github.com/gotd/td/tg"
)

// Message is a canonical message identified by (Chat.ID, MessageID). It
// holds at most one media value and at most one service action. Messages
// are not modified after construction; an edit arrives as a new value.
type Message struct {
	MessageID             int             `json:"message_id"`
	MessageThreadID       int             `json:"message_thread_id,omitempty"`
	From                  *User           `json:"from,omitempty"`
	SenderChat            *Chat           `json:"sender_chat,omitempty"`
	Date                  int64           `json:"date"`
	Chat                  *Chat           `json:"chat"`
	ForwardOrigin         *MessageOrigin  `json:"forward_origin,omitempty"`
	IsTopicMessage        bool            `json:"is_topic_message,omitempty"`
	IsAutomaticForward    bool            `json:"is_automatic_forward,omitempty"`
	ReplyToMessage        *Message        `json:"reply_to_message,omitempty"`
	ViaBot                *User           `json:"via_bot,omitempty"`
	EditDate              int64           `json:"edit_date,omitempty"`
	HasProtectedContent   bool            `json:"has_protected_content,omitempty"`
	MediaGroupID          string          `json:"media_group_id,omitempty"`
	AuthorSignature       string          `json:"author_signature,omitempty"`
	Text                  string          `json:"text,omitempty"`
	Entities              []MessageEntity `json:"entities,omitempty"`
	Caption               string          `json:"caption,omitempty"`
	CaptionEntities       []MessageEntity `json:"caption_entities,omitempty"`
	ShowCaptionAboveMedia bool            `json:"show_caption_above_media,omitempty"`
	HasMediaSpoiler       bool            `json:"has_media_spoiler,omitempty"`

	Media  MessageMedia    `json:"-"`
	Action ServiceAction   `json:"-"`
	Raw    tg.MessageClass `json:"-"`
}

// Origin kinds of a forwarded message.
const (
	OriginUser       = "user"
	OriginHiddenUser = "hidden_user"
	OriginChat       = "chat"
	OriginChannel    = "channel"
)

// MessageOrigin describes where a forwarded message came from. Type selects
// which of the other fields are set.
type MessageOrigin struct {
	Type            string `json:"type"`
	Date            int64  `json:"date"`
	SenderUser      *User  `json:"sender_user,omitempty"`
	SenderUserName  string `json:"sender_user_name,omitempty"`
	SenderChat      *Chat  `json:"sender_chat,omitempty"`
	Chat            *Chat  `json:"chat,omitempty"`
	MessageID       int    `json:"message_id,omitempty"`
	AuthorSignature string `json:"author_signature,omitempty"`
}

type messageJSON Message

// MarshalJSON flattens Media and Action into the Bot API field they
// correspond to ("voice", "new_chat_members", ...).
func (m *Message) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal((*messageJSON)(m))
	if err != nil || (m.Media == nil && m.Action == nil) {
		return raw, err
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	if m.Media != nil {
		key, value := m.Media.messageMedia()
		if fields[key], err = json.Marshal(value); err != nil {
			return nil, err
		}
	}

	if m.Action != nil {
		key, value := m.Action.serviceAction()
		if fields[key], err = json.Marshal(value); err != nil {
			return nil, err
		}
	}

	return json.Marshal(fields)
}
