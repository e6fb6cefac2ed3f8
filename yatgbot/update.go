package yatgbot

import (
	"encoding/json"

	"github.com/gotd/td/tg"
)

// UpdatePayload is implemented by every value an Update can carry.
type UpdatePayload interface {
	updatePayload()
}

// Update is a normalized incoming event. Exactly one payload is set and Type
// tells how to read it.
type Update struct {
	UpdateID int64
	Type     UpdateType
	Payload  UpdatePayload
	Raw      tg.UpdateClass
}

// MarshalJSON renders the Bot API shape {"update_id":N,"<type>":{...}}.
func (u *Update) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"update_id":     u.UpdateID,
		u.Type.String(): u.Payload,
	})
}

func payloadAs[T UpdatePayload](u *Update) (T, bool) {
	payload, ok := u.Payload.(T)

	return payload, ok
}

// Message returns the message of message, edited_message, channel_post and
// edited_channel_post updates.
func (u *Update) Message() (*Message, bool) {
	return payloadAs[*Message](u)
}

func (u *Update) InlineQuery() (*InlineQuery, bool) {
	return payloadAs[*InlineQuery](u)
}

func (u *Update) ChosenInlineResult() (*ChosenInlineResult, bool) {
	return payloadAs[*ChosenInlineResult](u)
}

func (u *Update) CallbackQuery() (*CallbackQuery, bool) {
	return payloadAs[*CallbackQuery](u)
}

// ChatMember returns the payload of both my_chat_member and chat_member updates.
func (u *Update) ChatMember() (*ChatMemberUpdated, bool) {
	return payloadAs[*ChatMemberUpdated](u)
}

func (u *Update) Poll() (*Poll, bool) {
	return payloadAs[*Poll](u)
}

func (u *Update) PollAnswer() (*PollAnswer, bool) {
	return payloadAs[*PollAnswer](u)
}

func (u *Update) ChatJoinRequest() (*ChatJoinRequest, bool) {
	return payloadAs[*ChatJoinRequest](u)
}

func (u *Update) ShippingQuery() (*ShippingQuery, bool) {
	return payloadAs[*ShippingQuery](u)
}

func (u *Update) PreCheckoutQuery() (*PreCheckoutQuery, bool) {
	return payloadAs[*PreCheckoutQuery](u)
}

// EffectiveChat returns the chat the update happened in, if any.
func (u *Update) EffectiveChat() *Chat {
	switch p := u.Payload.(type) {
	case *Message:
		return p.Chat
	case *CallbackQuery:
		if p.Message != nil {
			return p.Message.Chat
		}
	case *ChatMemberUpdated:
		return p.Chat
	case *ChatJoinRequest:
		return p.Chat
	}

	return nil
}

// EffectiveUser returns the user that caused the update, if any.
func (u *Update) EffectiveUser() *User {
	switch p := u.Payload.(type) {
	case *Message:
		return p.From
	case *InlineQuery:
		return p.From
	case *ChosenInlineResult:
		return p.From
	case *CallbackQuery:
		return p.From
	case *ChatMemberUpdated:
		return p.From
	case *PollAnswer:
		return p.User
	case *ChatJoinRequest:
		return p.From
	case *ShippingQuery:
		return p.From
	case *PreCheckoutQuery:
		return p.From
	}

	return nil
}

type InlineQuery struct {
	ID       string    `json:"id"`
	From     *User     `json:"from"`
	Query    string    `json:"query"`
	Offset   string    `json:"offset"`
	ChatType ChatType  `json:"chat_type,omitempty"`
	Location *Location `json:"location,omitempty"`
}

type ChosenInlineResult struct {
	ResultID        string    `json:"result_id"`
	From            *User     `json:"from"`
	Location        *Location `json:"location,omitempty"`
	InlineMessageID string    `json:"inline_message_id,omitempty"`
	Query           string    `json:"query"`
}

type CallbackQuery struct {
	ID              string   `json:"id"`
	From            *User    `json:"from"`
	Message         *Message `json:"message,omitempty"`
	InlineMessageID string   `json:"inline_message_id,omitempty"`
	ChatInstance    string   `json:"chat_instance"`
	Data            string   `json:"data,omitempty"`
	GameShortName   string   `json:"game_short_name,omitempty"`
}

type PollAnswer struct {
	PollID    string `json:"poll_id"`
	VoterChat *Chat  `json:"voter_chat,omitempty"`
	User      *User  `json:"user,omitempty"`
	OptionIDs []int  `json:"option_ids"`
}

type ChatJoinRequest struct {
	Chat       *Chat           `json:"chat"`
	From       *User           `json:"from"`
	UserChatID int64           `json:"user_chat_id"`
	Date       int64           `json:"date"`
	Bio        string          `json:"bio,omitempty"`
	InviteLink *ChatInviteLink `json:"invite_link,omitempty"`
}

type ShippingQuery struct {
	ID              string          `json:"id"`
	From            *User           `json:"from"`
	InvoicePayload  string          `json:"invoice_payload"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
}

type PreCheckoutQuery struct {
	ID               string     `json:"id"`
	From             *User      `json:"from"`
	Currency         string     `json:"currency"`
	TotalAmount      int64      `json:"total_amount"`
	InvoicePayload   string     `json:"invoice_payload"`
	ShippingOptionID string     `json:"shipping_option_id,omitempty"`
	OrderInfo        *OrderInfo `json:"order_info,omitempty"`
}

func (*Message) updatePayload()            {}
func (*InlineQuery) updatePayload()        {}
func (*ChosenInlineResult) updatePayload() {}
func (*CallbackQuery) updatePayload()      {}
func (*ChatMemberUpdated) updatePayload()  {}
func (*Poll) updatePayload()               {}
func (*PollAnswer) updatePayload()         {}
func (*ChatJoinRequest) updatePayload()    {}
func (*ShippingQuery) updatePayload()      {}
func (*PreCheckoutQuery) updatePayload()   {}
