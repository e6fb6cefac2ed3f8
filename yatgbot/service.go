package yatgbot

import (
	"context"

	"github.com/gotd/td/tg"
)

// ServiceAction is implemented by every service event a Message can carry.
type ServiceAction interface {
	serviceAction() (string, any)
}

type (
	NewChatMembers                []*User
	LeftChatMember                struct{ User *User }
	NewChatTitle                  string
	NewChatPhoto                  PhotoSizes
	DeleteChatPhoto               struct{}
	GroupChatCreated              struct{}
	SupergroupChatCreated         struct{}
	ChannelChatCreated            struct{}
	MessageAutoDeleteTimerChanged struct {
		MessageAutoDeleteTime int `json:"message_auto_delete_time"`
	}
	MigrateToChatID   int64
	MigrateFromChatID int64
	// PinnedMessage holds the pinned message. When the message could not be
	// fetched only its ID, chat and a zero date are set. Message is nil when
	// the server did not name the pinned message.
	PinnedMessage struct{ Message *Message }
)

type SuccessfulPayment struct {
	Currency                   string     `json:"currency"`
	TotalAmount                int64      `json:"total_amount"`
	InvoicePayload             string     `json:"invoice_payload"`
	SubscriptionExpirationDate int64      `json:"subscription_expiration_date,omitempty"`
	IsRecurring                bool       `json:"is_recurring,omitempty"`
	IsFirstRecurring           bool       `json:"is_first_recurring,omitempty"`
	ShippingOptionID           string     `json:"shipping_option_id,omitempty"`
	OrderInfo                  *OrderInfo `json:"order_info,omitempty"`
	TelegramPaymentChargeID    string     `json:"telegram_payment_charge_id"`
	ProviderPaymentChargeID    string     `json:"provider_payment_charge_id"`
}

type SharedUser struct {
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

type UsersShared struct {
	RequestID int          `json:"request_id"`
	Users     []SharedUser `json:"users"`
}

type ChatShared struct {
	RequestID int    `json:"request_id"`
	ChatID    int64  `json:"chat_id"`
	Title     string `json:"title,omitempty"`
	Username  string `json:"username,omitempty"`
}

type WriteAccessAllowed struct {
	FromRequest        bool   `json:"from_request,omitempty"`
	WebAppName         string `json:"web_app_name,omitempty"`
	FromAttachmentMenu bool   `json:"from_attachment_menu,omitempty"`
}

type ConnectedWebsite string

type ProximityAlertTriggered struct {
	Traveler *User `json:"traveler"`
	Watcher  *User `json:"watcher"`
	Distance int   `json:"distance"`
}

type VideoChatScheduled struct {
	StartDate int64 `json:"start_date"`
}

type VideoChatStarted struct{}

type VideoChatEnded struct {
	Duration int `json:"duration"`
}

type VideoChatParticipantsInvited struct {
	Users []*User `json:"users"`
}

type WebAppData struct {
	Data       string `json:"data"`
	ButtonText string `json:"button_text"`
}

type ForumTopicCreated struct {
	Name              string `json:"name"`
	IconColor         int    `json:"icon_color"`
	IconCustomEmojiID string `json:"icon_custom_emoji_id,omitempty"`
}

type ForumTopicEdited struct {
	Name              string `json:"name,omitempty"`
	IconCustomEmojiID string `json:"icon_custom_emoji_id,omitempty"`
}

type (
	ForumTopicClosed          struct{}
	ForumTopicReopened        struct{}
	GeneralForumTopicHidden   struct{}
	GeneralForumTopicUnhidden struct{}
)

var emptyObject = struct{}{}

func (a NewChatMembers) serviceAction() (string, any)   { return "new_chat_members", []*User(a) }
func (a *LeftChatMember) serviceAction() (string, any)  { return "left_chat_member", a.User }
func (a NewChatTitle) serviceAction() (string, any)     { return "new_chat_title", string(a) }
func (a NewChatPhoto) serviceAction() (string, any)     { return "new_chat_photo", []PhotoSize(a) }
func (*DeleteChatPhoto) serviceAction() (string, any)   { return "delete_chat_photo", true }
func (*GroupChatCreated) serviceAction() (string, any)  { return "group_chat_created", true }
func (a MigrateToChatID) serviceAction() (string, any)  { return "migrate_to_chat_id", int64(a) }
func (a *PinnedMessage) serviceAction() (string, any)   { return "pinned_message", a.Message }
func (a ConnectedWebsite) serviceAction() (string, any) { return "connected_website", string(a) }

func (*SupergroupChatCreated) serviceAction() (string, any) { return "supergroup_chat_created", true }
func (*ChannelChatCreated) serviceAction() (string, any)    { return "channel_chat_created", true }
func (a MigrateFromChatID) serviceAction() (string, any)    { return "migrate_from_chat_id", int64(a) }
func (a *SuccessfulPayment) serviceAction() (string, any)   { return "successful_payment", a }
func (a *UsersShared) serviceAction() (string, any)         { return "users_shared", a }
func (a *ChatShared) serviceAction() (string, any)          { return "chat_shared", a }
func (a *WriteAccessAllowed) serviceAction() (string, any)  { return "write_access_allowed", a }
func (a *VideoChatScheduled) serviceAction() (string, any)  { return "video_chat_scheduled", a }
func (*VideoChatStarted) serviceAction() (string, any)      { return "video_chat_started", emptyObject }
func (a *VideoChatEnded) serviceAction() (string, any)      { return "video_chat_ended", a }
func (a *WebAppData) serviceAction() (string, any)          { return "web_app_data", a }
func (a *ForumTopicCreated) serviceAction() (string, any)   { return "forum_topic_created", a }
func (a *ForumTopicEdited) serviceAction() (string, any)    { return "forum_topic_edited", a }
func (*ForumTopicClosed) serviceAction() (string, any)      { return "forum_topic_closed", emptyObject }
func (*ForumTopicReopened) serviceAction() (string, any)    { return "forum_topic_reopened", emptyObject }

func (a *MessageAutoDeleteTimerChanged) serviceAction() (string, any) {
	return "message_auto_delete_timer_changed", a
}

func (a *ProximityAlertTriggered) serviceAction() (string, any) {
	return "proximity_alert_triggered", a
}

func (a *VideoChatParticipantsInvited) serviceAction() (string, any) {
	return "video_chat_participants_invited", a
}

func (*GeneralForumTopicHidden) serviceAction() (string, any) {
	return "general_forum_topic_hidden", emptyObject
}

func (*GeneralForumTopicUnhidden) serviceAction() (string, any) {
	return "general_forum_topic_unhidden", emptyObject
}

// serviceAction maps a wire service action to its canonical form. Actions
// without a Bot API counterpart yield nil.
func (b *Bot) serviceAction(
	ctx context.Context,
	msg *Message,
	wire *tg.MessageService,
	replyTo *Message,
) ServiceAction {
	switch a := wire.Action.(type) {
	case *tg.MessageActionChatAddUser:
		return b.resolveUsers(ctx, a.Users)
	case *tg.MessageActionChatJoinedByLink, *tg.MessageActionChatJoinedByRequest:
		if msg.From == nil {
			return nil
		}

		return NewChatMembers{msg.From}
	case *tg.MessageActionChatDeleteUser:
		return &LeftChatMember{User: b.resolver.ResolveUser(ctx, a.UserID)}
	case *tg.MessageActionChatEditTitle:
		return NewChatTitle(a.Title)
	case *tg.MessageActionChatEditPhoto:
		photo, ok := a.Photo.(*tg.Photo)
		if !ok {
			return nil
		}

		return NewChatPhoto(photoSizes(photo))
	case *tg.MessageActionChatDeletePhoto:
		return &DeleteChatPhoto{}
	case *tg.MessageActionChatCreate:
		return &GroupChatCreated{}
	case *tg.MessageActionChannelCreate:
		if msg.Chat != nil && msg.Chat.Type == ChatTypeChannel {
			return &ChannelChatCreated{}
		}

		return &SupergroupChatCreated{}
	case *tg.MessageActionSetMessagesTTL:
		return &MessageAutoDeleteTimerChanged{MessageAutoDeleteTime: a.Period}
	case *tg.MessageActionChatMigrateTo:
		return MigrateToChatID(ChannelChatID(a.ChannelID))
	case *tg.MessageActionChannelMigrateFrom:
		return MigrateFromChatID(GroupChatID(a.ChatID))
	case *tg.MessageActionPinMessage:
		return b.pinnedMessage(ctx, msg, wire, replyTo)
	case *tg.MessageActionPaymentSentMe:
		return &SuccessfulPayment{
			Currency:                   a.Currency,
			TotalAmount:                a.TotalAmount,
			InvoicePayload:             string(a.Payload),
			SubscriptionExpirationDate: int64(a.SubscriptionUntilDate),
			IsRecurring:                a.RecurringUsed || a.RecurringInit,
			IsFirstRecurring:           a.RecurringInit,
			ShippingOptionID:           a.ShippingOptionID,
			OrderInfo:                  orderInfoFromTG(a.Info),
			TelegramPaymentChargeID:    a.Charge.ID,
			ProviderPaymentChargeID:    a.Charge.ProviderChargeID,
		}
	case *tg.MessageActionRequestedPeer:
		return sharedPeers(a.ButtonID, requestedPeersFromPeers(a.Peers))
	case *tg.MessageActionRequestedPeerSentMe:
		return sharedPeers(a.ButtonID, a.Peers)
	case *tg.MessageActionBotAllowed:
		if a.Domain != "" {
			return ConnectedWebsite(a.Domain)
		}

		allowed := &WriteAccessAllowed{FromRequest: a.FromRequest, FromAttachmentMenu: a.AttachMenu}
		if app, ok := a.App.(*tg.BotApp); ok {
			allowed.WebAppName = app.ShortName
		}

		return allowed
	case *tg.MessageActionGeoProximityReached:
		traveler, okTraveler := a.FromID.(*tg.PeerUser)
		watcher, okWatcher := a.ToID.(*tg.PeerUser)

		if !okTraveler || !okWatcher {
			return nil
		}

		return &ProximityAlertTriggered{
			Traveler: b.resolver.ResolveUser(ctx, traveler.UserID),
			Watcher:  b.resolver.ResolveUser(ctx, watcher.UserID),
			Distance: a.Distance,
		}
	case *tg.MessageActionGroupCallScheduled:
		return &VideoChatScheduled{StartDate: int64(a.ScheduleDate)}
	case *tg.MessageActionGroupCall:
		if duration, ok := a.GetDuration(); ok {
			return &VideoChatEnded{Duration: duration}
		}

		return &VideoChatStarted{}
	case *tg.MessageActionInviteToGroupCall:
		return &VideoChatParticipantsInvited{Users: b.resolveUsers(ctx, a.Users)}
	case *tg.MessageActionWebViewDataSentMe:
		return &WebAppData{Data: a.Data, ButtonText: a.Text}
	case *tg.MessageActionTopicCreate:
		created := &ForumTopicCreated{Name: a.Title, IconColor: a.IconColor}
		if a.IconEmojiID != 0 {
			created.IconCustomEmojiID = formatID(a.IconEmojiID)
		}

		return created
	case *tg.MessageActionTopicEdit:
		return topicEdit(a)
	default:
		return nil
	}
}

func (b *Bot) resolveUsers(ctx context.Context, ids []int64) NewChatMembers {
	users := make(NewChatMembers, 0, len(ids))

	for _, id := range ids {
		users = append(users, b.resolver.ResolveUser(ctx, id))
	}

	return users
}

// pinnedMessage never suppresses the pin. A missing reply header leaves the
// pinned message nil.
func (b *Bot) pinnedMessage(
	ctx context.Context,
	msg *Message,
	wire *tg.MessageService,
	replyTo *Message,
) ServiceAction {
	if replyTo != nil {
		return &PinnedMessage{Message: replyTo}
	}

	id := replyToMessageID(wire.ReplyTo)
	if id == 0 {
		return &PinnedMessage{}
	}

	if pinned := b.fetchMessage(ctx, msg.Chat, id); pinned != nil {
		return &PinnedMessage{Message: pinned}
	}

	return &PinnedMessage{Message: &Message{MessageID: id, Chat: msg.Chat}}
}

func requestedPeersFromPeers(peers []tg.PeerClass) []tg.RequestedPeerClass {
	requested := make([]tg.RequestedPeerClass, 0, len(peers))

	for _, peer := range peers {
		switch p := peer.(type) {
		case *tg.PeerUser:
			requested = append(requested, &tg.RequestedPeerUser{UserID: p.UserID})
		case *tg.PeerChat:
			requested = append(requested, &tg.RequestedPeerChat{ChatID: p.ChatID})
		case *tg.PeerChannel:
			requested = append(requested, &tg.RequestedPeerChannel{ChannelID: p.ChannelID})
		}
	}

	return requested
}

// sharedPeers builds users_shared when every peer is a user and chat_shared
// for a single chat.
func sharedPeers(requestID int, peers []tg.RequestedPeerClass) ServiceAction {
	if len(peers) == 0 {
		return nil
	}

	users := make([]SharedUser, 0, len(peers))

	for _, peer := range peers {
		user, ok := peer.(*tg.RequestedPeerUser)
		if !ok {
			break
		}

		users = append(users, SharedUser{
			UserID:    user.UserID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Username:  user.Username,
		})
	}

	if len(users) == len(peers) {
		return &UsersShared{RequestID: requestID, Users: users}
	}

	switch p := peers[0].(type) {
	case *tg.RequestedPeerChat:
		return &ChatShared{RequestID: requestID, ChatID: GroupChatID(p.ChatID), Title: p.Title}
	case *tg.RequestedPeerChannel:
		return &ChatShared{
			RequestID: requestID,
			ChatID:    ChannelChatID(p.ChannelID),
			Title:     p.Title,
			Username:  p.Username,
		}
	default:
		return nil
	}
}

func topicEdit(a *tg.MessageActionTopicEdit) ServiceAction {
	if closed, ok := a.GetClosed(); ok {
		if closed {
			return &ForumTopicClosed{}
		}

		return &ForumTopicReopened{}
	}

	if hidden, ok := a.GetHidden(); ok {
		if hidden {
			return &GeneralForumTopicHidden{}
		}

		return &GeneralForumTopicUnhidden{}
	}

	edited := &ForumTopicEdited{}

	if title, ok := a.GetTitle(); ok {
		edited.Name = title
	}

	if iconID, ok := a.GetIconEmojiID(); ok {
		edited.IconCustomEmojiID = formatID(iconID)
	}

	return edited
}
