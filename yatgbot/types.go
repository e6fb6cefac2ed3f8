package yatgbot

import (
	"github.com/gotd/td/tg"
)

// ChatType is the Bot API chat kind.
type ChatType string

const (
	ChatTypePrivate    ChatType = "private"
	ChatTypeGroup      ChatType = "group"
	ChatTypeSupergroup ChatType = "supergroup"
	ChatTypeChannel    ChatType = "channel"
	// ChatTypeSender is the private chat with the author of an inline query.
	ChatTypeSender ChatType = "sender"
)

// Service accounts Bot API substitutes for senders that are not users.
const (
	ServiceNotificationID int64 = 777000
	GroupAnonymousBotID   int64 = 1087968824
	ChannelBotID          int64 = 136817688
)

type User struct {
	ID                      int64  `json:"id"`
	IsBot                   bool   `json:"is_bot"`
	FirstName               string `json:"first_name"`
	LastName                string `json:"last_name,omitempty"`
	Username                string `json:"username,omitempty"`
	LanguageCode            string `json:"language_code,omitempty"`
	IsPremium               bool   `json:"is_premium,omitempty"`
	AddedToAttachmentMenu   bool   `json:"added_to_attachment_menu,omitempty"`
	CanJoinGroups           bool   `json:"can_join_groups,omitempty"`
	CanReadAllGroupMessages bool   `json:"can_read_all_group_messages,omitempty"`
	SupportsInlineQueries   bool   `json:"supports_inline_queries,omitempty"`
}

type Chat struct {
	ID        int64    `json:"id"`
	Type      ChatType `json:"type"`
	Title     string   `json:"title,omitempty"`
	Username  string   `json:"username,omitempty"`
	FirstName string   `json:"first_name,omitempty"`
	LastName  string   `json:"last_name,omitempty"`
	IsForum   bool     `json:"is_forum,omitempty"`
}

func serviceNotificationUser() *User {
	return &User{ID: ServiceNotificationID, FirstName: "Telegram"}
}

func groupAnonymousBotUser() *User {
	return &User{ID: GroupAnonymousBotID, IsBot: true, FirstName: "Group", Username: "GroupAnonymousBot"}
}

func channelBotUser() *User {
	return &User{ID: ChannelBotID, IsBot: true, FirstName: "Channel", Username: "Channel_Bot"}
}

func privateChat(user *User) *Chat {
	return &Chat{
		ID:        user.ID,
		Type:      ChatTypePrivate,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

func userFromTG(u *tg.User) *User {
	user := &User{
		ID:                    u.ID,
		IsBot:                 u.Bot,
		FirstName:             u.FirstName,
		LastName:              u.LastName,
		Username:              u.Username,
		LanguageCode:          u.LangCode,
		IsPremium:             u.Premium,
		AddedToAttachmentMenu: u.AttachMenuEnabled,
	}

	if user.Username == "" {
		for _, name := range u.Usernames {
			if name.Active {
				user.Username = name.Username

				break
			}
		}
	}

	if u.Bot {
		user.CanJoinGroups = !u.BotNochats
		user.CanReadAllGroupMessages = u.BotChatHistory
		user.SupportsInlineQueries = u.BotInlinePlaceholder != ""
	}

	return user
}

// Location is a point on the map. Live location fields are zero for static
// points. Heading and ProximityAlertRadius are nil unless the server sent
// them, so a reported zero stays distinct from an absent value.
type Location struct {
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	HorizontalAccuracy   float64 `json:"horizontal_accuracy,omitempty"`
	LivePeriod           int     `json:"live_period,omitempty"`
	Heading              *int    `json:"heading,omitempty"`
	ProximityAlertRadius *int    `json:"proximity_alert_radius,omitempty"`
}

func locationFromGeo(geo tg.GeoPointClass) *Location {
	point, ok := geo.(*tg.GeoPoint)
	if !ok {
		return nil
	}

	return &Location{
		Latitude:           point.Lat,
		Longitude:          point.Long,
		HorizontalAccuracy: float64(point.AccuracyRadius),
	}
}

type ShippingAddress struct {
	CountryCode string `json:"country_code"`
	State       string `json:"state"`
	City        string `json:"city"`
	StreetLine1 string `json:"street_line1"`
	StreetLine2 string `json:"street_line2"`
	PostCode    string `json:"post_code"`
}

func shippingAddressFromTG(address tg.PostAddress) ShippingAddress {
	return ShippingAddress{
		CountryCode: address.CountryISO2,
		State:       address.State,
		City:        address.City,
		StreetLine1: address.StreetLine1,
		StreetLine2: address.StreetLine2,
		PostCode:    address.PostCode,
	}
}

type OrderInfo struct {
	Name            string           `json:"name,omitempty"`
	PhoneNumber     string           `json:"phone_number,omitempty"`
	Email           string           `json:"email,omitempty"`
	ShippingAddress *ShippingAddress `json:"shipping_address,omitempty"`
}

func orderInfoFromTG(info tg.PaymentRequestedInfo) *OrderInfo {
	empty := tg.PostAddress{}
	if info.Name == "" && info.Phone == "" && info.Email == "" && info.ShippingAddress == empty {
		return nil
	}

	order := &OrderInfo{
		Name:        info.Name,
		PhoneNumber: info.Phone,
		Email:       info.Email,
	}

	if info.ShippingAddress != empty {
		address := shippingAddressFromTG(info.ShippingAddress)
		order.ShippingAddress = &address
	}

	return order
}
