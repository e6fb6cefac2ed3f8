package yatgbot

import (
	"net/http"
	"strings"

	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
)

// UpdateType tells which payload an Update carries.
type UpdateType uint8

const (
	UpdateTypeMessage UpdateType = iota
	UpdateTypeEditedMessage
	UpdateTypeChannelPost
	UpdateTypeEditedChannelPost
	UpdateTypeInlineQuery
	UpdateTypeChosenInlineResult
	UpdateTypeCallbackQuery
	UpdateTypeShippingQuery
	UpdateTypePreCheckoutQuery
	UpdateTypePoll
	UpdateTypePollAnswer
	UpdateTypeMyChatMember
	UpdateTypeChatMember
	UpdateTypeChatJoinRequest

	updateTypeCount
)

var updateTypeNames = [updateTypeCount]string{
	"message",
	"edited_message",
	"channel_post",
	"edited_channel_post",
	"inline_query",
	"chosen_inline_result",
	"callback_query",
	"shipping_query",
	"pre_checkout_query",
	"poll",
	"poll_answer",
	"my_chat_member",
	"chat_member",
	"chat_join_request",
}

// String returns the Bot API name of the update type.
func (t UpdateType) String() string {
	if t >= updateTypeCount {
		return "unknown"
	}

	return updateTypeNames[t]
}

// ParseUpdateType is the inverse of UpdateType.String.
func ParseUpdateType(name string) (UpdateType, yaerrors.Error) {
	name = strings.ToLower(strings.TrimSpace(name))

	for i, known := range updateTypeNames {
		if known == name {
			return UpdateType(i), nil
		}
	}

	return 0, yaerrors.FromError(http.StatusBadRequest, ErrUnknownUpdateType, "failed to parse update type "+name)
}

// AllowedUpdates is a set of update types a bot wants to receive. The zero
// value stands for the Bot API default: everything except chat_member.
type AllowedUpdates uint32

func DefaultAllowedUpdates() AllowedUpdates {
	return AllowUpdates(allUpdateTypes()...).Without(UpdateTypeChatMember)
}

// AllowUpdates builds a set holding exactly types.
func AllowUpdates(types ...UpdateType) AllowedUpdates {
	var allowed AllowedUpdates

	for _, t := range types {
		allowed |= 1 << t
	}

	return allowed
}

// ParseAllowedUpdates reads Bot API update names. An empty list selects the
// default set.
//
//	allowed, err := yatgbot.ParseAllowedUpdates([]string{"message", "chat_member"})
func ParseAllowedUpdates(names []string) (AllowedUpdates, yaerrors.Error) {
	types := make([]UpdateType, 0, len(names))

	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}

		t, err := ParseUpdateType(name)
		if err != nil {
			return 0, err.Wrap("failed to parse allowed updates")
		}

		types = append(types, t)
	}

	if len(types) == 0 {
		return DefaultAllowedUpdates(), nil
	}

	return AllowUpdates(types...), nil
}

// UnmarshalText accepts a comma separated list of update names, so the set
// can be loaded from the environment.
func (a *AllowedUpdates) UnmarshalText(text []byte) error {
	allowed, err := ParseAllowedUpdates(strings.Split(string(text), ","))
	if err != nil {
		return err
	}

	*a = allowed

	return nil
}

func (a AllowedUpdates) Allows(t UpdateType) bool {
	if a == 0 {
		a = DefaultAllowedUpdates()
	}

	return a&(1<<t) != 0
}

func (a AllowedUpdates) Without(types ...UpdateType) AllowedUpdates {
	for _, t := range types {
		a &^= 1 << t
	}

	return a
}

// Names lists the allowed update names in declaration order.
func (a AllowedUpdates) Names() []string {
	names := make([]string, 0, updateTypeCount)

	for _, t := range allUpdateTypes() {
		if a.Allows(t) {
			names = append(names, t.String())
		}
	}

	return names
}

func allUpdateTypes() []UpdateType {
	types := make([]UpdateType, 0, updateTypeCount)

	for t := range updateTypeCount {
		types = append(types, t)
	}

	return types
}
