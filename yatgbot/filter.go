package yatgbot

import (
	"context"
	"regexp"
	"slices"
	"strings"

	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
)

// Filter is a function that determines whether a given update should be processed
type Filter func(ctx context.Context, deps FilterDependencies) (bool, yaerrors.Error)

// FilterDependencies holds the dependencies required by filters
type FilterDependencies struct {
	Bot    *Bot
	Update *Update
}

// messageText returns the text of a message update, or its caption for
// media messages.
func messageText(upd *Update) (string, bool) {
	msg, ok := upd.Message()
	if !ok {
		return "", false
	}

	if msg.Text != "" {
		return msg.Text, true
	}

	return msg.Caption, msg.Caption != ""
}

// TextEq creates a filter that checks if the message text equals the specified string.
//
// Example usage:
//
//	router.OnMessage(YourMessageHandler, yatgbot.TextEq("Hello"))
func TextEq(want string) Filter {
	return func(_ context.Context, deps FilterDependencies) (bool, yaerrors.Error) {
		text, ok := messageText(deps.Update)

		return ok && text == want, nil
	}
}

// TextRegex creates a filter that checks if the message text matches the specified regex.
//
// Example usage:
//
//	router.OnMessage(YourMessageHandler, yatgbot.TextRegex(regexp.MustCompile(`^Hello.*`)))
func TextRegex(re *regexp.Regexp) Filter {
	return func(_ context.Context, deps FilterDependencies) (bool, yaerrors.Error) {
		text, ok := messageText(deps.Update)

		return ok && re.MatchString(text), nil
	}
}

// Command matches messages starting with one of the bot commands, written
// as /name or /name@botusername. A mention of another bot never matches.
//
// Example usage:
//
//	router.OnMessage(YourStartHandler, yatgbot.Command("start", "help"))
func Command(names ...string) Filter {
	return func(ctx context.Context, deps FilterDependencies) (bool, yaerrors.Error) {
		msg, ok := deps.Update.Message()
		if !ok || !strings.HasPrefix(msg.Text, "/") {
			return false, nil
		}

		head, _, _ := strings.Cut(msg.Text[1:], " ")

		name, mention, mentioned := strings.Cut(head, "@")
		if mentioned && !strings.EqualFold(mention, deps.Bot.Me(ctx).Username) {
			return false, nil
		}

		return slices.Contains(names, name), nil
	}
}

// CallbackEq creates a filter that checks if the callback query data equals the specified string.
//
// Example usage:
//
//	router.OnCallback(YourCallbackHandler, yatgbot.CallbackEq("some_data"))
func CallbackEq(data string) Filter {
	return func(_ context.Context, deps FilterDependencies) (bool, yaerrors.Error) {
		q, ok := deps.Update.CallbackQuery()

		return ok && q.Data == data, nil
	}
}

// CallbackPrefix creates a filter that checks if the callback query data starts with the specified prefix.
//
// Example usage:
//
//	router.OnCallback(YourCallbackHandler, yatgbot.CallbackPrefix("prefix_"))
func CallbackPrefix(prefix string) Filter {
	return func(_ context.Context, deps FilterDependencies) (bool, yaerrors.Error) {
		q, ok := deps.Update.CallbackQuery()

		return ok && strings.HasPrefix(q.Data, prefix), nil
	}
}

// ChatTypeIs passes updates whose effective chat has one of the given types.
func ChatTypeIs(types ...ChatType) Filter {
	return func(_ context.Context, deps FilterDependencies) (bool, yaerrors.Error) {
		chat := deps.Update.EffectiveChat()

		return chat != nil && slices.Contains(types, chat.Type), nil
	}
}

// FromUser passes updates whose effective user is one of ids.
func FromUser(ids ...int64) Filter {
	return func(_ context.Context, deps FilterDependencies) (bool, yaerrors.Error) {
		user := deps.Update.EffectiveUser()

		return user != nil && slices.Contains(ids, user.ID), nil
	}
}

// ServiceActionIs passes service messages whose action has type T.
//
// Example usage:
//
//	router.OnMessage(YourWelcomeHandler, yatgbot.ServiceActionIs[yatgbot.NewChatMembers]())
func ServiceActionIs[T ServiceAction]() Filter {
	return func(_ context.Context, deps FilterDependencies) (bool, yaerrors.Error) {
		msg, ok := deps.Update.Message()
		if !ok {
			return false, nil
		}

		_, ok = msg.Action.(T)

		return ok, nil
	}
}

// HasMedia passes messages carrying media of type T.
//
// Example usage:
//
//	router.OnMessage(YourVoiceHandler, yatgbot.HasMedia[*yatgbot.Voice]())
func HasMedia[T MessageMedia]() Filter {
	return func(_ context.Context, deps FilterDependencies) (bool, yaerrors.Error) {
		msg, ok := deps.Update.Message()
		if !ok {
			return false, nil
		}

		_, ok = msg.Media.(T)

		return ok, nil
	}
}

// OneOfFilter creates a filter that passes if any of the provided filters pass.
//
// Example usage:
//
//	router.OnMessage(YourMessageHandler, yatgbot.OneOfFilter(filter1, filter2))
func OneOfFilter(filters ...Filter) Filter {
	return func(ctx context.Context, deps FilterDependencies) (bool, yaerrors.Error) {
		for _, f := range filters {
			ok, err := f(ctx, deps)
			if err != nil {
				return false, err.Wrap("or-filter check failed")
			}

			if ok {
				return true, nil
			}
		}

		return false, nil
	}
}

// AllOfFilter creates a filter that passes only if all of the provided filters pass.
//
// Example usage:
//
//	router.OnMessage(YourMessageHandler, yatgbot.AllOfFilter(filter1, filter2))
func AllOfFilter(filters ...Filter) Filter {
	return func(ctx context.Context, deps FilterDependencies) (bool, yaerrors.Error) {
		for _, f := range filters {
			ok, err := f(ctx, deps)
			if err != nil {
				return false, err.Wrap("and-filter check failed")
			}

			if !ok {
				return false, nil
			}
		}

		return true, nil
	}
}
