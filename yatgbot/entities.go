package yatgbot

import (
	"context"
	"strconv"

	"github.com/gotd/td/tg"
)

// Entity kinds.
const (
	EntityMention              = "mention"
	EntityHashtag              = "hashtag"
	EntityCashtag              = "cashtag"
	EntityBotCommand           = "bot_command"
	EntityURL                  = "url"
	EntityEmail                = "email"
	EntityPhoneNumber          = "phone_number"
	EntityBold                 = "bold"
	EntityItalic               = "italic"
	EntityUnderline            = "underline"
	EntityStrikethrough        = "strikethrough"
	EntitySpoiler              = "spoiler"
	EntityBlockquote           = "blockquote"
	EntityExpandableBlockquote = "expandable_blockquote"
	EntityCode                 = "code"
	EntityPre                  = "pre"
	EntityTextLink             = "text_link"
	EntityTextMention          = "text_mention"
	EntityCustomEmoji          = "custom_emoji"
	entityBankCard             = "bank_card_number"
)

// MessageEntity marks a special span of message text. Offsets and lengths
// count UTF-16 code units.
type MessageEntity struct {
	Type          string `json:"type"`
	Offset        int    `json:"offset"`
	Length        int    `json:"length"`
	URL           string `json:"url,omitempty"`
	User          *User  `json:"user,omitempty"`
	Language      string `json:"language,omitempty"`
	CustomEmojiID string `json:"custom_emoji_id,omitempty"`
}

func (b *Bot) convertEntities(ctx context.Context, entities []tg.MessageEntityClass) []MessageEntity {
	if len(entities) == 0 {
		return nil
	}

	result := make([]MessageEntity, 0, len(entities))

	for _, entity := range entities {
		converted := MessageEntity{Offset: entity.GetOffset(), Length: entity.GetLength()}

		switch e := entity.(type) {
		case *tg.MessageEntityMention:
			converted.Type = EntityMention
		case *tg.MessageEntityHashtag:
			converted.Type = EntityHashtag
		case *tg.MessageEntityCashtag:
			converted.Type = EntityCashtag
		case *tg.MessageEntityBotCommand:
			converted.Type = EntityBotCommand
		case *tg.MessageEntityURL:
			converted.Type = EntityURL
		case *tg.MessageEntityEmail:
			converted.Type = EntityEmail
		case *tg.MessageEntityPhone:
			converted.Type = EntityPhoneNumber
		case *tg.MessageEntityBankCard:
			converted.Type = entityBankCard
		case *tg.MessageEntityBold:
			converted.Type = EntityBold
		case *tg.MessageEntityItalic:
			converted.Type = EntityItalic
		case *tg.MessageEntityUnderline:
			converted.Type = EntityUnderline
		case *tg.MessageEntityStrike:
			converted.Type = EntityStrikethrough
		case *tg.MessageEntitySpoiler:
			converted.Type = EntitySpoiler
		case *tg.MessageEntityBlockquote:
			converted.Type = EntityBlockquote
			if e.Collapsed {
				converted.Type = EntityExpandableBlockquote
			}
		case *tg.MessageEntityCode:
			converted.Type = EntityCode
		case *tg.MessageEntityPre:
			converted.Type = EntityPre
			converted.Language = e.Language
		case *tg.MessageEntityTextURL:
			converted.Type = EntityTextLink
			converted.URL = e.URL
		case *tg.MessageEntityMentionName:
			converted.Type = EntityTextMention
			converted.User = b.resolver.ResolveUser(ctx, e.UserID)
		case *tg.MessageEntityCustomEmoji:
			converted.Type = EntityCustomEmoji
			converted.CustomEmojiID = strconv.FormatInt(e.DocumentID, 10)
		default:
			continue
		}

		result = append(result, converted)
	}

	return result
}

// entitiesToTG converts entities back to the wire form. Unknown kinds are
// dropped.
func (b *Bot) entitiesToTG(ctx context.Context, entities []MessageEntity) []tg.MessageEntityClass {
	if len(entities) == 0 {
		return nil
	}

	result := make([]tg.MessageEntityClass, 0, len(entities))

	for _, e := range entities {
		offset, length := e.Offset, e.Length

		var converted tg.MessageEntityClass

		switch e.Type {
		case EntityMention:
			converted = &tg.MessageEntityMention{Offset: offset, Length: length}
		case EntityHashtag:
			converted = &tg.MessageEntityHashtag{Offset: offset, Length: length}
		case EntityCashtag:
			converted = &tg.MessageEntityCashtag{Offset: offset, Length: length}
		case EntityBotCommand:
			converted = &tg.MessageEntityBotCommand{Offset: offset, Length: length}
		case EntityURL:
			converted = &tg.MessageEntityURL{Offset: offset, Length: length}
		case EntityEmail:
			converted = &tg.MessageEntityEmail{Offset: offset, Length: length}
		case EntityPhoneNumber:
			converted = &tg.MessageEntityPhone{Offset: offset, Length: length}
		case EntityBold:
			converted = &tg.MessageEntityBold{Offset: offset, Length: length}
		case EntityItalic:
			converted = &tg.MessageEntityItalic{Offset: offset, Length: length}
		case EntityUnderline:
			converted = &tg.MessageEntityUnderline{Offset: offset, Length: length}
		case EntityStrikethrough:
			converted = &tg.MessageEntityStrike{Offset: offset, Length: length}
		case EntitySpoiler:
			converted = &tg.MessageEntitySpoiler{Offset: offset, Length: length}
		case EntityBlockquote, EntityExpandableBlockquote:
			converted = &tg.MessageEntityBlockquote{
				Collapsed: e.Type == EntityExpandableBlockquote,
				Offset:    offset,
				Length:    length,
			}
		case EntityCode:
			converted = &tg.MessageEntityCode{Offset: offset, Length: length}
		case EntityPre:
			converted = &tg.MessageEntityPre{Offset: offset, Length: length, Language: e.Language}
		case EntityTextLink:
			converted = &tg.MessageEntityTextURL{Offset: offset, Length: length, URL: e.URL}
		case EntityTextMention:
			if e.User == nil {
				continue
			}

			user, err := b.resolver.InputUser(ctx, e.User.ID)
			if err != nil {
				continue
			}

			converted = &tg.InputMessageEntityMentionName{Offset: offset, Length: length, UserID: user}
		case EntityCustomEmoji:
			id, err := strconv.ParseInt(e.CustomEmojiID, 10, 64)
			if err != nil {
				continue
			}

			converted = &tg.MessageEntityCustomEmoji{Offset: offset, Length: length, DocumentID: id}
		default:
			continue
		}

		result = append(result, converted)
	}

	return result
}
