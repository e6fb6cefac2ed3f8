package yatgbot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gotd/td/tg"
)

// MessageMedia is implemented by every media value a Message can hold.
type MessageMedia interface {
	messageMedia() (string, any)
}

type PhotoSize struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	FileSize     int64  `json:"file_size,omitempty"`
}

// PhotoSizes lists the available sizes of one photo, smallest first.
type PhotoSizes []PhotoSize

type Video struct {
	FileID       string     `json:"file_id"`
	FileUniqueID string     `json:"file_unique_id"`
	Width        int        `json:"width"`
	Height       int        `json:"height"`
	Duration     int        `json:"duration"`
	Thumbnail    *PhotoSize `json:"thumbnail,omitempty"`
	FileName     string     `json:"file_name,omitempty"`
	MimeType     string     `json:"mime_type,omitempty"`
	FileSize     int64      `json:"file_size,omitempty"`
}

type Animation Video

type Voice struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	Duration     int    `json:"duration"`
	MimeType     string `json:"mime_type,omitempty"`
	FileSize     int64  `json:"file_size,omitempty"`
}

type VideoNote struct {
	FileID       string     `json:"file_id"`
	FileUniqueID string     `json:"file_unique_id"`
	Length       int        `json:"length"`
	Duration     int        `json:"duration"`
	Thumbnail    *PhotoSize `json:"thumbnail,omitempty"`
	FileSize     int64      `json:"file_size,omitempty"`
}

type Audio struct {
	FileID       string     `json:"file_id"`
	FileUniqueID string     `json:"file_unique_id"`
	Duration     int        `json:"duration"`
	Performer    string     `json:"performer,omitempty"`
	Title        string     `json:"title,omitempty"`
	FileName     string     `json:"file_name,omitempty"`
	MimeType     string     `json:"mime_type,omitempty"`
	FileSize     int64      `json:"file_size,omitempty"`
	Thumbnail    *PhotoSize `json:"thumbnail,omitempty"`
}

// Sticker kinds.
const (
	StickerTypeRegular     = "regular"
	StickerTypeMask        = "mask"
	StickerTypeCustomEmoji = "custom_emoji"
)

type Sticker struct {
	FileID       string     `json:"file_id"`
	FileUniqueID string     `json:"file_unique_id"`
	Type         string     `json:"type"`
	Width        int        `json:"width"`
	Height       int        `json:"height"`
	IsAnimated   bool       `json:"is_animated"`
	IsVideo      bool       `json:"is_video"`
	Thumbnail    *PhotoSize `json:"thumbnail,omitempty"`
	Emoji        string     `json:"emoji,omitempty"`
	SetName      string     `json:"set_name,omitempty"`
	FileSize     int64      `json:"file_size,omitempty"`
}

type Document struct {
	FileID       string     `json:"file_id"`
	FileUniqueID string     `json:"file_unique_id"`
	Thumbnail    *PhotoSize `json:"thumbnail,omitempty"`
	FileName     string     `json:"file_name,omitempty"`
	MimeType     string     `json:"mime_type,omitempty"`
	FileSize     int64      `json:"file_size,omitempty"`
}

type Dice struct {
	Emoji string `json:"emoji"`
	Value int    `json:"value"`
}

type Invoice struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	StartParameter string `json:"start_parameter"`
	Currency       string `json:"currency"`
	TotalAmount    int64  `json:"total_amount"`
}

type Game struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Photo        PhotoSizes      `json:"photo"`
	Text         string          `json:"text,omitempty"`
	TextEntities []MessageEntity `json:"text_entities,omitempty"`
	Animation    *Animation      `json:"animation,omitempty"`
}

type Contact struct {
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name,omitempty"`
	UserID      int64  `json:"user_id,omitempty"`
	Vcard       string `json:"vcard,omitempty"`
}

type Venue struct {
	Location        Location `json:"location"`
	Title           string   `json:"title"`
	Address         string   `json:"address"`
	FoursquareID    string   `json:"foursquare_id,omitempty"`
	FoursquareType  string   `json:"foursquare_type,omitempty"`
	GooglePlaceID   string   `json:"google_place_id,omitempty"`
	GooglePlaceType string   `json:"google_place_type,omitempty"`
}

func (m PhotoSizes) messageMedia() (string, any) { return "photo", []PhotoSize(m) }
func (m *Video) messageMedia() (string, any)     { return "video", m }
func (m *Voice) messageMedia() (string, any)     { return "voice", m }
func (m *VideoNote) messageMedia() (string, any) { return "video_note", m }
func (m *Audio) messageMedia() (string, any)     { return "audio", m }
func (m *Sticker) messageMedia() (string, any)   { return "sticker", m }
func (m *Animation) messageMedia() (string, any) { return "animation", m }
func (m *Document) messageMedia() (string, any)  { return "document", m }
func (m *Poll) messageMedia() (string, any)      { return "poll", m }
func (m *Dice) messageMedia() (string, any)      { return "dice", m }
func (m *Invoice) messageMedia() (string, any)   { return "invoice", m }
func (m *Game) messageMedia() (string, any)      { return "game", m }
func (m *Contact) messageMedia() (string, any)   { return "contact", m }
func (m *Venue) messageMedia() (string, any)     { return "venue", m }
func (m *Location) messageMedia() (string, any)  { return "location", m }

// roundDuration converts a duration in seconds to the whole seconds Bot API
// reports.
func roundDuration(seconds float64) int {
	return int(seconds + 0.5)
}

// attachMedia fills the media part of msg. Text that comes with media
// becomes the caption, text without media stays text.
func (b *Bot) attachMedia(
	ctx context.Context,
	msg *Message,
	media tg.MessageMediaClass,
	text string,
	entities []tg.MessageEntityClass,
) {
	switch m := media.(type) {
	case nil, *tg.MessageMediaEmpty, *tg.MessageMediaWebPage:
		msg.Text = text
		msg.Entities = b.convertEntities(ctx, entities)

		return
	case *tg.MessageMediaDocument:
		msg.HasMediaSpoiler = m.Spoiler
		msg.Media = b.documentMedia(ctx, m)
	case *tg.MessageMediaPhoto:
		msg.HasMediaSpoiler = m.Spoiler

		if photo, ok := m.Photo.(*tg.Photo); ok {
			msg.Media = photoSizes(photo)
		}
	case *tg.MessageMediaVenue:
		venue := &Venue{Title: m.Title, Address: m.Address}

		if location := locationFromGeo(m.Geo); location != nil {
			venue.Location = *location
		}

		switch m.Provider {
		case "foursquare":
			venue.FoursquareID, venue.FoursquareType = m.VenueID, m.VenueType
		case "gplaces":
			venue.GooglePlaceID, venue.GooglePlaceType = m.VenueID, m.VenueType
		}

		msg.Media = venue
	case *tg.MessageMediaContact:
		msg.Media = &Contact{
			PhoneNumber: m.PhoneNumber,
			FirstName:   m.FirstName,
			LastName:    m.LastName,
			UserID:      m.UserID,
			Vcard:       m.Vcard,
		}
	case *tg.MessageMediaGeo:
		if location := locationFromGeo(m.Geo); location != nil {
			msg.Media = location
		}
	case *tg.MessageMediaGeoLive:
		if location := liveLocation(m); location != nil {
			msg.Media = location
		}
	case *tg.MessageMediaPoll:
		msg.Media = b.pollFromTG(ctx, m.Poll, m.Results)

		return
	case *tg.MessageMediaDice:
		msg.Media = &Dice{Emoji: m.Emoticon, Value: m.Value}

		return
	case *tg.MessageMediaInvoice:
		msg.Media = &Invoice{
			Title:          m.Title,
			Description:    m.Description,
			StartParameter: m.StartParam,
			Currency:       m.Currency,
			TotalAmount:    m.TotalAmount,
		}

		return
	case *tg.MessageMediaGame:
		msg.Media = b.gameFromTG(ctx, m.Game, text, entities)

		return
	default:
		b.log.Debugf("Unsupported message media %T in message %d", media, msg.MessageID)
	}

	if text != "" {
		msg.Caption = text
		msg.CaptionEntities = b.convertEntities(ctx, entities)
	}
}

func liveLocation(m *tg.MessageMediaGeoLive) *Location {
	location := locationFromGeo(m.Geo)
	if location == nil {
		return nil
	}

	location.LivePeriod = m.Period

	if heading, ok := m.GetHeading(); ok {
		location.Heading = &heading
	}

	if radius, ok := m.GetProximityNotificationRadius(); ok {
		location.ProximityAlertRadius = &radius
	}

	return location
}

func photoSizes(photo *tg.Photo) PhotoSizes {
	sizes := make(PhotoSizes, 0, len(photo.Sizes))

	for _, size := range photo.Sizes {
		thumbType, width, height, fileSize, ok := photoSizeInfo(size)
		if !ok {
			continue
		}

		fileID, uniqueID := photoSizeFileID(photo, thumbType)

		sizes = append(sizes, PhotoSize{
			FileID:       fileID,
			FileUniqueID: uniqueID,
			Width:        width,
			Height:       height,
			FileSize:     fileSize,
		})
	}

	return sizes
}

// photoSizeInfo reports the size type, dimensions and byte size of a
// downloadable size. Stripped and vector previews are not downloadable.
func photoSizeInfo(size tg.PhotoSizeClass) (string, int, int, int64, bool) {
	switch s := size.(type) {
	case *tg.PhotoSize:
		return s.Type, s.W, s.H, int64(s.Size), true
	case *tg.PhotoCachedSize:
		return s.Type, s.W, s.H, int64(len(s.Bytes)), true
	case *tg.PhotoSizeProgressive:
		var fileSize int64
		if len(s.Sizes) > 0 {
			fileSize = int64(s.Sizes[len(s.Sizes)-1])
		}

		return s.Type, s.W, s.H, fileSize, true
	default:
		return "", 0, 0, 0, false
	}
}

// documentThumbnail picks the largest downloadable thumbnail of doc.
func documentThumbnail(doc *tg.Document) *PhotoSize {
	var best *PhotoSize

	for _, size := range doc.Thumbs {
		thumbType, width, height, fileSize, ok := photoSizeInfo(size)
		if !ok {
			continue
		}

		if best != nil && width*height <= best.Width*best.Height {
			continue
		}

		fileID, uniqueID := documentFileID(doc, thumbType)
		best = &PhotoSize{
			FileID:       fileID,
			FileUniqueID: uniqueID,
			Width:        width,
			Height:       height,
			FileSize:     fileSize,
		}
	}

	return best
}

type documentAttributes struct {
	fileName string
	video    *tg.DocumentAttributeVideo
	audio    *tg.DocumentAttributeAudio
	sticker  *tg.DocumentAttributeSticker
	image    *tg.DocumentAttributeImageSize
	animated bool
}

func readDocumentAttributes(doc *tg.Document) documentAttributes {
	var attrs documentAttributes

	for _, attr := range doc.Attributes {
		switch a := attr.(type) {
		case *tg.DocumentAttributeFilename:
			attrs.fileName = a.FileName
		case *tg.DocumentAttributeVideo:
			attrs.video = a
		case *tg.DocumentAttributeAudio:
			attrs.audio = a
		case *tg.DocumentAttributeSticker:
			attrs.sticker = a
		case *tg.DocumentAttributeImageSize:
			attrs.image = a
		case *tg.DocumentAttributeAnimated:
			attrs.animated = true
		}
	}

	return attrs
}

// duration prefers the precise video duration over the whole seconds of
// the audio attribute.
func (a documentAttributes) duration() int {
	switch {
	case a.video != nil:
		return roundDuration(a.video.Duration)
	case a.audio != nil:
		return a.audio.Duration
	default:
		return 0
	}
}

func (a documentAttributes) dimensions() (int, int) {
	switch {
	case a.video != nil:
		return a.video.W, a.video.H
	case a.image != nil:
		return a.image.W, a.image.H
	default:
		return 0, 0
	}
}

// documentMedia picks the Bot API media kind of a document, first match wins.
func (b *Bot) documentMedia(ctx context.Context, m *tg.MessageMediaDocument) MessageMedia {
	doc, ok := m.Document.(*tg.Document)
	if !ok {
		return nil
	}

	attrs := readDocumentAttributes(doc)
	fileID, uniqueID := documentFileID(doc, "")
	thumbnail := documentThumbnail(doc)
	width, height := attrs.dimensions()

	switch {
	case m.Voice || (attrs.audio != nil && attrs.audio.Voice):
		return &Voice{
			FileID:       fileID,
			FileUniqueID: uniqueID,
			Duration:     attrs.duration(),
			MimeType:     doc.MimeType,
			FileSize:     doc.Size,
		}
	case m.Round || (attrs.video != nil && attrs.video.RoundMessage):
		return &VideoNote{
			FileID:       fileID,
			FileUniqueID: uniqueID,
			Length:       width,
			Duration:     attrs.duration(),
			Thumbnail:    thumbnail,
			FileSize:     doc.Size,
		}
	case m.Video || (attrs.video != nil && !attrs.animated && attrs.sticker == nil):
		return &Video{
			FileID:       fileID,
			FileUniqueID: uniqueID,
			Width:        width,
			Height:       height,
			Duration:     attrs.duration(),
			Thumbnail:    thumbnail,
			FileName:     attrs.fileName,
			MimeType:     doc.MimeType,
			FileSize:     doc.Size,
		}
	case attrs.audio != nil:
		return &Audio{
			FileID:       fileID,
			FileUniqueID: uniqueID,
			Duration:     attrs.duration(),
			Performer:    attrs.audio.Performer,
			Title:        attrs.audio.Title,
			FileName:     attrs.fileName,
			MimeType:     doc.MimeType,
			FileSize:     doc.Size,
			Thumbnail:    thumbnail,
		}
	case attrs.sticker != nil:
		sticker := &Sticker{
			FileID:       fileID,
			FileUniqueID: uniqueID,
			Type:         StickerTypeRegular,
			Width:        width,
			Height:       height,
			IsAnimated:   doc.MimeType == "application/x-tgsticker",
			IsVideo:      doc.MimeType == "video/webm",
			Thumbnail:    thumbnail,
			Emoji:        attrs.sticker.Alt,
			SetName:      b.stickerSetName(ctx, attrs.sticker.Stickerset),
			FileSize:     doc.Size,
		}

		if attrs.sticker.Mask {
			sticker.Type = StickerTypeMask
		}

		return sticker
	case attrs.animated:
		return &Animation{
			FileID:       fileID,
			FileUniqueID: uniqueID,
			Width:        width,
			Height:       height,
			Duration:     attrs.duration(),
			Thumbnail:    thumbnail,
			FileName:     attrs.fileName,
			MimeType:     doc.MimeType,
			FileSize:     doc.Size,
		}
	default:
		return &Document{
			FileID:       fileID,
			FileUniqueID: uniqueID,
			Thumbnail:    thumbnail,
			FileName:     attrs.fileName,
			MimeType:     doc.MimeType,
			FileSize:     doc.Size,
		}
	}
}

// stickerSetName looks the set name up in the file cache first and asks
// messages.getStickerSet on a miss. Failures leave the name empty.
func (b *Bot) stickerSetName(ctx context.Context, set tg.InputStickerSetClass) string {
	setID, ok := set.(*tg.InputStickerSetID)
	if !ok {
		return ""
	}

	key := fmt.Sprintf("stickerset:%d", setID.ID)

	var name string

	if b.files != nil {
		found, err := b.files.Get(ctx, key, &name)
		if err != nil {
			b.log.Debugf("Failed to read sticker set %d from cache: %v", setID.ID, err)
		}

		if found {
			return name
		}
	}

	answer, err := b.rpc.MessagesGetStickerSet(ctx, &tg.MessagesGetStickerSetRequest{Stickerset: setID})
	if err != nil {
		b.log.Debugf("Failed to fetch sticker set %d: %v", setID.ID, err)

		return ""
	}

	full, ok := answer.(*tg.MessagesStickerSet)
	if !ok {
		return ""
	}

	name = full.Set.ShortName

	if b.files != nil {
		if err := b.files.Put(ctx, key, name); err != nil {
			b.log.Debugf("Failed to store sticker set %d in cache: %v", setID.ID, err)
		}
	}

	return name
}

func (b *Bot) gameFromTG(ctx context.Context, game tg.Game, text string, entities []tg.MessageEntityClass) *Game {
	result := &Game{
		Title:       game.Title,
		Description: game.Description,
		Photo:       PhotoSizes{},
	}

	if photo, ok := game.Photo.(*tg.Photo); ok {
		result.Photo = photoSizes(photo)
	}

	if doc, ok := game.Document.(*tg.Document); ok {
		attrs := readDocumentAttributes(doc)
		fileID, uniqueID := documentFileID(doc, "")
		width, height := attrs.dimensions()

		result.Animation = &Animation{
			FileID:       fileID,
			FileUniqueID: uniqueID,
			Width:        width,
			Height:       height,
			Duration:     attrs.duration(),
			Thumbnail:    documentThumbnail(doc),
			FileName:     attrs.fileName,
			MimeType:     doc.MimeType,
			FileSize:     doc.Size,
		}
	}

	if text != "" {
		result.Text = text
		result.TextEntities = b.convertEntities(ctx, entities)
	}

	return result
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
