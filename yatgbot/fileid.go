package yatgbot

import (
	"encoding/binary"
	"net/http"

	"github.com/YaCodeDev/GoYaTgBotAPI/yaencoding"
	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
	"github.com/gotd/td/bin"
	"github.com/gotd/td/tg"
)

// fileIDVersion trails every encoded file ID.
const fileIDVersion byte = 42

// FileLocation is a decoded file ID: what upload.getFile needs to download
// the file.
type FileLocation struct {
	Location tg.InputFileLocationClass
	DC       int
}

// EncodeFileID packs a file location and its datacenter into a file ID.
func EncodeFileID(location tg.InputFileLocationClass, dc int) (string, yaerrors.Error) {
	var buf bin.Buffer

	if err := location.Encode(&buf); err != nil {
		return "", yaerrors.FromError(http.StatusInternalServerError, err, "failed to encode file location")
	}

	buf.Buf = append(buf.Buf, byte(dc), fileIDVersion)

	return yaencoding.ToURLString(buf.Buf), nil
}

// DecodeFileID reverses EncodeFileID.
func DecodeFileID(fileID string) (FileLocation, yaerrors.Error) {
	raw, err := yaencoding.FromURLString(fileID)
	if err != nil {
		return FileLocation{}, yaerrors.FromError(http.StatusBadRequest, ErrInvalidFileID, "failed to decode file id")
	}

	if len(raw) < 2 || raw[len(raw)-1] != fileIDVersion {
		return FileLocation{}, yaerrors.FromError(http.StatusBadRequest, ErrInvalidFileID, "failed to decode file id")
	}

	buf := bin.Buffer{Buf: raw[:len(raw)-2]}

	location, decodeErr := tg.DecodeInputFileLocation(&buf)
	if decodeErr != nil {
		return FileLocation{}, yaerrors.FromError(
			http.StatusBadRequest,
			ErrInvalidFileID,
			"failed to decode file location: "+decodeErr.Error(),
		)
	}

	return FileLocation{Location: location, DC: int(raw[len(raw)-2])}, nil
}

// EncodeFileUniqueID builds the stable identifier of a file or one of its
// thumbnails. It does not change when the file reference is refreshed.
func EncodeFileUniqueID(id int64, thumbType string) string {
	raw := binary.LittleEndian.AppendUint64(nil, uint64(id))
	raw = append(raw, thumbType...)

	return yaencoding.ToURLString(raw)
}

// InputMedia turns a decoded file ID into media that can be sent again.
func (l FileLocation) InputMedia() (tg.InputMediaClass, yaerrors.Error) {
	switch loc := l.Location.(type) {
	case *tg.InputPhotoFileLocation:
		return &tg.InputMediaPhoto{ID: &tg.InputPhoto{
			ID:            loc.ID,
			AccessHash:    loc.AccessHash,
			FileReference: loc.FileReference,
		}}, nil
	case *tg.InputDocumentFileLocation:
		return &tg.InputMediaDocument{ID: &tg.InputDocument{
			ID:            loc.ID,
			AccessHash:    loc.AccessHash,
			FileReference: loc.FileReference,
		}}, nil
	default:
		return nil, yaerrors.FromError(http.StatusBadRequest, ErrInvalidFileID, "file id can not be sent as media")
	}
}

func photoSizeFileID(photo *tg.Photo, thumbType string) (string, string) {
	fileID, err := EncodeFileID(&tg.InputPhotoFileLocation{
		ID:            photo.ID,
		AccessHash:    photo.AccessHash,
		FileReference: photo.FileReference,
		ThumbSize:     thumbType,
	}, photo.DCID)
	if err != nil {
		return "", ""
	}

	return fileID, EncodeFileUniqueID(photo.ID, thumbType)
}

func documentFileID(doc *tg.Document, thumbType string) (string, string) {
	fileID, err := EncodeFileID(&tg.InputDocumentFileLocation{
		ID:            doc.ID,
		AccessHash:    doc.AccessHash,
		FileReference: doc.FileReference,
		ThumbSize:     thumbType,
	}, doc.DCID)
	if err != nil {
		return "", ""
	}

	return fileID, EncodeFileUniqueID(doc.ID, thumbType)
}
