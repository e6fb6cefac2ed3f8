package yatgbot_test

import (
	"net/http"
	"testing"

	"github.com/YaCodeDev/GoYaTgBotAPI/yaencoding"
	"github.com/YaCodeDev/GoYaTgBotAPI/yatgbot"
	"github.com/google/go-cmp/cmp"
	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileID_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		location tg.InputFileLocationClass
		dc       int
	}{
		{
			name: "photo",
			location: &tg.InputPhotoFileLocation{
				ID:            1001,
				AccessHash:    -7,
				FileReference: []byte{1, 2, 3},
				ThumbSize:     "y",
			},
			dc: 2,
		},
		{
			name: "document",
			location: &tg.InputDocumentFileLocation{
				ID:            2002,
				AccessHash:    8,
				FileReference: []byte{9},
				ThumbSize:     "m",
			},
			dc: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileID, err := yatgbot.EncodeFileID(tt.location, tt.dc)
			require.Nil(t, err)

			decoded, err := yatgbot.DecodeFileID(fileID)
			require.Nil(t, err)

			if diff := cmp.Diff(tt.location, decoded.Location); diff != "" {
				t.Errorf("location mismatch (-want +got):\n%s", diff)
			}

			assert.Equal(t, tt.dc, decoded.DC)
		})
	}
}

func TestDecodeFileID_Invalid(t *testing.T) {
	for _, fileID := range []string{"", "!!not base64!!", yaencoding.ToURLString([]byte{1, 2, 3})} {
		_, err := yatgbot.DecodeFileID(fileID)

		require.NotNil(t, err, "file id %q", fileID)
		assert.Equal(t, http.StatusBadRequest, err.Code())
		assert.ErrorIs(t, err, yatgbot.ErrInvalidFileID)
	}
}

func TestFileLocation_InputMedia(t *testing.T) {
	location := yatgbot.FileLocation{Location: &tg.InputDocumentFileLocation{
		ID:            5,
		AccessHash:    6,
		FileReference: []byte{7},
	}}

	media, err := location.InputMedia()
	require.Nil(t, err)

	assert.Equal(t, &tg.InputMediaDocument{ID: &tg.InputDocument{
		ID:            5,
		AccessHash:    6,
		FileReference: []byte{7},
	}}, media)

	_, err = yatgbot.FileLocation{Location: &tg.InputEncryptedFileLocation{ID: 1}}.InputMedia()
	require.NotNil(t, err)
	assert.ErrorIs(t, err, yatgbot.ErrInvalidFileID)
}

func TestEncodeFileUniqueID_Stable(t *testing.T) {
	assert.Equal(t, yatgbot.EncodeFileUniqueID(42, ""), yatgbot.EncodeFileUniqueID(42, ""))
	assert.NotEqual(t, yatgbot.EncodeFileUniqueID(42, ""), yatgbot.EncodeFileUniqueID(42, "m"))
	assert.NotEqual(t, yatgbot.EncodeFileUniqueID(42, ""), yatgbot.EncodeFileUniqueID(43, ""))
}
