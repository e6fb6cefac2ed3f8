// Package yaencoding holds the byte-level codecs shared by storage and the
// Bot-API layer: MessagePack for cached records and base64 for identifiers.
package yaencoding

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
	"github.com/vmihailenco/msgpack/v5"
)

// EncodeMessagePack serializes value using the MessagePack format.
//
// Example:
//
//	raw, err := yaencoding.EncodeMessagePack(state)
func EncodeMessagePack(value any) ([]byte, yaerrors.Error) {
	bytes, err := msgpack.Marshal(value)
	if err != nil {
		return nil, yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			fmt.Sprintf("[ENCODING] failed to marshal %T using message pack format", value),
		)
	}

	return bytes, nil
}

// DecodeMessagePack deserializes MessagePack bytes into a new T.
func DecodeMessagePack[T any](bytes []byte) (*T, yaerrors.Error) {
	var res T

	if err := msgpack.Unmarshal(bytes, &res); err != nil {
		return nil, yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			fmt.Sprintf("[ENCODING] failed to unmarshal %T from message pack format", res),
		)
	}

	return &res, nil
}

// ToString encodes data as standard padded base64.
func ToString(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// ToBytes decodes standard padded base64.
func ToBytes(data string) ([]byte, yaerrors.Error) {
	bytes, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, yaerrors.FromError(
			http.StatusBadRequest,
			err,
			"[ENCODING] failed to decode string to bytes",
		)
	}

	return bytes, nil
}

// ToURLString encodes data as unpadded URL-safe base64, the alphabet of
// Bot-API file and inline message identifiers.
func ToURLString(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// FromURLString decodes unpadded URL-safe base64.
func FromURLString(data string) ([]byte, yaerrors.Error) {
	bytes, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		return nil, yaerrors.FromError(
			http.StatusBadRequest,
			err,
			"[ENCODING] failed to decode url-safe string to bytes",
		)
	}

	return bytes, nil
}

// DecodeMessagePackInto deserializes MessagePack bytes into dst, which must be
// a pointer.
func DecodeMessagePackInto(bytes []byte, dst any) yaerrors.Error {
	if err := msgpack.Unmarshal(bytes, dst); err != nil {
		return yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			fmt.Sprintf("[ENCODING] failed to unmarshal %T from message pack format", dst),
		)
	}

	return nil
}
