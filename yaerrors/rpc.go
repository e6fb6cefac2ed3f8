package yaerrors

import (
	"errors"
	"net/http"

	"github.com/gotd/td/tgerr"
)

// FromRPC converts an error returned by an MTProto call into an Error.
//
// RPC errors keep the code reported by Telegram (400, 403, 420, ...), so the
// caller can tell a bad request from a flood wait. Anything else, including
// transport failures, becomes a 500.
func FromRPC(cause error, wrap string) Error {
	if rpcErr, ok := tgerr.As(cause); ok && rpcErr.Code > 0 {
		return FromError(rpcErr.Code, cause, wrap)
	}

	if errors.Is(cause, ErrTeapot) {
		return FromError(http.StatusTeapot, cause, wrap)
	}

	return FromError(http.StatusInternalServerError, cause, wrap)
}
