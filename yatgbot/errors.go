package yatgbot

import "errors"

var (
	ErrInvalidChatID          = errors.New("invalid chat id")
	ErrGroupChatOnly          = errors.New("method is available only for group chats")
	ErrSupergroupOnly         = errors.New("method is available only for supergroups and channels")
	ErrNotAdministrator       = errors.New("user is not an administrator")
	ErrCustomTitleTooLong     = errors.New("custom title is too long")
	ErrEmptyText              = errors.New("message text is empty")
	ErrEmptyTitle             = errors.New("chat title is empty")
	ErrEmptyFirstName         = errors.New("contact first name is empty")
	ErrMediaGroupSize         = errors.New("media group must include 2-10 items")
	ErrInvalidFileID          = errors.New("wrong file identifier")
	ErrUnknownUpdateType      = errors.New("unknown update type")
	ErrRouteMismatch          = errors.New("route: handler type mismatch")
	ErrInvalidInlineID        = errors.New("invalid inline message id")
	ErrInvalidMessageID       = errors.New("invalid message id")
	ErrSentMessageNotFound    = errors.New("sent message not found in server answer")
	ErrDuplicateRandomID      = errors.New("random id answered twice")
	ErrSentMessagesIncomplete = errors.New("server answer does not contain every sent message")
	ErrSelfNotFound           = errors.New("bot user missing in server answer")
	ErrInvalidBatchSize       = errors.New("batch must include at least one message")
)
