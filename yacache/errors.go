package yacache

import "errors"

var (
	ErrNotFound          = errors.New("value not found")
	ErrFailedToSetValue  = errors.New("failed to set value")
	ErrFailedToGetValue  = errors.New("failed to get value")
	ErrFailedToDelValue  = errors.New("failed to delete value")
	ErrFailedToHSet      = errors.New("failed to set hash field")
	ErrFailedToGetValues = errors.New("failed to get hash")
	ErrFailedToPing      = errors.New("failed to ping")
	ErrFailedToClose     = errors.New("failed to close")
)
