package yatgstorage

import "errors"

var (
	ErrFailedToSetState          = errors.New("failed to set telegram bot state")
	ErrFailedToGetState          = errors.New("failed to get telegram bot state")
	ErrFailedToParsePts          = errors.New("failed to parse pts as int")
	ErrFailedToParseAccessHash   = errors.New("failed to parse access hash as int64")
	ErrFailedToParseChannelID    = errors.New("failed to parse channel id as int64")
	ErrFromCalledActionOfChannel = errors.New("channel action failed")
	ErrCipherTextTooShort        = errors.New("cipher text too short")
	ErrFailedToStoreFile         = errors.New("failed to store cached file value")
	ErrFailedToLoadFile          = errors.New("failed to load cached file value")
)
