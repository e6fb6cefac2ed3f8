package yatgclient

import "errors"

var ErrPortOutOfRange = errors.New("port out of range 1-65535")
