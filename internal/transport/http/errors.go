package http

import "errors"

var (
	errInvalidPayload        = errors.New("invalid payload")
	errUnsupportedMessage    = errors.New("unsupported message type")
	errUnsupportedVisibility = errors.New("unsupported visibility state")
)
