package client

import "errors"

var (
	ErrUnavailable = errors.New("server unavailable")
	ErrInProgress  = errors.New("request already in progress")
)
