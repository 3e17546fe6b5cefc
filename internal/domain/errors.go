package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrAlreadyExists    = errors.New("already exists")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrBanned           = errors.New("banned")
	ErrStoreUnavailable = errors.New("store unavailable")
)
