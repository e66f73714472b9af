package model

import "errors"

var (
	// ErrDataUnavailable means neither ledger source could be read.
	ErrDataUnavailable = errors.New("ledger data unavailable")
	// ErrInvalidConfiguration means a required setting is missing or out of domain.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
