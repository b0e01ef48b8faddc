// Package apperr defines sentinel errors shared across hosts.
package apperr

import "errors"

var (
	ErrNoProfile       = errors.New("no profile configured")
	ErrClosed          = errors.New("engine closed")
	ErrInvalidMode     = errors.New("invalid view mode")
	ErrUnknownFormat   = errors.New("unknown format action")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("checksum mismatch")
	ErrNotLoaded       = errors.New("notes file could not be loaded")
)
