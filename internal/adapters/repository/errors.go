package repository

import "errors"

// Sentinel kinds for history store errors.
var (
	ErrInvalidLimit = errors.New("invalid history limit")
	ErrClosed       = errors.New("history store closed")
	ErrOpenStore    = errors.New("open history store failed")
)
