package service

import "errors"

var (
	// ErrNotReady means the job exists but has not reached done.
	ErrNotReady = errors.New("revision not ready")

	// ErrInvalidFormat means the requested export format is not one of
	// markdown, html or text.
	ErrInvalidFormat = errors.New("invalid export format")
)
