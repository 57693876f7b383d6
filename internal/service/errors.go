package service

import "errors"

var (
	// ErrValidation marks bad caller input (HTTP 400).
	ErrValidation = errors.New("validation error")

	// ErrNoTarget means the ad has no outbound link to follow.
	ErrNoTarget = errors.New("advertisement has no target url")
)
