package service

import "errors"

// Sentinel error kinds for the service. These allow errors.Is from callers.
var (
	ErrNotStarted        = errors.New("service not started")
	ErrUnknownProfile    = errors.New("unknown scoring profile")
	ErrTooManyVolunteers = errors.New("too many volunteers")
)
