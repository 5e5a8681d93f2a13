package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is the root of every validation failure; the narrower
// sentinels below also match it with errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")

	ErrInvalidPlace     = fmt.Errorf("%w: place", ErrInvalidConfig)
	ErrUndefinedProfile = fmt.Errorf("%w: undefined profile", ErrInvalidConfig)
)
