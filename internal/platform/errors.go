package platform

import "errors"

var (
	ErrInvalidPlatform = errors.New("invalid platform")
	ErrNoPlatforms     = errors.New("no target platforms configured")
)
