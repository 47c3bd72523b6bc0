package buildx

import "errors"

var (
	ErrCommandFailed = errors.New("command failed")
	ErrMetadata      = errors.New("invalid build metadata")
)
