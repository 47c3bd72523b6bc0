package runtime

import "errors"

var (
	ErrRuntime      = errors.New("runtime error")
	ErrNoEntrypoint = errors.New("image has no entrypoint or command")
)
