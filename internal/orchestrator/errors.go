package orchestrator

import (
	"errors"
	"fmt"
)

var (
	ErrUsage             = errors.New("usage error")
	ErrConfig            = errors.New("invalid configuration")
	ErrPrerequisite      = errors.New("emulation setup failed")
	ErrResourceBootstrap = errors.New("builder setup failed")
	ErrPublish           = errors.New("build and publish failed")
	ErrResourceNotFound  = errors.New("builder not found")
)

// Wraps err under a sentinel so that errors.Is matches both.
func wrap(sentinel, err error) error {
	return fmt.Errorf("%w: %w", sentinel, err)
}

// Wraps a formatted message under a sentinel. The format may use %w.
func wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %w", sentinel, fmt.Errorf(format, args...))
}
