package emulation

import "errors"

var (
	ErrInstall        = errors.New("emulation install failed")
	ErrUnknownBackend = errors.New("unknown emulation backend")
)
