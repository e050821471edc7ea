package toolchain

import "errors"

var (
	ErrToolchainUnavailable = errors.New("toolchain could not be invoked")
	ErrToolchainPanic       = errors.New("toolchain panicked")
	ErrInvalidArgs          = errors.New("invalid toolchain arguments")
	ErrScratchFile          = errors.New("unable to create scratch file")
)
