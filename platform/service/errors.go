package service

import "errors"

var (
	ErrNoSourcePath = errors.New("script has no source path and can't be compiled")
	ErrNoCompiler   = errors.New("no compiler configured")
	ErrBundle       = errors.New("precompiled bundle unavailable")
	ErrPanic        = errors.New("compile attempt panicked")
)
