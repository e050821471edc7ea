package compiler

import "errors"

var (
	ErrEmptySource    = errors.New("source text is empty")
	ErrNotInitialized = errors.New("compiler service is not initialized")
)
