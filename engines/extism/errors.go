package extism

import "errors"

var (
	ErrContentNil     = errors.New("wasm content is empty")
	ErrReadBundle     = errors.New("unable to read wasm bundle")
	ErrCompileFailed  = errors.New("unable to compile wasm bundle")
	ErrInstance       = errors.New("unable to create plugin instance")
	ErrMethodNotFound = errors.New("script function not exported")
	ErrCallFailed     = errors.New("script function call failed")
	ErrClosed         = errors.New("module is closed")
)
