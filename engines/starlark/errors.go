package starlark

import "errors"

var (
	ErrReadSource      = errors.New("unable to read starlark source")
	ErrWriteProgram    = errors.New("unable to write compiled starlark program")
	ErrReadProgram     = errors.New("unable to read compiled starlark program")
	ErrInitFailed      = errors.New("starlark module initialization failed")
	ErrReference       = errors.New("unable to load starlark reference")
	ErrMethodNotFound  = errors.New("script method not found")
	ErrCallFailed      = errors.New("script method call failed")
	ErrConstructFailed = errors.New("script construction failed")
)
