package resource

import "errors"

var (
	ErrNotCompiled    = errors.New("script could not be compiled")
	ErrEntryNotFound  = errors.New("module has no script entry named after the resource")
	ErrInstantiate    = errors.New("script entry constructor failed")
	ErrNoPath         = errors.New("resource has no path")
	ErrNoSaveTarget   = errors.New("no path given and resource has no source path")
	ErrMarker         = errors.New("unable to update reload marker")
	ErrEmptyName      = errors.New("resource name is empty")
	ErrNilCompiler    = errors.New("compiler is nil")
	ErrNilObserver    = errors.New("observer is nil")
	ErrSourceNotFound = errors.New("source not available")
)
