package resource

import "fmt"

// State is the lifecycle position of a Resource.
type State int

const (
	// Unloaded is the initial state; no compile attempt has happened yet.
	Unloaded State = iota
	// LoadedNoModule means the last compile attempt left no module.
	LoadedNoModule
	// LoadedWithModule means a module is cached.
	LoadedWithModule
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case LoadedNoModule:
		return "loaded_no_module"
	case LoadedWithModule:
		return "loaded_with_module"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
