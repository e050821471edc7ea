package toolchain

import (
	"fmt"
	"strings"
)

const (
	flagOutput      = "-o"
	flagLibrary     = "-a"
	flagDebug       = "-g"
	flagNoFramework = "--noframework"
	flagReference   = "--reference:"
)

// Args is the structured form of a toolchain command line:
//
//	-o <output> -a -g --noframework --reference:<path>... <source>
type Args struct {
	Output      string
	Library     bool
	Debug       bool
	NoFramework bool
	References  []string
	Source      string
}

// Build renders the argument list. Blank references are dropped.
func (a Args) Build() []string {
	args := []string{flagOutput, a.Output}
	if a.Library {
		args = append(args, flagLibrary)
	}
	if a.Debug {
		args = append(args, flagDebug)
	}
	if a.NoFramework {
		args = append(args, flagNoFramework)
	}
	for _, ref := range a.References {
		if strings.TrimSpace(ref) == "" {
			continue
		}
		args = append(args, flagReference+ref)
	}
	return append(args, a.Source)
}

// ParseArgs is the inverse of Build, used by toolchains that run in-process.
func ParseArgs(args []string) (Args, error) {
	var a Args
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == flagOutput:
			if i+1 >= len(args) {
				return Args{}, fmt.Errorf("%w: %s requires a value", ErrInvalidArgs, flagOutput)
			}
			i++
			a.Output = args[i]
		case arg == flagLibrary:
			a.Library = true
		case arg == flagDebug:
			a.Debug = true
		case arg == flagNoFramework:
			a.NoFramework = true
		case strings.HasPrefix(arg, flagReference):
			a.References = append(a.References, strings.TrimPrefix(arg, flagReference))
		case strings.HasPrefix(arg, "-"):
			return Args{}, fmt.Errorf("%w: unknown flag %q", ErrInvalidArgs, arg)
		default:
			if a.Source != "" {
				return Args{}, fmt.Errorf("%w: more than one source file", ErrInvalidArgs)
			}
			a.Source = arg
		}
	}

	if a.Output == "" {
		return Args{}, fmt.Errorf("%w: missing output path", ErrInvalidArgs)
	}
	if a.Source == "" {
		return Args{}, fmt.Errorf("%w: missing source file", ErrInvalidArgs)
	}
	return a, nil
}
