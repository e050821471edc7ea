package service

import (
	"fmt"

	"github.com/robbyt/go-livescript/platform/diagnostic"
)

// Kind is the closed set of compile attempt results.
type Kind int

const (
	// Succeeded means the source was compiled now and a module is available.
	Succeeded Kind = iota + 1
	// AlreadyPresentOnDisk means the shared precompiled bundle was used; no compile ran.
	AlreadyPresentOnDisk
	// Failed means the toolchain ran and reported errors.
	Failed
	// NotCompilable means no toolchain work happened, or the attempt faulted.
	NotCompilable
)

func (k Kind) String() string {
	switch k {
	case Succeeded:
		return "succeeded"
	case AlreadyPresentOnDisk:
		return "already_present_on_disk"
	case Failed:
		return "failed"
	case NotCompilable:
		return "not_compilable"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Outcome describes one TryCompile call.
type Outcome struct {
	Kind Kind

	// Diagnostics is the toolchain transcript. Set for Succeeded (warnings) and Failed.
	Diagnostics diagnostic.List

	// Reason explains a NotCompilable outcome.
	Reason error
}

// HasModule reports whether the outcome kind yields a module.
func (o Outcome) HasModule() bool {
	return o.Kind == Succeeded || o.Kind == AlreadyPresentOnDisk
}

func (o Outcome) String() string {
	switch o.Kind {
	case Failed:
		return fmt.Sprintf("%s: %d diagnostic(s)", o.Kind, len(o.Diagnostics))
	case NotCompilable:
		if o.Reason != nil {
			return fmt.Sprintf("%s: %v", o.Kind, o.Reason)
		}
	}
	return o.Kind.String()
}

func succeeded(diags diagnostic.List) Outcome {
	return Outcome{Kind: Succeeded, Diagnostics: diags}
}

func alreadyPresent() Outcome {
	return Outcome{Kind: AlreadyPresentOnDisk}
}

func failed(diags diagnostic.List) Outcome {
	return Outcome{Kind: Failed, Diagnostics: diags}
}

func notCompilable(reason error) Outcome {
	return Outcome{Kind: NotCompilable, Reason: reason}
}
