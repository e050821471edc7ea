package resource

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/benbjohnson/clock"

	"github.com/robbyt/go-livescript/internal/helpers"
	"github.com/robbyt/go-livescript/platform/module"
	"github.com/robbyt/go-livescript/platform/service"
)

// Compiler produces modules for resources. *service.Service implements it.
type Compiler interface {
	TryCompile(ctx context.Context, name, sourcePath, sourceText string) (service.Outcome, module.Module)
}

// Resource owns one script: its source, the compiled module, reload tracking, and
// construction of the script's runtime object.
//
// A Resource is not safe for concurrent use. Callers serialize OnLoaded, Instantiate,
// Reload and SaveScript on a single instance.
type Resource struct {
	script   SourceScript
	path     string
	compiler Compiler

	state   State
	mod     module.Module
	owned   bool
	outcome service.Outcome

	precompiledOnly bool
	clock           clock.Clock

	observers []subscription
	nextSubID uint64

	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates an unloaded Resource for the script called name.
func New(name string, comp Compiler, opts ...FunctionalOption) (*Resource, error) {
	r := &Resource{
		script:   SourceScript{Name: name},
		compiler: comp,
	}

	r.applyDefaults()

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("error applying resource option: %w", err)
		}
	}

	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("invalid resource configuration: %w", err)
	}

	r.setupLogger()
	return r, nil
}

func (r *Resource) String() string {
	return fmt.Sprintf("resource.Resource{Name: %s, State: %s}", r.script.Name, r.state)
}

// Name returns the script name, which is also the expected entry type name.
func (r *Resource) Name() string { return r.script.Name }

// Path returns the resource's own path, falling back to the source path.
func (r *Resource) Path() string {
	if r.path != "" {
		return r.path
	}
	return r.script.SourcePath
}

// Script returns a copy of the owned source.
func (r *Resource) Script() SourceScript { return r.script }

// SetText replaces the source text. The cached module is kept until the next compile.
func (r *Resource) SetText(text string) { r.script.Text = text }

// State returns the lifecycle state.
func (r *Resource) State() State { return r.state }

// Module returns the cached module, or nil.
func (r *Resource) Module() module.Module { return r.mod }

// LastOutcome returns the outcome of the most recent compile attempt.
func (r *Resource) LastOutcome() service.Outcome { return r.outcome }

// OnLoaded runs the single compile attempt that follows loading the resource. Later
// calls do not compile again and return the previous outcome.
func (r *Resource) OnLoaded(ctx context.Context) service.Outcome {
	if r.state != Unloaded {
		r.logger.Debug("Resource already loaded", "state", r.state)
		return r.outcome
	}
	return r.compile(ctx)
}

// Instantiate constructs a new runtime object from the entry type named after the
// resource, compiling first when no module is cached.
func (r *Resource) Instantiate(ctx context.Context) (module.Script, error) {
	logger := r.logger.WithGroup("Instantiate")

	if r.mod == nil {
		outcome := r.compile(ctx)
		if r.mod == nil || !r.permitsInstantiation(outcome) {
			logger.Warn("Couldn't compile script", "outcome", outcome.String())
			if err := r.dropModule(ctx); err != nil {
				logger.Warn("Error closing refused module", "error", err)
			}
			r.state = LoadedNoModule
			return nil, fmt.Errorf("%w: %s", ErrNotCompiled, outcome)
		}
	}

	entry, ok := r.mod.Lookup(r.script.Name)
	if !ok || entry.Base != module.ScriptEntry || entry.New == nil {
		logger.Warn("Module does not contain a script entry for this resource",
			"moduleID", r.mod.ID(), "entries", r.mod.Entries())
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, r.script.Name)
	}

	script, err := entry.New(ctx)
	if err != nil {
		logger.Warn("Script entry constructor failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrInstantiate, err)
	}
	return script, nil
}

func (r *Resource) permitsInstantiation(outcome service.Outcome) bool {
	if r.precompiledOnly {
		return outcome.Kind == service.AlreadyPresentOnDisk
	}
	return outcome.HasModule()
}

// Reload recompiles unconditionally, then stamps the reload marker with the current
// time and notifies observers. The marker is updated even when the compile fails.
// The returned error only reports marker problems; observers are not notified then.
func (r *Resource) Reload(ctx context.Context) (service.Outcome, error) {
	logger := r.logger.WithGroup("Reload")

	outcome := r.compile(ctx)
	now := r.clock.Now()

	markerPath := r.MetafilePath()
	if markerPath == "" {
		logger.Error("Unable to update reload marker", "error", ErrNoPath)
		return outcome, fmt.Errorf("%w: %w", ErrMarker, ErrNoPath)
	}
	if err := touchMarker(markerPath, now); err != nil {
		logger.Error("Unable to update reload marker", "path", markerPath, "error", err)
		return outcome, err
	}

	logger.Debug("Reload marker updated", "path", markerPath, "at", now)
	r.notify(ctx, Event{Name: r.script.Name, Outcome: outcome, At: now})
	return outcome, nil
}

// SaveScript writes the source text to path, or to the existing source path when path
// is empty. An existing file keeps its permissions. A resource that is not default content and has no source path adopts path
// after the first successful save.
func (r *Resource) SaveScript(path string) error {
	target := path
	if target == "" {
		target = r.script.SourcePath
	}
	if target == "" {
		return ErrNoSaveTarget
	}

	perm := os.FileMode(0o644)
	if info, err := os.Stat(target); err == nil {
		perm = info.Mode().Perm()
	}
	if err := helpers.WriteFileAtomic(target, []byte(r.script.Text), perm); err != nil {
		return fmt.Errorf("unable to save script %s: %w", r.script.Name, err)
	}

	if !r.script.IsDefaultContent && r.script.SourcePath == "" {
		r.script.SourcePath = target
		r.logger.Info("Adopted source path", "sourcePath", target)
	}
	return nil
}

// MetafilePath returns the location of the hidden reload marker. It performs no I/O.
func (r *Resource) MetafilePath() string {
	return MarkerPath(r.Path())
}

// Marker reads the current state of the reload marker.
func (r *Resource) Marker() (MarkerInfo, error) {
	p := r.MetafilePath()
	if p == "" {
		return MarkerInfo{}, ErrNoPath
	}
	return ReadMarker(p)
}

// Subscribe registers o for reload notifications and returns a function removing it.
func (r *Resource) Subscribe(o Observer) (unsubscribe func()) {
	if o == nil {
		return func() {}
	}
	id := r.subscribe(o)
	return func() { r.unsubscribe(id) }
}

// Close releases a module compiled for this resource. Shared bundle modules are left
// to their owner.
func (r *Resource) Close(ctx context.Context) error {
	return r.dropModule(ctx)
}

func (r *Resource) subscribe(o Observer) uint64 {
	r.nextSubID++
	r.observers = append(r.observers, subscription{id: r.nextSubID, observer: o})
	return r.nextSubID
}

func (r *Resource) unsubscribe(id uint64) {
	for i, s := range r.observers {
		if s.id == id {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

func (r *Resource) notify(ctx context.Context, event Event) {
	observers := make([]subscription, len(r.observers))
	copy(observers, r.observers)
	for _, s := range observers {
		s.observer.Reloaded(ctx, event)
	}
}

// compile invalidates the cached module and runs one compile attempt.
func (r *Resource) compile(ctx context.Context) service.Outcome {
	if err := r.dropModule(ctx); err != nil {
		r.logger.Warn("Error closing previous module", "error", err)
	}

	outcome, mod := r.compiler.TryCompile(ctx, r.script.Name, r.script.SourcePath, r.script.Text)
	r.outcome = outcome
	r.mod = mod
	r.owned = mod != nil && outcome.Kind == service.Succeeded

	if mod == nil {
		r.state = LoadedNoModule
		if outcome.Kind == service.Failed {
			for _, d := range outcome.Diagnostics {
				r.logger.Warn("Compile diagnostic", "diagnostic", d.String())
			}
		}
	} else {
		r.state = LoadedWithModule
	}

	r.logger.Debug("Compile attempt finished", "outcome", outcome.String(), "state", r.state)
	return outcome
}

func (r *Resource) dropModule(ctx context.Context) error {
	mod, owned := r.mod, r.owned
	r.mod, r.owned = nil, false
	if mod == nil || !owned {
		return nil
	}
	return mod.Close(ctx)
}
