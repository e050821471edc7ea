package starlark

import (
	"fmt"
	"slices"
	"sort"

	starlarkLib "go.starlark.net/starlark"

	"github.com/robbyt/go-livescript/platform/module"
)

const (
	scriptBaseName = string(module.ScriptEntry)
	initMethod     = "init"
)

// scriptBase is the builtin a script calls to declare an entry type:
//
//	def on_update(self, dt):
//	    self.elapsed += dt
//
//	Foo = ScriptBase(elapsed = 0.0, on_update = on_update)
//
// Callable keyword arguments become methods and receive the instance as their first
// argument. Everything else becomes a field default.
var scriptBase = starlarkLib.NewBuiltin(scriptBaseName, newClass)

func newClass(
	_ *starlarkLib.Thread,
	b *starlarkLib.Builtin,
	args starlarkLib.Tuple,
	kwargs []starlarkLib.Tuple,
) (starlarkLib.Value, error) {
	if len(args) > 0 {
		return nil, fmt.Errorf("%s: unexpected positional arguments", b.Name())
	}

	c := &class{
		methods: make(map[string]starlarkLib.Callable),
		fields:  make(map[string]starlarkLib.Value),
	}
	for _, kv := range kwargs {
		name := string(kv[0].(starlarkLib.String))
		if fn, ok := kv[1].(starlarkLib.Callable); ok {
			c.methods[name] = fn
			continue
		}
		c.fields[name] = kv[1]
	}
	return c, nil
}

// class is the value produced by ScriptBase(...). Its name is the global it is bound
// to, assigned when the module registers it.
type class struct {
	name    string
	methods map[string]starlarkLib.Callable
	fields  map[string]starlarkLib.Value
	frozen  bool
}

var (
	_ starlarkLib.HasAttrs = (*class)(nil)
	_ starlarkLib.Callable = (*class)(nil)
)

func (c *class) String() string {
	if c.name == "" {
		return "<" + scriptBaseName + ">"
	}
	return fmt.Sprintf("<%s %s>", scriptBaseName, c.name)
}

func (c *class) Type() string { return scriptBaseName }
func (c *class) Truth() starlarkLib.Bool { return starlarkLib.True }

func (c *class) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: %s", c.Type())
}

func (c *class) Freeze() {
	if c.frozen {
		return
	}
	c.frozen = true
	for _, fn := range c.methods {
		fn.Freeze()
	}
	for _, v := range c.fields {
		v.Freeze()
	}
}

func (c *class) Name() string {
	if c.name == "" {
		return scriptBaseName
	}
	return c.name
}

func (c *class) Attr(name string) (starlarkLib.Value, error) {
	if fn, ok := c.methods[name]; ok {
		return fn, nil
	}
	if v, ok := c.fields[name]; ok {
		return v, nil
	}
	return nil, nil
}

func (c *class) AttrNames() []string {
	names := make([]string, 0, len(c.methods)+len(c.fields))
	for name := range c.methods {
		names = append(names, name)
	}
	for name := range c.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CallInternal lets scripts construct instances directly, e.g. other = Foo().
func (c *class) CallInternal(
	thread *starlarkLib.Thread,
	args starlarkLib.Tuple,
	kwargs []starlarkLib.Tuple,
) (starlarkLib.Value, error) {
	inst, err := c.construct(thread, args, kwargs)
	if err != nil {
		return nil, err
	}
	return inst, nil
}

// construct creates an instance and runs its init method, if any.
func (c *class) construct(
	thread *starlarkLib.Thread,
	args starlarkLib.Tuple,
	kwargs []starlarkLib.Tuple,
) (*instance, error) {
	inst := &instance{class: c, fields: make(map[string]starlarkLib.Value, len(c.fields))}
	for k, v := range c.fields {
		fresh, err := thaw(v)
		if err != nil {
			return nil, fmt.Errorf("%s: field %s: %w", c.Name(), k, err)
		}
		inst.fields[k] = fresh
	}

	if fn, ok := c.methods[initMethod]; ok {
		if _, err := starlarkLib.Call(thread, fn, append(starlarkLib.Tuple{inst}, args...), kwargs); err != nil {
			return nil, err
		}
	} else if len(args) > 0 || len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: takes no arguments without an %s method", c.Name(), initMethod)
	}
	return inst, nil
}

// thaw returns a mutable deep copy of a field default. Class defaults are frozen with
// the module globals, so every instance needs its own containers. Other values are
// immutable once frozen and are shared as is.
func thaw(v starlarkLib.Value) (starlarkLib.Value, error) {
	switch v := v.(type) {
	case *starlarkLib.List:
		elems := make([]starlarkLib.Value, v.Len())
		for i := range elems {
			e, err := thaw(v.Index(i))
			if err != nil {
				return nil, err
			}
			elems[i] = e
		}
		return starlarkLib.NewList(elems), nil
	case starlarkLib.Tuple:
		out := make(starlarkLib.Tuple, len(v))
		for i, e := range v {
			fresh, err := thaw(e)
			if err != nil {
				return nil, err
			}
			out[i] = fresh
		}
		return out, nil
	case *starlarkLib.Dict:
		out := starlarkLib.NewDict(v.Len())
		for _, kv := range v.Items() {
			val, err := thaw(kv[1])
			if err != nil {
				return nil, err
			}
			if err := out.SetKey(kv[0], val); err != nil {
				return nil, err
			}
		}
		return out, nil
	case *starlarkLib.Set:
		out := starlarkLib.NewSet(v.Len())
		iter := v.Iterate()
		defer iter.Done()
		var x starlarkLib.Value
		for iter.Next(&x) {
			if err := out.Insert(x); err != nil {
				return nil, err
			}
		}
		return out, nil
	default:
		return v, nil
	}
}

// instance is one constructed script object. Fields start as the class defaults and
// may be reassigned through self.
type instance struct {
	class  *class
	fields map[string]starlarkLib.Value
	frozen bool
}

var (
	_ starlarkLib.HasAttrs    = (*instance)(nil)
	_ starlarkLib.HasSetField = (*instance)(nil)
)

func (i *instance) String() string { return fmt.Sprintf("<%s instance>", i.class.Name()) }
func (i *instance) Type() string { return i.class.Name() }
func (i *instance) Truth() starlarkLib.Bool { return starlarkLib.True }

func (i *instance) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: %s", i.Type())
}

func (i *instance) Freeze() {
	if i.frozen {
		return
	}
	i.frozen = true
	for _, v := range i.fields {
		v.Freeze()
	}
}

func (i *instance) Attr(name string) (starlarkLib.Value, error) {
	if v, ok := i.fields[name]; ok {
		return v, nil
	}
	if fn, ok := i.class.methods[name]; ok {
		return i.bind(name, fn), nil
	}
	return nil, nil
}

func (i *instance) AttrNames() []string {
	names := make([]string, 0, len(i.fields)+len(i.class.methods))
	for name := range i.fields {
		names = append(names, name)
	}
	for name := range i.class.methods {
		if _, shadowed := i.fields[name]; !shadowed {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

func (i *instance) SetField(name string, val starlarkLib.Value) error {
	if i.frozen {
		return fmt.Errorf("cannot set field %q of frozen %s", name, i.Type())
	}
	i.fields[name] = val
	return nil
}

// bind returns fn with the instance as its first argument.
func (i *instance) bind(name string, fn starlarkLib.Callable) *starlarkLib.Builtin {
	return starlarkLib.NewBuiltin(name, func(
		thread *starlarkLib.Thread,
		_ *starlarkLib.Builtin,
		args starlarkLib.Tuple,
		kwargs []starlarkLib.Tuple,
	) (starlarkLib.Value, error) {
		return starlarkLib.Call(thread, fn, append(starlarkLib.Tuple{i}, args...), kwargs)
	})
}
