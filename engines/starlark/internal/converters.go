// Package internal converts between Go values and Starlark values.
package internal

import (
	"fmt"
	"net/url"

	starlarkLib "go.starlark.net/starlark"
)

// FromStarlark converts a Starlark value into a plain Go value.
func FromStarlark(v starlarkLib.Value) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch v := v.(type) {
	case starlarkLib.NoneType:
		return nil, nil
	case starlarkLib.Bool:
		return bool(v), nil
	case starlarkLib.Int:
		if i, ok := v.Int64(); ok {
			return i, nil
		}
		return v.String(), nil
	case starlarkLib.Float:
		return float64(v), nil
	case starlarkLib.String:
		return string(v), nil
	case starlarkLib.Bytes:
		return []byte(v), nil
	case *starlarkLib.List:
		return fromIterable(v, v.Len())
	case starlarkLib.Tuple:
		return fromIterable(v, v.Len())
	case *starlarkLib.Set:
		return fromIterable(v, v.Len())
	case *starlarkLib.Dict:
		dict := make(map[string]any, v.Len())
		for _, item := range v.Items() {
			k, val := item[0], item[1]
			key, ok := k.(starlarkLib.String)
			if !ok {
				key = starlarkLib.String(k.String())
			}
			converted, err := FromStarlark(val)
			if err != nil {
				return nil, fmt.Errorf("failed to convert dict value: %w", err)
			}
			dict[string(key)] = converted
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported Starlark type %s", v.Type())
	}
}

func fromIterable(v starlarkLib.Iterable, size int) ([]any, error) {
	list := make([]any, 0, size)
	iter := v.Iterate()
	defer iter.Done()

	var elem starlarkLib.Value
	for iter.Next(&elem) {
		converted, err := FromStarlark(elem)
		if err != nil {
			return nil, fmt.Errorf("failed to convert list element: %w", err)
		}
		list = append(list, converted)
	}
	return list, nil
}

// ToStarlark converts a plain Go value into a Starlark value.
func ToStarlark(v any) (starlarkLib.Value, error) {
	if v == nil {
		return starlarkLib.None, nil
	}

	switch val := v.(type) {
	case starlarkLib.Value:
		return val, nil
	case bool:
		return starlarkLib.Bool(val), nil
	case int:
		return starlarkLib.MakeInt(val), nil
	case int32:
		return starlarkLib.MakeInt64(int64(val)), nil
	case int64:
		return starlarkLib.MakeInt64(val), nil
	case uint64:
		return starlarkLib.MakeUint64(val), nil
	case float32:
		return starlarkLib.Float(val), nil
	case float64:
		return starlarkLib.Float(val), nil
	case string:
		return starlarkLib.String(val), nil
	case []byte:
		return starlarkLib.Bytes(val), nil
	case *url.URL:
		return starlarkLib.String(val.String()), nil
	case []string:
		elements := make([]starlarkLib.Value, len(val))
		for i, s := range val {
			elements[i] = starlarkLib.String(s)
		}
		return starlarkLib.NewList(elements), nil
	case []any:
		elements := make([]starlarkLib.Value, len(val))
		for i, elem := range val {
			converted, err := ToStarlark(elem)
			if err != nil {
				return nil, fmt.Errorf("failed to convert list element: %w", err)
			}
			elements[i] = converted
		}
		return starlarkLib.NewList(elements), nil
	case map[string]any:
		dict := starlarkLib.NewDict(len(val))
		for k, elem := range val {
			converted, err := ToStarlark(elem)
			if err != nil {
				return nil, fmt.Errorf("failed to convert dict value: %w", err)
			}
			if err := dict.SetKey(starlarkLib.String(k), converted); err != nil {
				return nil, fmt.Errorf("failed to set dict key: %w", err)
			}
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}
