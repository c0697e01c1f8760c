package descriptor

import (
	"fmt"
	"maps"
	"reflect"
)

// Raw is the untyped configuration exported by a descriptor.
type Raw map[string]any

// Source is either a Static configuration or a Factory parameterised by
// the environment name.
type Source interface {
	Eval(env string) (Raw, error)
}

var (
	_ Source = Static{}
	_ Source = Factory(nil)
)

// Static is a descriptor that exported a plain object.
type Static struct {
	Config Raw
}

func (s Static) Eval(string) (Raw, error) {
	return s.Config, nil
}

// Factory is a descriptor that exported a function of the environment name.
type Factory func(env string) (Raw, error)

func (f Factory) Eval(env string) (Raw, error) {
	return f(env)
}

// IsFactory reports whether src must be invoked with an environment name.
func IsFactory(src Source) bool {
	_, ok := src.(Factory)
	return ok
}

// overlay merges over onto base. Top level keys from over replace those in
// base, except when both sides hold objects, in which case the object fields
// are merged one level deep.
func overlay(base, over Raw) Raw {
	merged := make(Raw, len(base)+len(over))
	maps.Copy(merged, base)

	for key, val := range over {
		baseObj, baseOK := asObject(merged[key])
		overObj, overOK := asObject(val)
		if baseOK && overOK {
			obj := make(map[string]any, len(baseObj)+len(overObj))
			maps.Copy(obj, baseObj)
			maps.Copy(obj, overObj)
			merged[key] = obj
			continue
		}
		merged[key] = val
	}

	return merged
}

// envOverlays turns a static config carrying an "env" section into a Factory
// that applies the section matching the requested environment.
func envOverlays(raw Raw) (Source, error) {
	section, ok := raw["env"]
	if !ok {
		return Static{Config: raw}, nil
	}

	envs, ok := asObject(section)
	if !ok {
		return nil, fmt.Errorf("env section must be a mapping of environment names, got %T", section)
	}

	base := make(Raw, len(raw))
	for k, v := range raw {
		if k != "env" {
			base[k] = v
		}
	}

	return Factory(func(env string) (Raw, error) {
		over, ok := envs[env]
		if !ok || over == nil {
			return base, nil
		}
		obj, ok := asObject(over)
		if !ok {
			return nil, fmt.Errorf("env.%s must be a mapping, got %T", env, over)
		}
		return overlay(base, obj), nil
	}), nil
}

// asObject accepts both plain mappings and Raw, which yaml.v3 produces for
// nested mappings when decoding into a Raw.
func asObject(v any) (map[string]any, bool) {
	switch obj := v.(type) {
	case map[string]any:
		return obj, true
	case Raw:
		return obj, true
	default:
		return nil, false
	}
}

// sanitize drops values that have no data representation, such as
// functions exported from a JavaScript descriptor.
func sanitize(v any) any {
	switch val := v.(type) {
	case nil, string, bool, int, int64, float64:
		return val
	case Raw:
		return sanitize(map[string]any(val))
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if clean := sanitize(item); clean != nil || item == nil {
				out[k] = clean
			}
		}
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			if clean := sanitize(item); clean != nil || item == nil {
				out = append(out, clean)
			}
		}
		return out
	default:
		if reflect.ValueOf(v).Kind() == reflect.Func {
			return nil
		}
		return val
	}
}
