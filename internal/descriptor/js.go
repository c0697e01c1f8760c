package descriptor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog"
)

// transpile lowers the descriptor to CommonJS ES2015 so the embedded runtime
// can execute it regardless of the syntax the author used.
func transpile(path, code string, loader api.Loader) (string, error) {
	result := api.Transform(code, api.TransformOptions{
		Loader:     loader,
		Format:     api.FormatCommonJS,
		Target:     api.ES2015,
		Sourcefile: path,
	})

	if len(result.Errors) > 0 {
		errs := make([]error, len(result.Errors))
		for i, msg := range result.Errors {
			errs[i] = errors.New(formatMessage(msg))
		}
		return "", errors.Join(errs...)
	}

	return string(result.Code), nil
}

func formatMessage(msg api.Message) string {
	if msg.Location == nil {
		return msg.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
}

// jsRuntime evaluates a transpiled descriptor in a fresh goja VM that exposes
// nothing but module, exports, console and process.env.NODE_ENV.
type jsRuntime struct {
	vm     *goja.Runtime
	logger zerolog.Logger
	path   string
}

func newJSRuntime(logger zerolog.Logger, path, env string) *jsRuntime {
	rt := &jsRuntime{
		vm:     goja.New(),
		logger: logger.With().Str("descriptor", path).Logger(),
		path:   path,
	}

	rt.setupConsole()
	rt.setupProcess(env)

	return rt
}

func (r *jsRuntime) setupConsole() {
	console := r.vm.NewObject()

	levels := map[string]zerolog.Level{
		"log":   zerolog.DebugLevel,
		"debug": zerolog.DebugLevel,
		"info":  zerolog.InfoLevel,
		"warn":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
	}

	for name, level := range levels {
		_ = console.Set(name, func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = arg.String()
			}
			r.logger.WithLevel(level).Str("source", "console."+name).Msg(strings.Join(parts, " "))
			return goja.Undefined()
		})
	}

	_ = r.vm.Set("console", console)
}

func (r *jsRuntime) setupProcess(env string) {
	envObj := r.vm.NewObject()
	_ = envObj.Set("NODE_ENV", env)

	process := r.vm.NewObject()
	_ = process.Set("env", envObj)

	_ = r.vm.Set("process", process)
}

func (r *jsRuntime) require(call goja.FunctionCall) goja.Value {
	panic(r.vm.NewTypeError("require(%q) is not available while evaluating %s", call.Argument(0).String(), r.path))
}

// run executes code as the body of a CommonJS module and returns its
// exports with any default export unwrapped.
func (r *jsRuntime) run(code string) (goja.Value, error) {
	wrapped := "(function (module, exports, require) {\n" + code + "\n})"

	fnVal, err := r.vm.RunScript(r.path, wrapped)
	if err != nil {
		return nil, err
	}

	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return nil, errors.New("descriptor wrapper is not callable")
	}

	module := r.vm.NewObject()
	exports := r.vm.NewObject()
	_ = module.Set("exports", exports)

	if _, err := fn(goja.Undefined(), module, exports, r.vm.ToValue(r.require)); err != nil {
		return nil, err
	}

	result := module.Get("exports")
	if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
		return nil, errors.New("descriptor does not export a configuration")
	}

	if obj, ok := result.(*goja.Object); ok {
		if def := obj.Get("default"); def != nil && !goja.IsUndefined(def) && !goja.IsNull(def) {
			result = def
		}
	}

	return result, nil
}

// source classifies the exported value as a Static object or a Factory.
func (r *jsRuntime) source(val goja.Value) (Source, error) {
	if fn, ok := goja.AssertFunction(val); ok {
		return Factory(func(env string) (Raw, error) {
			out, err := fn(goja.Undefined(), r.vm.ToValue(env))
			if err != nil {
				return nil, &ConfigEvaluationError{Path: r.path, Stage: stageFactory, Err: err}
			}
			raw, err := exportRaw(out)
			if err != nil {
				return nil, &ConfigEvaluationError{Path: r.path, Stage: stageFactory, Err: err}
			}
			return raw, nil
		}), nil
	}

	raw, err := exportRaw(val)
	if err != nil {
		return nil, err
	}
	return Static{Config: raw}, nil
}

func exportRaw(val goja.Value) (Raw, error) {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil, errors.New("configuration must be an object, got undefined")
	}

	obj, ok := sanitize(val.Export()).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("configuration must be an object, got %s", val.ExportType())
	}

	return Raw(obj), nil
}
