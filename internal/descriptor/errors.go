package descriptor

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigNotFound indicates no descriptor file exists under the project root
	ErrConfigNotFound = errors.New("config descriptor not found")
	// ErrConfigEvaluation indicates the descriptor could not be transpiled or evaluated
	ErrConfigEvaluation = errors.New("config descriptor evaluation failed")
)

// ConfigNotFoundError reports the descriptor path that was expected but missing.
type ConfigNotFoundError struct {
	Path string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("no descriptor file found in project: expected %s", e.Path)
}

func (e *ConfigNotFoundError) Is(target error) bool {
	return target == ErrConfigNotFound
}

// ConfigEvaluationError wraps the diagnostic produced while turning a
// descriptor into a raw configuration. Err is the original error.
type ConfigEvaluationError struct {
	Path  string
	Stage string
	Err   error
}

func (e *ConfigEvaluationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *ConfigEvaluationError) Unwrap() error {
	return e.Err
}

func (e *ConfigEvaluationError) Is(target error) bool {
	return target == ErrConfigEvaluation
}

const (
	stageRead      = "read"
	stageTranspile = "transpile"
	stageEvaluate  = "evaluate"
	stageFactory   = "call factory"
	stageParse     = "parse"
)
