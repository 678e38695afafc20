package pipeline

import "errors"

var (
	ErrStageNotFound  = errors.New("stage not found")
	ErrDuplicateStage = errors.New("stage name already installed")
	ErrNotAHandler    = errors.New("handler implements neither direction")
)
