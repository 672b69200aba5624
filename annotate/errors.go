package annotate

import "errors"

var (
	// ErrMatcherRequired is returned when a matcher is not provided.
	ErrMatcherRequired = errors.New("matcher required")

	// ErrPipelineReleased is returned for documents submitted after Release.
	ErrPipelineReleased = errors.New("pipeline released")
)
