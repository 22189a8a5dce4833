package models

import "errors"

var (
	ErrCourseNotFound   = errors.New("course not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrArtifactNotFound = errors.New("artifact not found")

	ErrPromptMissing   = errors.New("course has no generated tutor prompt")
	ErrMaterialMissing = errors.New("course has no uploaded material")
	ErrBankMissing     = errors.New("course has no question bank")

	// ErrAnalysisFailed means the model's analysis output could not be parsed.
	// The session is never modified when this is returned.
	ErrAnalysisFailed = errors.New("analysis output could not be parsed")

	// ErrGenerationFailed means the model returned empty or unusable output
	// even after a simplified retry.
	ErrGenerationFailed = errors.New("model returned no usable output")

	ErrUnsupportedInput = errors.New("unsupported input")
)
