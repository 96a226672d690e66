package rules

import "errors"

// Compilation errors. Errors returned by Compile and CompileStates wrap one of
// these with the offending rule and state.
var (
	ErrNoName           = errors.New("rule has no name")
	ErrNoStates         = errors.New("no states")
	ErrMultipleError    = errors.New("multiple error rules not allowed")
	ErrMultipleFallback = errors.New("multiple fallback rules not allowed")
	ErrErrorAndFallback = errors.New("fallback and error are mutually exclusive")
	ErrStateless        = errors.New("state-switching options are not allowed in stateless lexers")
	ErrFallbackSwitch   = errors.New("state-switching options are not allowed on fallback tokens")
	ErrMissingState     = errors.New("missing state")
	ErrPopDepth         = errors.New("pop must be 1")
	ErrBadPattern       = errors.New("invalid pattern")
	ErrEmptyMatch       = errors.New("pattern matches empty string")
	ErrCaptureGroup     = errors.New("pattern has capture groups, use (?: ... ) instead")
	ErrLineBreaks       = errors.New("rule should declare LineBreaks")
	ErrKeyword          = errors.New("invalid keyword")
)
