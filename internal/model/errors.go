package model

import "errors"

// ErrValidationFailed is matched (errors.Is) by every local, pre-submission
// content or quiz validation failure.
var ErrValidationFailed = errors.New("validation failed")
