package schedule

import "errors"

// ErrValidation marks malformed construction input. Constructors wrap it
// with a message naming the offending field; use errors.Is to detect it.
var ErrValidation = errors.New("invalid schedule definition")
