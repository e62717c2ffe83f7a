package codec

import "errors"

// ErrSchema marks an undecodable payload: unknown type discriminator,
// missing required field, or a field value that cannot be interpreted.
// Load wraps it with a message naming the offending field.
var ErrSchema = errors.New("invalid schedule payload")
