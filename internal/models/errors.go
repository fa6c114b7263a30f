package models

import "errors"

// ErrInsufficientData signals that the caller must supply more history
// before the operation can succeed; retrying with the same input will not
// help.
var ErrInsufficientData = errors.New("insufficient data")
