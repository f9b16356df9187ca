package model

import "errors"

// ErrMalformedPayload is returned when a payload cannot be decoded against the
// schema expected for its message kind.
var ErrMalformedPayload = errors.New("malformed payload")
