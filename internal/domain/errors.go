package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownValue is matched by every *UnknownValueError.
var ErrUnknownValue = errors.New("unrecognized value")

// UnknownValueError reports a wire value with no mapping to a domain variant.
type UnknownValueError struct {
	Field string
	Value string
}

func (e *UnknownValueError) Error() string {
	return fmt.Sprintf("unrecognized %s %q", e.Field, e.Value)
}

func (e *UnknownValueError) Is(target error) bool {
	return target == ErrUnknownValue
}
