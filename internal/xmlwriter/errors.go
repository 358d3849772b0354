package xmlwriter

import "fmt"

// SerializationError reports that a document tree could not be rendered.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization failed: %v", e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }
