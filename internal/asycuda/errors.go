package asycuda

import (
	"errors"
	"fmt"
)

// ErrMissingConstant is wrapped when a layout leaf names a constant the
// shipment table does not define.
var ErrMissingConstant = errors.New("missing shipment constant")

// MappingError reports a failure while building the document. Item is the
// 1-based item position, or 0 for the declaration block.
type MappingError struct {
	Item int
	Path string
	Err  error
}

func (e *MappingError) Error() string {
	where := "declaration"
	if e.Item > 0 {
		where = fmt.Sprintf("item %d", e.Item)
	}
	if e.Path != "" {
		where += " " + e.Path
	}
	return fmt.Sprintf("mapping %s: %v", where, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }
