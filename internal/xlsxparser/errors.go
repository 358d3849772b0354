package xlsxparser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSheetNotFound is wrapped by SheetReadError when the workbook has no
// sheet of the requested name.
var ErrSheetNotFound = errors.New("sheet not found")

// SheetReadError reports that one sheet could not be read. It is absorbed by
// the extractor: the sheet contributes no data and the other sheet is still
// read.
type SheetReadError struct {
	Sheet string
	Err   error
}

func (e *SheetReadError) Error() string {
	return fmt.Sprintf("sheet %q: %v", e.Sheet, e.Err)
}

func (e *SheetReadError) Unwrap() error { return e.Err }

// EmptyInputError reports that neither the SAD nor the Items sheet produced
// data. The whole file is unconvertible.
type EmptyInputError struct {
	Warnings []*SheetReadError
}

func (e *EmptyInputError) Error() string {
	if len(e.Warnings) == 0 {
		return "no valid data found in SAD or Items sheet"
	}
	parts := make([]string, len(e.Warnings))
	for i, w := range e.Warnings {
		parts[i] = w.Error()
	}
	return "no valid data found in SAD or Items sheet (" + strings.Join(parts, "; ") + ")"
}
