package converter

import (
	"context"
	"errors"
	"io/fs"

	"github.com/ginjaninja78/asycuda-converter/internal/asycuda"
	"github.com/ginjaninja78/asycuda-converter/internal/xlsxparser"
	"github.com/ginjaninja78/asycuda-converter/internal/xmlwriter"
)

// ErrUnsupportedFile is returned for inputs without a workbook extension.
var ErrUnsupportedFile = errors.New("unsupported file type")

// Code is a coarse failure category used in logs and summaries.
type Code string

const (
	CodeEmptyInput    Code = "empty_input"
	CodeMapping       Code = "mapping"
	CodeSerialization Code = "serialization"
	CodeUnsupported   Code = "unsupported"
	CodeCancelled     Code = "cancelled"
	CodeRead          Code = "read"
	CodeUnknown       Code = "unknown"
)

// Classify maps a conversion error to its Code. It relies on typed and
// sentinel errors only, never on message text.
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancelled
	}
	if errors.Is(err, ErrUnsupportedFile) {
		return CodeUnsupported
	}

	var empty *xlsxparser.EmptyInputError
	if errors.As(err, &empty) {
		return CodeEmptyInput
	}
	var mapping *asycuda.MappingError
	if errors.As(err, &mapping) {
		return CodeMapping
	}
	var serial *xmlwriter.SerializationError
	if errors.As(err, &serial) {
		return CodeSerialization
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return CodeRead
	}
	return CodeUnknown
}
