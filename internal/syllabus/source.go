// Package syllabus provides pull-based topic sources over syllabus
// documents. A source yields each top-level topic exactly once, in document
// order; it is a single forward pass and cannot be restarted.
package syllabus

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tmalunga/syllabussense/pkg/models"
)

// ErrExhausted signals that a source has no more topics. It is a normal
// terminal condition, not a failure.
var ErrExhausted = errors.New("topic source exhausted")

// Source yields topics one at a time. After the first ErrExhausted every
// subsequent call returns ErrExhausted as well.
type Source interface {
	Next() (models.Topic, error)
}

// Open creates a source for the document at path. Format is "text" or
// "workbook"; when empty it is inferred from the file extension.
func Open(path, format, topicMarker string) (Source, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xlsx", ".xlsm":
			format = "workbook"
		default:
			format = "text"
		}
	}

	switch format {
	case "text":
		return NewTextSource(path, topicMarker)
	case "workbook":
		return NewWorkbookSource(path)
	default:
		return nil, fmt.Errorf("unknown source format %q", format)
	}
}
