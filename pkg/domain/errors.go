package domain

import (
	"errors"
	"fmt"
)

// ErrDuplicateTemplate is returned when two template elements resolve to the same qualified name.
var ErrDuplicateTemplate = errors.New("duplicate template")

// ErrUnknownTemplate is returned when a template or element name is not registered.
var ErrUnknownTemplate = errors.New("unknown template")

// ErrIllegalChild is returned when the schema rejects an insertion.
var ErrIllegalChild = errors.New("illegal child")

// ErrRepairLimit is returned when repair passes do not reach a fixpoint within the cycle budget.
var ErrRepairLimit = errors.New("repair cycle limit exceeded")

// ErrRepairLoop is returned when a repair cycle reproduces a document state seen earlier in the same commit.
var ErrRepairLoop = errors.New("repair loop detected")

// ErrDocumentNotFound is returned when a document ID cannot be found in the store.
var ErrDocumentNotFound = errors.New("document not found")

// ErrDetached is returned when an operation targets a node that is not attached to a root.
var ErrDetached = errors.New("node is not attached")

// ErrAlreadyAttached is returned when a document is attached to an engine twice.
var ErrAlreadyAttached = errors.New("document already attached")

// ErrNotSection is returned when a section command targets a node that is not a section.
var ErrNotSection = errors.New("node is not a section")

// TemplateParseError reports a template whose markup could not be registered.
// Registration is atomic: when it is returned, nothing from the batch was registered.
type TemplateParseError struct {
	Template string
	Err      error
}

func (e *TemplateParseError) Error() string {
	return fmt.Sprintf("template %q: %v", e.Template, e.Err)
}

func (e *TemplateParseError) Unwrap() error {
	return e.Err
}
