package importer

import "fmt"

// MalformedDocumentError reports a price list that could not be decoded or
// that violates the document schema. Raised before any catalog mutation.
type MalformedDocumentError struct {
	Reason string
	Err    error
}

func (e *MalformedDocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed price list: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed price list: %s", e.Reason)
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}

// UnknownCategoryError reports a good referencing a category id that is not
// declared in the document's categories section. Goods processed before the
// offending one have already been applied.
type UnknownCategoryError struct {
	ExternalID uint
	CategoryID uint
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("good %d references unknown category %d", e.ExternalID, e.CategoryID)
}
