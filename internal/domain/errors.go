package domain

import "errors"

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrMissingIdentity     = errors.New("artifact and case IDs are required")
	ErrNoTextLayer         = errors.New("document has no extractable text layer")
	ErrEmptyDocument       = errors.New("document buffer is empty")
)
