package subimport

import "errors"

var (
	// ErrUnresolvedDependency reports a bind through a sub-import that is
	// not attached yet: declared later, or failed for this record.
	ErrUnresolvedDependency = errors.New("unresolved sub-import dependency")
	// ErrAttachmentConflict reports a sub-import named like a key the
	// primary record already has.
	ErrAttachmentConflict = errors.New("sub-import conflicts with existing key")
	// ErrCycle reports sub-imports that bind through each other.
	ErrCycle = errors.New("sub-import dependency cycle")
)
