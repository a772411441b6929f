package tex2yaml

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyDocument       = errors.New("document content cannot be empty")
	ErrUnbalancedDelimiter = errors.New("unbalanced delimiter")
	ErrEnvironmentNotFound = errors.New("environment not found")
	ErrPatternMismatch     = errors.New("required pattern not found")
	ErrUnknownType         = errors.New("unknown content type")
	ErrUnknownOperation    = errors.New("unknown parse operation")
	ErrRender              = errors.New("template rendering failed")
	ErrNoDocumentMarkers   = errors.New("document markers not found")
	ErrNoColumnLayout      = errors.New("no two-column layout found")
	ErrMarkerNotFound      = errors.New("item marker not found")

	// Index errors.
	ErrIndexNotFound = errors.New("index database not found")
)
