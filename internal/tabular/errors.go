package tabular

import "github.com/pkg/errors"

var (
	// ErrMalformed is returned for ragged rows, unparsable records and non-numeric cells.
	ErrMalformed = errors.New("tabular: malformed content")

	// ErrIO is returned when a file cannot be opened, read, created or written.
	ErrIO = errors.New("tabular: i/o failure")
)
