package quantile

import "errors"

var (
	// ErrEmptyMatrix is returned when a matrix has zero rows or zero columns.
	ErrEmptyMatrix = errors.New("quantile: matrix must have at least one row and one column")

	// ErrDimensionMismatch is returned when labels or data disagree with the matrix shape.
	ErrDimensionMismatch = errors.New("quantile: dimension mismatch")
)
