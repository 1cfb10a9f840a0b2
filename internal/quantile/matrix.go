package quantile

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// NewMatrix builds a Matrix from row-major data. Labels are copied.
func NewMatrix(indexName string, rowLabels, columnLabels []string, data []float64) (*Matrix, error) {
	rows, cols := len(rowLabels), len(columnLabels)
	if rows == 0 || cols == 0 {
		return nil, ErrEmptyMatrix
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d values for a %dx%d matrix", ErrDimensionMismatch, len(data), rows, cols)
	}

	values := make([]float64, len(data))
	copy(values, data)

	return &Matrix{
		IndexName:    indexName,
		RowLabels:    append([]string(nil), rowLabels...),
		ColumnLabels: append([]string(nil), columnLabels...),
		Values:       mat.NewDense(rows, cols, values),
	}, nil
}

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (rows, cols int) {
	if m == nil || m.Values == nil {
		return 0, 0
	}
	return m.Values.Dims()
}

func (m *Matrix) Validate() error {
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return ErrEmptyMatrix
	}
	if len(m.RowLabels) != rows {
		return fmt.Errorf("%w: %d row labels for %d rows", ErrDimensionMismatch, len(m.RowLabels), rows)
	}
	if len(m.ColumnLabels) != cols {
		return fmt.Errorf("%w: %d column labels for %d columns", ErrDimensionMismatch, len(m.ColumnLabels), cols)
	}
	return nil
}

// Column returns a copy of column c.
func (m *Matrix) Column(c int) []float64 {
	return mat.Col(nil, c, m.Values)
}

// At returns the value at row i, column c.
func (m *Matrix) At(i, c int) float64 {
	return m.Values.At(i, c)
}

// withValues returns a matrix carrying copies of m's labels around values.
func (m *Matrix) withValues(values *mat.Dense) *Matrix {
	return &Matrix{
		IndexName:    m.IndexName,
		RowLabels:    append([]string(nil), m.RowLabels...),
		ColumnLabels: append([]string(nil), m.ColumnLabels...),
		Values:       values,
	}
}

// RawRows returns the values as a slice of row slices.
func (m *Matrix) RawRows() [][]float64 {
	rows, _ := m.Dims()
	out := make([][]float64, rows)
	for rowIdx := range rows {
		out[rowIdx] = mat.Row(nil, rowIdx, m.Values)
	}
	return out
}
