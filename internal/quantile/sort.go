package quantile

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// SortColumns returns a new matrix in which every column of values is sorted
// ascending independently of the others.
func SortColumns(values *mat.Dense) *mat.Dense {
	rows, cols := values.Dims()

	sorted := mat.NewDense(rows, cols, nil)

	for colIdx := range cols {
		column := mat.Col(nil, colIdx, values)
		sort.Float64s(column)
		sorted.SetCol(colIdx, column)
	}

	return sorted
}
