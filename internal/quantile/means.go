package quantile

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ComputeQuantileMeans averages each row of a column-sorted matrix, giving the
// value every column should hold at that rank position.
func ComputeQuantileMeans(sorted *mat.Dense) QuantileMeans {
	rows, _ := sorted.Dims()

	means := make(QuantileMeans, rows)

	for rowIdx := range rows {
		means[rowIdx] = stat.Mean(mat.Row(nil, rowIdx, sorted), nil)
	}

	return means
}
