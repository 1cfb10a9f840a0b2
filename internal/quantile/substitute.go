package quantile

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Substitute replaces each cell with the quantile mean found at the cell's rank.
func Substitute(values *mat.Dense, ranks Ranks, means QuantileMeans) (*mat.Dense, error) {
	rows, cols := values.Dims()
	if len(ranks) != cols {
		return nil, fmt.Errorf("%w: %d rank columns for %d columns", ErrDimensionMismatch, len(ranks), cols)
	}
	if len(means) != rows {
		return nil, fmt.Errorf("%w: %d quantile means for %d rows", ErrDimensionMismatch, len(means), rows)
	}

	substituted := mat.NewDense(rows, cols, nil)

	for colIdx := range cols {
		colRanks := ranks[colIdx]
		if len(colRanks) != rows {
			return nil, fmt.Errorf("%w: column %d has %d ranks for %d rows", ErrDimensionMismatch, colIdx, len(colRanks), rows)
		}
		for rowIdx, rank := range colRanks {
			substituted.Set(rowIdx, colIdx, means[rank])
		}
	}

	return substituted, nil
}
