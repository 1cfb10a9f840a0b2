package quantile

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MinRank assigns every value its 0-based "min" rank: the number of values in
// the column strictly smaller than it. Equal values share a rank.
func MinRank(column []float64) []int {
	return minRankWithTolerance(column, 0)
}

// minRankWithTolerance treats values within tol of the first value of a tie
// group as equal to it.
func minRankWithTolerance(column []float64, tol float64) []int {
	n := len(column)

	sorted := make([]float64, n)
	copy(sorted, column)
	inds := make([]int, n)
	floats.Argsort(sorted, inds)

	ranks := make([]int, n)
	groupStart := 0
	for pos := range n {
		if pos > 0 && sorted[pos]-sorted[groupStart] > tol {
			groupStart = pos
		}
		ranks[inds[pos]] = groupStart
	}

	return ranks
}

// RankColumns ranks every column of values independently.
func RankColumns(values *mat.Dense) Ranks {
	return rankColumnsWithTolerance(values, 0)
}

func rankColumnsWithTolerance(values *mat.Dense, tol float64) Ranks {
	_, cols := values.Dims()

	ranks := make(Ranks, cols)
	for colIdx := range cols {
		ranks[colIdx] = minRankWithTolerance(mat.Col(nil, colIdx, values), tol)
	}

	return ranks
}
