package quantile

import "gonum.org/v1/gonum/mat"

// Matrix is a dense numeric table with named rows and columns.
type Matrix struct {
	IndexName    string     // header cell above the identifier column
	RowLabels    []string   // 1D: row identifiers, order preserving
	ColumnLabels []string   // 1D: column names, order preserving
	Values       *mat.Dense // 2D: rows x columns
}

type QuantileMeans []float64 // 1D: mean of the sorted values at each rank position

type Ranks [][]int // 2D: ranks[col][row], 0-based min-method ranks

type ColumnSummary struct {
	Column string
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}
