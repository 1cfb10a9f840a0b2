package quantile

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summarize reports the spread of every column; after normalization all
// columns without ties report identical figures.
func Summarize(m *Matrix) []ColumnSummary {
	_, cols := m.Dims()

	summaries := make([]ColumnSummary, cols)
	for colIdx := range cols {
		column := m.Column(colIdx)
		mean, std := stat.MeanStdDev(column, nil)
		if len(column) < 2 {
			std = 0
		}
		summaries[colIdx] = ColumnSummary{
			Column: m.ColumnLabels[colIdx],
			Min:    floats.Min(column),
			Max:    floats.Max(column),
			Mean:   mean,
			StdDev: std,
		}
	}

	return summaries
}
