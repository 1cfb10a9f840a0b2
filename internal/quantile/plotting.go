package quantile

import (
	"fmt"
	"io"
	"strings"
)

const maxBarWidth = 50

// PlotQuantileMeans draws the quantile-mean vector as a horizontal bar chart,
// one bar per rank position. The vector is ascending by construction.
func PlotQuantileMeans(w io.Writer, means QuantileMeans, title string) {
	if len(means) == 0 {
		fmt.Fprintf(w, "\n%s: no quantiles\n", title)
		return
	}

	minMean := means[0]
	maxMean := means[len(means)-1]

	fmt.Fprintf(w, "\n%s (Terminal Plot - Rank Order):\n", title)
	fmt.Fprintln(w, "    Rank | Mean         | Bar Chart")
	fmt.Fprintln(w, "---------|--------------|"+strings.Repeat("-", maxBarWidth))

	for rank, mean := range means {
		var barWidth int
		if maxMean != minMean {
			barWidth = int((mean - minMean) / (maxMean - minMean) * float64(maxBarWidth))
		} else {
			barWidth = maxBarWidth / 2
		}

		bar := strings.Repeat("█", barWidth)
		if barWidth == 0 {
			bar = "▏"
		}

		fmt.Fprintf(w, "%8d | %12.6f | %s\n", rank, mean, bar)
	}

	fmt.Fprintf(w, "\nScale: Min=%.6f, Max=%.6f\n", minMean, maxMean)
}

// QuantileMeansOf returns the quantile-mean vector of m without normalizing it.
func QuantileMeansOf(m *Matrix) (QuantileMeans, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return ComputeQuantileMeans(SortColumns(m.Values)), nil
}
