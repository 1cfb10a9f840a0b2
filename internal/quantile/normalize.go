// Package quantile implements quantile normalization of labelled numeric matrices.
package quantile

import (
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/qnorm/internal/utils/logger"
)

const NoRounding = -1

// Normalize forces every column of m onto the same distribution: each value is
// replaced by the mean of the values sharing its rank across all columns.
// The input matrix is left untouched.
func Normalize(m *Matrix) (*Matrix, error) {
	return normalize(m, 0)
}

func normalize(m *Matrix, tieTolerance float64) (*Matrix, error) {
	if m == nil {
		return nil, ErrEmptyMatrix
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	rows, cols := m.Dims()

	sorted := SortColumns(m.Values)
	means := ComputeQuantileMeans(sorted)
	ranks := rankColumnsWithTolerance(m.Values, tieTolerance)

	values, err := Substitute(m.Values, ranks, means)
	if err != nil {
		return nil, err
	}

	log.Debug().Int("rows", rows).Int("cols", cols).Dur("elapsed", time.Since(startTime)).
		Msg("quantile normalized matrix")

	return m.withValues(values), nil
}

type NormalizerParams struct {
	RoundingPrecision int
	TieTolerance      float64
}

func DefaultNormalizerParams() NormalizerParams {
	return NormalizerParams{
		RoundingPrecision: NoRounding,
		TieTolerance:      0,
	}
}

type Normalizer struct {
	Params NormalizerParams
}

type NormalizerOption func(*Normalizer)

// WithRoundingPrecision rounds every normalized value to the given number of
// decimals. NoRounding disables rounding.
func WithRoundingPrecision(precision int) NormalizerOption {
	return func(n *Normalizer) {
		n.Params.RoundingPrecision = precision
	}
}

// WithTieTolerance makes values within tol of each other share a rank.
func WithTieTolerance(tol float64) NormalizerOption {
	return func(n *Normalizer) {
		n.Params.TieTolerance = math.Abs(tol)
	}
}

func WithNormalizerParams(params NormalizerParams) NormalizerOption {
	return func(n *Normalizer) {
		n.Params = params
		n.Params.TieTolerance = math.Abs(params.TieTolerance)
	}
}

func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		Params: DefaultNormalizerParams(),
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

func (n *Normalizer) Process(m *Matrix) (*Matrix, error) {
	logger.Sugar().Debugw("Processing with normalizer params", "params", n.Params)

	out, err := normalize(m, n.Params.TieTolerance)
	if err != nil {
		return nil, err
	}

	if n.Params.RoundingPrecision >= 0 {
		roundValues(out.Values, n.Params.RoundingPrecision)
	}

	return out, nil
}

func roundValues(values *mat.Dense, precision int) {
	scale := math.Pow(10, float64(precision))
	values.Apply(func(_, _ int, v float64) float64 {
		return math.Round(v*scale) / scale
	}, values)
}
