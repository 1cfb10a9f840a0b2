// Package qnorm quantile-normalizes matrices stored as delimited text files.
//
//	m, err := qnorm.Normalize("expression.csv", "normalized.csv")
//
// A write failure does not discard the computed result: Normalize returns the
// normalized matrix together with a *PersistError.
package qnorm

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/qnorm/internal/quantile"
	"github.com/tensorplex-labs/qnorm/internal/tabular"
	"github.com/tensorplex-labs/qnorm/internal/utils/logger"
)

type Matrix = quantile.Matrix

var (
	ErrEmptyMatrix = quantile.ErrEmptyMatrix
	ErrMalformed   = tabular.ErrMalformed
	ErrIO          = tabular.ErrIO
)

// PersistError reports that normalization succeeded but the result could not
// be written to Path.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("normalized matrix not persisted to %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

type settings struct {
	format     tabular.Options
	normalizer *quantile.Normalizer
}

type Option func(*settings)

// WithDelimiter sets the field delimiter used for both input and output.
func WithDelimiter(delimiter rune) Option {
	return func(s *settings) {
		s.format.Delimiter = delimiter
	}
}

// WithPrecision fixes the number of decimals written; tabular.ShortestPrecision
// writes the shortest exact representation.
func WithPrecision(precision int) Option {
	return func(s *settings) {
		s.format.Precision = precision
	}
}

func WithNormalizer(n *quantile.Normalizer) Option {
	return func(s *settings) {
		if n != nil {
			s.normalizer = n
		}
	}
}

// Normalize reads inputPath, quantile-normalizes it and, when outputPath is
// not empty, writes the result there in the input's layout.
func Normalize(inputPath, outputPath string, opts ...Option) (*Matrix, error) {
	s := &settings{
		format:     tabular.DefaultOptions(),
		normalizer: quantile.NewNormalizer(),
	}
	for _, opt := range opts {
		opt(s)
	}

	startTime := time.Now()

	in, err := tabular.ReadFile(inputPath, s.format)
	if err != nil {
		log.Error().Stack().Err(err).Str("input", inputPath).Msg("failed to read matrix")
		return nil, err
	}

	out, err := s.normalizer.Process(in)
	if err != nil {
		log.Error().Err(err).Str("input", inputPath).Msg("failed to normalize matrix")
		return nil, err
	}

	rows, cols := out.Dims()
	logger.Sugar().Infow("Quantile normalized matrix",
		"input", inputPath,
		"rows", rows,
		"cols", cols,
		"elapsed", time.Since(startTime),
	)

	if outputPath == "" {
		return out, nil
	}

	if err := tabular.WriteFile(outputPath, out, s.format); err != nil {
		log.Error().Stack().Err(err).Str("output", outputPath).Msg("failed to persist normalized matrix")
		return out, &PersistError{Path: outputPath, Err: err}
	}

	log.Info().Str("output", outputPath).Msg("normalized matrix written")
	return out, nil
}
