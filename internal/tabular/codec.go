// Package tabular reads and writes labelled matrices as delimited text.
//
// The first record is a header: its first cell names the identifier column and
// the remaining cells name the value columns. Every following record holds a
// row identifier and one numeric cell per column.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/tensorplex-labs/qnorm/internal/quantile"
)

const byteOrderMark = "\ufeff"

// Decode parses a delimited table into a Matrix.
func Decode(r io.Reader, opts Options) (*quantile.Matrix, error) {
	reader := csv.NewReader(r)
	reader.Comma = opts.delimiter()
	reader.FieldsPerRecord = 0
	reader.TrimLeadingSpace = !unicode.IsSpace(reader.Comma)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.WithStack(fmt.Errorf("%w: no header row", quantile.ErrEmptyMatrix))
	}
	if err != nil {
		return nil, errors.WithStack(fmt.Errorf("%w: header: %w", ErrMalformed, err))
	}
	if len(header) < 2 {
		return nil, errors.WithStack(fmt.Errorf("%w: header has no value columns", quantile.ErrEmptyMatrix))
	}

	indexName := strings.TrimPrefix(header[0], byteOrderMark)
	columns := make([]string, len(header)-1)
	for i, name := range header[1:] {
		columns[i] = strings.TrimSpace(name)
	}

	var (
		rowLabels []string
		data      []float64
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WithStack(fmt.Errorf("%w: %w", ErrMalformed, err))
		}

		rowLabel := strings.TrimSpace(record[0])
		for colIdx, cell := range record[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errors.WithStack(fmt.Errorf("%w: row %q column %q: %w", ErrMalformed, rowLabel, columns[colIdx], err))
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.WithStack(fmt.Errorf("%w: row %q column %q: non-finite value %q", ErrMalformed, rowLabel, columns[colIdx], cell))
			}
			data = append(data, v)
		}
		rowLabels = append(rowLabels, rowLabel)
	}

	if len(rowLabels) == 0 {
		return nil, errors.WithStack(fmt.Errorf("%w: no data rows", quantile.ErrEmptyMatrix))
	}

	return quantile.NewMatrix(indexName, rowLabels, columns, data)
}

// Encode writes m in the same layout Decode reads.
func Encode(w io.Writer, m *quantile.Matrix, opts Options) error {
	if err := m.Validate(); err != nil {
		return err
	}

	rows, cols := m.Dims()

	writer := csv.NewWriter(w)
	writer.Comma = opts.delimiter()

	header := make([]string, 0, cols+1)
	header = append(header, m.IndexName)
	header = append(header, m.ColumnLabels...)
	if err := writer.Write(header); err != nil {
		return err
	}

	record := make([]string, cols+1)
	for rowIdx := range rows {
		record[0] = m.RowLabels[rowIdx]
		for colIdx := range cols {
			record[colIdx+1] = strconv.FormatFloat(m.At(rowIdx, colIdx), 'f', opts.precision(), 64)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
