package tabular

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"github.com/tensorplex-labs/qnorm/internal/quantile"
)

// Payload is the JSON form of a Matrix.
type Payload struct {
	IndexName string      `json:"index_name"`
	Rows      []string    `json:"rows"`
	Columns   []string    `json:"columns"`
	Values    [][]float64 `json:"values"`
}

func ToPayload(m *quantile.Matrix) Payload {
	return Payload{
		IndexName: m.IndexName,
		Rows:      m.RowLabels,
		Columns:   m.ColumnLabels,
		Values:    m.RawRows(),
	}
}

func (p Payload) Matrix() (*quantile.Matrix, error) {
	if len(p.Values) != len(p.Rows) {
		return nil, errors.WithStack(fmt.Errorf("%w: %d value rows for %d row labels", ErrMalformed, len(p.Values), len(p.Rows)))
	}

	data := make([]float64, 0, len(p.Rows)*len(p.Columns))
	for rowIdx, row := range p.Values {
		if len(row) != len(p.Columns) {
			return nil, errors.WithStack(fmt.Errorf("%w: row %q has %d values for %d columns", ErrMalformed, p.Rows[rowIdx], len(row), len(p.Columns)))
		}
		data = append(data, row...)
	}

	return quantile.NewMatrix(p.IndexName, p.Rows, p.Columns, data)
}

func MarshalJSON(m *quantile.Matrix) ([]byte, error) {
	return sonic.Marshal(ToPayload(m))
}

func UnmarshalJSON(data []byte) (*quantile.Matrix, error) {
	var p Payload
	if err := sonic.Unmarshal(data, &p); err != nil {
		return nil, errors.WithStack(fmt.Errorf("%w: %w", ErrMalformed, err))
	}
	return p.Matrix()
}
