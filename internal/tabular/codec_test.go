package tabular

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/qnorm/internal/quantile"
)

const sampleCSV = `gene,A,B
g1,5,4
g2,2,1
g3,3,6
`

func TestDecode(t *testing.T) {
	m, err := Decode(strings.NewReader(sampleCSV), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "gene", m.IndexName)
	assert.Equal(t, []string{"g1", "g2", "g3"}, m.RowLabels)
	assert.Equal(t, []string{"A", "B"}, m.ColumnLabels)
	assert.Equal(t, []float64{5, 2, 3}, m.Column(0))
	assert.Equal(t, []float64{4, 1, 6}, m.Column(1))
}

func TestDecode_TabDelimitedWithBOMAndSpaces(t *testing.T) {
	in := "\ufeffid\tA\tB\n s1 \t 1.5\t-2e3\n\ns2\t3\t4\n"

	m, err := Decode(strings.NewReader(in), Options{Delimiter: '\t', Precision: ShortestPrecision})
	require.NoError(t, err)

	assert.Equal(t, "id", m.IndexName)
	assert.Equal(t, []string{"s1", "s2"}, m.RowLabels)
	assert.Equal(t, []float64{1.5, 3}, m.Column(0))
	assert.Equal(t, []float64{-2000, 4}, m.Column(1))
}

func TestDecode_Errors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want error
	}{
		{"empty input", "", quantile.ErrEmptyMatrix},
		{"header only", "id,A,B\n", quantile.ErrEmptyMatrix},
		{"no value columns", "id\ng1\n", quantile.ErrEmptyMatrix},
		{"ragged row", "id,A,B\ng1,1,2\ng2,3\n", ErrMalformed},
		{"non numeric", "id,A\ng1,abc\n", ErrMalformed},
		{"missing value", "id,A,B\ng1,1,\n", ErrMalformed},
		{"bad quoting", "id,A\ng1,\"1\n", ErrMalformed},
		{"nan", "id,A,B\ng1,1,NaN\n", ErrMalformed},
		{"infinity", "id,A\ng1,-Inf\n", ErrMalformed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := Decode(strings.NewReader(tc.in), DefaultOptions())
			assert.Nil(t, m)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDecode_NonNumericNamesCell(t *testing.T) {
	_, err := Decode(strings.NewReader("id,A,B\ng1,1,x\n"), DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `row "g1" column "B"`)
}

func TestEncode(t *testing.T) {
	m, err := quantile.NewMatrix("gene", []string{"g1", "g2"}, []string{"A", "B"}, []float64{5.5, 1.5, 3, 0.1})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m, DefaultOptions()))
	assert.Equal(t, "gene,A,B\ng1,5.5,1.5\ng2,3,0.1\n", buf.String())

	buf.Reset()
	require.NoError(t, Encode(&buf, m, Options{Delimiter: ';', Precision: 2}))
	assert.Equal(t, "gene;A;B\ng1;5.50;1.50\ng2;3.00;0.10\n", buf.String())
}

func TestEncode_Invalid(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, &quantile.Matrix{}, DefaultOptions())
	assert.ErrorIs(t, err, quantile.ErrEmptyMatrix)
}

func TestEncodeDecode_PreservesLayout(t *testing.T) {
	m, err := Decode(strings.NewReader(sampleCSV), DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m, DefaultOptions()))
	assert.Equal(t, sampleCSV, buf.String())
}

func TestFile_PlainAndCompressed(t *testing.T) {
	m, err := Decode(strings.NewReader(sampleCSV), DefaultOptions())
	require.NoError(t, err)

	for _, name := range []string{"matrix.csv", "matrix.csv.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, WriteFile(path, m, DefaultOptions()))

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			if IsCompressed(path) {
				assert.NotEqual(t, sampleCSV, string(raw))
			} else {
				assert.Equal(t, sampleCSV, string(raw))
			}

			back, err := ReadFile(path, DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, m.RowLabels, back.RowLabels)
			assert.Equal(t, m.ColumnLabels, back.ColumnLabels)
			assert.Equal(t, m.Values.RawMatrix().Data, back.Values.RawMatrix().Data)
		})
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"), DefaultOptions())
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	m, err := Decode(strings.NewReader(sampleCSV), DefaultOptions())
	require.NoError(t, err)

	err = WriteFile(filepath.Join(t.TempDir(), "missing", "out.csv"), m, DefaultOptions())
	assert.ErrorIs(t, err, ErrIO)
}

func TestJSON(t *testing.T) {
	m, err := Decode(strings.NewReader(sampleCSV), DefaultOptions())
	require.NoError(t, err)

	data, err := MarshalJSON(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"index_name":"gene","rows":["g1","g2","g3"],"columns":["A","B"],"values":[[5,4],[2,1],[3,6]]}`, string(data))

	back, err := UnmarshalJSON(data)
	require.NoError(t, err)
	assert.Equal(t, m.Values.RawMatrix().Data, back.Values.RawMatrix().Data)
}

func TestJSON_Invalid(t *testing.T) {
	_, err := UnmarshalJSON([]byte(`{"rows":["a"],"columns":["x","y"],"values":[[1]]}`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = UnmarshalJSON([]byte(`{"rows":["a","b"],"columns":["x"],"values":[[1]]}`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = UnmarshalJSON([]byte(`{"rows":[],"columns":["x"],"values":[]}`))
	assert.ErrorIs(t, err, quantile.ErrEmptyMatrix)

	_, err = UnmarshalJSON([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformed)
}
