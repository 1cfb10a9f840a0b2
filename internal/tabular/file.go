package tabular

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/qnorm/internal/quantile"
)

const CompressedExt = ".zst"

// IsCompressed reports whether path is read and written through zstd.
func IsCompressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), CompressedExt)
}

func ioError(op, path string, err error) error {
	return errors.WithStack(fmt.Errorf("%w: %s %s: %w", ErrIO, op, path, err))
}

// ReadFile opens path, decodes it and closes it again on every path out.
func ReadFile(path string, opts Options) (*quantile.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioError("open", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if IsCompressed(path) {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, ioError("zstd reader", path, err)
		}
		defer zr.Close()
		r = zr
	}

	m, err := Decode(r, opts)
	if err != nil {
		return nil, err
	}

	rows, cols := m.Dims()
	log.Debug().Str("path", path).Int("rows", rows).Int("cols", cols).Msg("read matrix")
	return m, nil
}

// WriteFile encodes m to path. A partially written file is removed.
func WriteFile(path string, m *quantile.Matrix, opts Options) (err error) {
	if err := m.Validate(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return ioError("create", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = ioError("close", path, closeErr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if !IsCompressed(path) {
		if err := Encode(f, m, opts); err != nil {
			return ioError("write", path, err)
		}
		log.Debug().Str("path", path).Msg("wrote matrix")
		return nil
	}

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return ioError("zstd writer", path, err)
	}
	if err := Encode(zw, m, opts); err != nil {
		_ = zw.Close()
		return ioError("write", path, err)
	}
	if err := zw.Close(); err != nil {
		return ioError("zstd flush", path, err)
	}

	log.Debug().Str("path", path).Bool("zstd", true).Msg("wrote matrix")
	return nil
}
