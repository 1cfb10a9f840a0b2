package server

import (
	"bytes"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/qnorm/internal/quantile"
	"github.com/tensorplex-labs/qnorm/internal/tabular"
)

const encodingZstd = "zstd"

func hasZstd(header string) bool {
	return strings.Contains(strings.ToLower(header), encodingZstd)
}

// readMatrix decodes the uploaded matrix. zstd bodies are inflated up to the
// configured body limit; JSON bodies are recognised by their content type.
func (s *Server) readMatrix(c *fiber.Ctx, opts tabular.Options) (*quantile.Matrix, error) {
	body := c.Request().Body()

	if hasZstd(c.Get(fiber.HeaderContentEncoding)) {
		dec, err := zstd.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer dec.Close()

		var src io.Reader = dec
		if s.config.BodySizeLimit > 0 {
			src = io.LimitReader(dec, int64(s.config.BodySizeLimit)+1)
		}
		body, err = io.ReadAll(src)
		if err != nil {
			log.Warn().Err(err).Msg("zstd: failed to decompress request body")
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid zstd request body")
		}
		if s.config.BodySizeLimit > 0 && len(body) > s.config.BodySizeLimit {
			return nil, fiber.NewError(fiber.StatusBadRequest, "decompressed request body exceeds the size limit")
		}
	}

	var (
		m   *quantile.Matrix
		err error
	)
	if strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
		m, err = tabular.UnmarshalJSON(body)
	} else {
		m, err = tabular.Decode(bytes.NewReader(body), opts)
	}
	if err != nil {
		log.Warn().Err(err).Msg("rejecting unreadable matrix")
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return m, nil
}

// sendMatrix writes m as CSV or as a JSON envelope, zstd-compressed when the
// client accepts it.
func sendMatrix(c *fiber.Ctx, m *quantile.Matrix, format string, opts tabular.Options) error {
	var (
		body        []byte
		contentType string
	)
	switch format {
	case FormatJSON:
		data, err := sonic.Marshal(matrixResponse(m))
		if err != nil {
			return err
		}
		body, contentType = data, fiber.MIMEApplicationJSONCharsetUTF8
	default:
		var buf bytes.Buffer
		if err := tabular.Encode(&buf, m, opts); err != nil {
			return err
		}
		body, contentType = buf.Bytes(), MIMETextCSV
	}

	if hasZstd(c.Get(fiber.HeaderAcceptEncoding)) {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return err
		}
		body = enc.EncodeAll(body, nil)
		if err := enc.Close(); err != nil {
			return err
		}
		c.Set(fiber.HeaderContentEncoding, encodingZstd)
		c.Vary(fiber.HeaderAcceptEncoding)
	}

	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(body)
}
