package output

import (
	"bytes"
	"path"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

// Codec produces one precompressed variant of a file.
type Codec interface {
	Name() string
	// Ext is appended to the original path, including the dot.
	Ext() string
	Encode(src []byte) ([]byte, error)
}

type GzipCodec struct {
	Level int
}

func (GzipCodec) Name() string { return "gzip" }
func (GzipCodec) Ext() string  { return ".gz" }

// Encode leaves the header timestamp and name empty so the same input
// always produces the same bytes.
func (c GzipCodec) Encode(src []byte) ([]byte, error) {
	level := c.Level
	if level == 0 {
		level = gzip.BestCompression
	}

	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(src); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type BrotliCodec struct {
	Quality int
}

func (BrotliCodec) Name() string { return "br" }
func (BrotliCodec) Ext() string  { return ".br" }

func (c BrotliCodec) Encode(src []byte) ([]byte, error) {
	quality := c.Quality
	if quality == 0 {
		quality = brotli.BestCompression
	}

	var buf bytes.Buffer
	bw := brotli.NewWriterLevel(&buf, quality)
	if _, err := bw.Write(src); err != nil {
		bw.Close()
		return nil, err
	}
	if err := bw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DefaultCodecs() []Codec {
	return []Codec{GzipCodec{}, BrotliCodec{}}
}

var compressible = map[string]bool{
	".html": true,
	".js":   true,
	".mjs":  true,
	".json": true,
	".css":  true,
	".svg":  true,
	".xml":  true,
	".wasm": true,
	".txt":  true,
}

// Compressible reports whether p is a text-representable file worth
// precompressing.
func Compressible(p string) bool {
	return compressible[strings.ToLower(path.Ext(p))]
}
