package cache

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// Header bytes distinguishing stored payload encodings. Every value written
// by the cache starts with one of these.
const (
	headerPlain      byte = 0x00
	headerCompressed byte = 0x01
)

// Default compression settings.
const (
	DefaultCompressionThreshold = 1000
	DefaultCompressionLevel     = 6
)

// Compressor applies transparent gzip compression to serialized values that
// exceed a byte threshold.
type Compressor struct {
	threshold int
	level     int
}

// NewCompressor creates a Compressor. Out-of-range levels and non-positive
// thresholds fall back to the defaults.
func NewCompressor(threshold, level int) *Compressor {
	if threshold <= 0 {
		threshold = DefaultCompressionThreshold
	}
	if level < gzip.BestSpeed || level > gzip.BestCompression {
		level = DefaultCompressionLevel
	}
	return &Compressor{threshold: threshold, level: level}
}

// Compress frames data with a header byte, gzipping when the payload
// exceeds the threshold. The returned bool reports whether compression was
// applied.
func (c *Compressor) Compress(data []byte) ([]byte, bool, error) {
	if len(data) <= c.threshold {
		out := make([]byte, 0, len(data)+1)
		out = append(out, headerPlain)
		return append(out, data...), false, nil
	}

	var buf bytes.Buffer
	buf.WriteByte(headerCompressed)
	w, err := gzip.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, false, fmt.Errorf("creating gzip writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, false, fmt.Errorf("compressing value: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, false, fmt.Errorf("finalizing compression: %w", err)
	}
	return buf.Bytes(), true, nil
}

// Decompress reverses Compress, honoring the header byte.
func (c *Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty cache payload")
	}

	switch data[0] {
	case headerPlain:
		return data[1:], nil
	case headerCompressed:
		r, err := gzip.NewReader(bytes.NewReader(data[1:]))
		if err != nil {
			return nil, fmt.Errorf("opening gzip reader: %w", err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("decompressing value: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown cache payload header 0x%02x", data[0])
	}
}
