package serialize

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// CompressionThreshold is the minimum input size, in bytes, before
// compression is applied. Smaller strings pass through unchanged.
const CompressionThreshold = 1024

// CompressedPrefix tags compressed payloads so Decompress knows whether to
// act.
const CompressedPrefix = "COMPRESSED:"

// Compress gzips and base64-encodes s when it reaches the threshold,
// prefixing the result with the compression marker. Below the threshold the
// input is returned unchanged. Round trip through Decompress is lossless.
func (s *Service) Compress(in string) string {
	if len(in) < s.compressionThreshold {
		return in
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(in)); err != nil {
		zw.Close()
		return in
	}
	if err := zw.Close(); err != nil {
		return in
	}
	return CompressedPrefix + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// Decompress reverses Compress. Unprefixed input passes through unchanged.
func (s *Service) Decompress(in string) (string, error) {
	if !strings.HasPrefix(in, CompressedPrefix) {
		return in, nil
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(in, CompressedPrefix))
	if err != nil {
		return "", fmt.Errorf("decoding compressed payload: %w", err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("opening compressed payload: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return "", fmt.Errorf("decompressing payload: %w", err)
	}
	return string(out), nil
}
