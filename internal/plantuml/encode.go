// Package plantuml encodes diagram source into PlantUML URL tokens and talks
// to a PlantUML rendering server.
package plantuml

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"fmt"
	"io"
)

// alphabet is PlantUML's URL-safe 64-character set. Bit grouping matches
// standard base64; only the symbol table differs.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"

var encoding = base64.NewEncoding(alphabet).WithPadding(base64.NoPadding)

// Encode compresses source with raw DEFLATE and maps it onto the PlantUML
// alphabet. The compressed stream is zero-padded to whole 3-byte groups, which
// is what the reference encoder emits; decoders ignore bytes past the end of
// the final DEFLATE block.
func Encode(source string) (string, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", fmt.Errorf("creating deflate writer: %w", err)
	}
	if _, err := io.WriteString(w, source); err != nil {
		return "", fmt.Errorf("compressing source: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("flushing deflate writer: %w", err)
	}

	data := buf.Bytes()
	if rem := len(data) % 3; rem != 0 {
		data = append(data, make([]byte, 3-rem)...)
	}
	return encoding.EncodeToString(data), nil
}

// Decode reverses Encode.
func Decode(token string) (string, error) {
	data, err := encoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("decoding token: %w", err)
	}
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("inflating token: %w", err)
	}
	return string(out), nil
}
