// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"context"
	"io"

	"github.com/klauspost/compress/snappy"
)

// FormatSnappy is the file extension for snappy files.
const FormatSnappy = "sz"

// magicBytesSnappy is the magic bytes for snappy files.
var magicBytesSnappy = [][]byte{
	append([]byte{0xff, 0x06, 0x00, 0x00}, []byte("sNaPpY")...),
}

// isSnappy checks if the header matches the snappy magic bytes.
func isSnappy(header []byte) bool {
	return matchesMagicBytes(header, 0, magicBytesSnappy)
}

// decodeSnappy decompresses a framed snappy stream.
func decodeSnappy(ctx context.Context, name string, src []byte, maxEntrySize int64) ([]RawEntry, error) {
	return decompress(ctx, name, src, maxEntrySize, decompressSnappyStream, FormatSnappy)
}

// decompressSnappyStream returns an io.Reader that decompresses src with snappy algorithm
func decompressSnappyStream(src io.Reader) (io.Reader, error) {
	return snappy.NewReader(src), nil
}
