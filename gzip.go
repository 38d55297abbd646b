// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"context"
	"io"

	"github.com/klauspost/compress/gzip"
)

// FormatGZip is the file extension for gzip files.
const FormatGZip = "gz"

// magicBytesGZip are the magic bytes for gzip compressed files.
// reference https://socketloop.com/tutorials/golang-gunzip-file
var magicBytesGZip = [][]byte{
	{0x1f, 0x8b},
}

// isGZip checks if the header matches the gzip magic bytes.
func isGZip(header []byte) bool {
	return matchesMagicBytes(header, 0, magicBytesGZip)
}

// decodeGZip decompresses a gzip stream, a gzipped tar yields the files of the tar.
func decodeGZip(ctx context.Context, name string, src []byte, maxEntrySize int64) ([]RawEntry, error) {
	return decompress(ctx, name, src, maxEntrySize, decompressGZipStream, FormatGZip)
}

// decompressGZipStream returns an io.Reader that decompresses src with gzip algorithm
func decompressGZipStream(src io.Reader) (io.Reader, error) {
	return gzip.NewReader(src)
}
