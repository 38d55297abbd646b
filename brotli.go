// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"context"
	"io"

	"github.com/andybalholm/brotli"
)

// FormatBrotli is the file extension for brotli files.
const FormatBrotli = "br"

// isBrotli returns always false, because brotli streams have no magic bytes. Brotli
// input is only detected by its name.
func isBrotli(header []byte) bool {
	return false
}

// decodeBrotli decompresses a brotli stream.
func decodeBrotli(ctx context.Context, name string, src []byte, maxEntrySize int64) ([]RawEntry, error) {
	return decompress(ctx, name, src, maxEntrySize, decompressBrotliStream, FormatBrotli)
}

// decompressBrotliStream returns an io.Reader that decompresses src with brotli algorithm
func decompressBrotliStream(src io.Reader) (io.Reader, error) {
	return brotli.NewReader(src), nil
}
