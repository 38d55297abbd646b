// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"context"
	"io"

	"github.com/klauspost/compress/zstd"
)

// FormatZstd is the file extension for zstandard files.
const FormatZstd = "zst"

// magicBytesZstd is the magic bytes for zstandard files.
// reference: https://www.rfc-editor.org/rfc/rfc8878.html
var magicBytesZstd = [][]byte{
	{0x28, 0xb5, 0x2f, 0xfd},
}

// isZstd checks if the header matches the zstandard magic bytes.
func isZstd(header []byte) bool {
	return matchesMagicBytes(header, 0, magicBytesZstd)
}

// decodeZstd decompresses a zstandard stream.
func decodeZstd(ctx context.Context, name string, src []byte, maxEntrySize int64) ([]RawEntry, error) {
	return decompress(ctx, name, src, maxEntrySize, decompressZstdStream, FormatZstd)
}

// decompressZstdStream returns an io.Reader that decompresses src with zstandard algorithm
func decompressZstdStream(src io.Reader) (io.Reader, error) {
	d, err := zstd.NewReader(src, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return &zstdStream{d}, nil
}

// zstdStream releases the resources of the decoder on Close.
type zstdStream struct {
	d *zstd.Decoder
}

func (z *zstdStream) Read(p []byte) (int, error) {
	return z.d.Read(p)
}

func (z *zstdStream) Close() error {
	z.d.Close()
	return nil
}
