// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"context"
	"io"

	"github.com/pierrec/lz4/v4"
)

// FormatLZ4 is the file extension for LZ4 files. It is the default nested archive format.
const FormatLZ4 = "lz4"

// magicBytesLZ4 is the magic bytes for LZ4 files.
// reference https://android.googlesource.com/platform/external/lz4/+/HEAD/doc/lz4_Frame_format.md
var magicBytesLZ4 = [][]byte{
	{0x04, 0x22, 0x4D, 0x18},
}

// isLZ4 checks if the header matches the LZ4 magic bytes.
func isLZ4(header []byte) bool {
	return matchesMagicBytes(header, 0, magicBytesLZ4)
}

// decodeLZ4 decompresses an LZ4 frame. A frame holding a tar stream yields the
// files of the tar stream, any other frame a single entry.
func decodeLZ4(ctx context.Context, name string, src []byte, maxEntrySize int64) ([]RawEntry, error) {
	return decompress(ctx, name, src, maxEntrySize, decompressLZ4Stream, FormatLZ4)
}

// decompressLZ4Stream returns an io.Reader that decompresses src with lz4 algorithm
func decompressLZ4Stream(src io.Reader) (io.Reader, error) {
	return lz4.NewReader(src), nil
}
