// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"context"
	"io"

	"github.com/dsnet/compress/bzip2"
)

// FormatBzip2 is the file extension for bzip2 files.
const FormatBzip2 = "bz2"

// magicBytesBzip2 are the magic bytes for bzip2 compressed files
// reference: https://en.wikipedia.org/wiki/Bzip2 // https://github.com/dsnet/compress/blob/master/doc/bzip2-format.pdf
var magicBytesBzip2 = [][]byte{
	[]byte("BZh1"),
	[]byte("BZh2"),
	[]byte("BZh3"),
	[]byte("BZh4"),
	[]byte("BZh5"),
	[]byte("BZh6"),
	[]byte("BZh7"),
	[]byte("BZh8"),
	[]byte("BZh9"),
}

// isBzip2 checks if the header matches the magic bytes for bzip2 compressed files
func isBzip2(header []byte) bool {
	return matchesMagicBytes(header, 0, magicBytesBzip2)
}

// decodeBzip2 decompresses a bzip2 stream.
func decodeBzip2(ctx context.Context, name string, src []byte, maxEntrySize int64) ([]RawEntry, error) {
	return decompress(ctx, name, src, maxEntrySize, decompressBzip2Stream, FormatBzip2)
}

// decompressBzip2Stream returns an io.Reader that decompresses src with bzip2 algorithm
func decompressBzip2Stream(src io.Reader) (io.Reader, error) {
	return bzip2.NewReader(src, nil)
}
