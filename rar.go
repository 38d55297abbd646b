// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"bytes"
	"context"
	"io"

	"github.com/nwaples/rardecode/v2"
)

// FormatRar is the file extension for Rar files.
const FormatRar = "rar"

// magicBytesRar are the magic bytes for Rar files.
var magicBytesRar = [][]byte{
	{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00},       // Rar 1.5
	{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x01, 0x00}, // Rar 5.0
}

// isRar checks if the header matches the magic bytes for Rar files.
func isRar(data []byte) bool {
	return matchesMagicBytes(data, 0, magicBytesRar)
}

// decodeRar reads the regular files of a Rar archive. Multi-volume archives are
// not supported.
func decodeRar(ctx context.Context, name string, src []byte, maxEntrySize int64) ([]RawEntry, error) {
	reader, err := rardecode.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	return collect(ctx, &rarWalker{r: reader}, maxEntrySize)
}

// rarWalker is a walker for Rar files
type rarWalker struct {
	r *rardecode.Reader
}

// Type returns the file extension for Rar files
func (rw *rarWalker) Type() string {
	return FormatRar
}

// Next returns the next entry in the Rar archive
func (rw *rarWalker) Next() (archiveEntry, error) {
	header, err := rw.r.Next()
	if err != nil {
		return nil, err
	}
	return &rarEntry{header, rw.r}, nil
}

// rarEntry is an entry in a Rar archive
type rarEntry struct {
	header *rardecode.FileHeader
	r      *rardecode.Reader
}

// Name returns the name of the entry
func (re *rarEntry) Name() string {
	return re.header.Name
}

// Size returns the size of the entry
func (re *rarEntry) Size() int64 {
	return re.header.UnPackedSize
}

// IsRegular returns true if the entry is a regular file
func (re *rarEntry) IsRegular() bool {
	return !re.header.IsDir && re.header.Mode().IsRegular()
}

// Open returns a reader for the entry
func (re *rarEntry) Open() (io.ReadCloser, error) {
	return &noopReaderCloser{re.r}, nil
}
