// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"io"
)

// FormatTar is the file extension for tar files.
const FormatTar = "tar"

// offsetTar is the offset where the magic bytes are located in the file
const offsetTar = 257

// tarHeaderLength is the number of bytes needed to detect a tar stream
const tarHeaderLength = offsetTar + 8

// tarBlockSize is the size of a tar record block
const tarBlockSize = 512

// magicBytesTar are the magic bytes for tar files
var magicBytesTar = [][]byte{
	[]byte("ustar\x00tar\x00"),
	[]byte("ustar\x00"),
	[]byte("ustar  \x00"),
}

// isTar checks if the header matches the magic bytes for tar files
func isTar(data []byte) bool {
	return matchesMagicBytes(data, offsetTar, magicBytesTar)
}

// isEmptyTar checks if data consists only of the zero blocks that end a tar archive.
func isEmptyTar(data []byte) bool {
	if len(data) < 2*tarBlockSize || len(data)%tarBlockSize != 0 {
		return false
	}
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}

// decodeTar reads the regular files of a tar archive.
func decodeTar(ctx context.Context, name string, src []byte, maxEntrySize int64) ([]RawEntry, error) {
	if isEmptyTar(src) {
		return nil, nil
	}
	return untar(ctx, bytes.NewReader(src), maxEntrySize)
}

// untar reads the regular files of the tar stream src.
func untar(ctx context.Context, src io.Reader, maxEntrySize int64) ([]RawEntry, error) {
	return collect(ctx, &tarWalker{tr: tar.NewReader(src)}, maxEntrySize)
}

// tarWalker is a walker for tar files
type tarWalker struct {
	tr *tar.Reader
}

// Type returns the file extension for tar files
func (t *tarWalker) Type() string {
	return FormatTar
}

// Next returns the next entry in the tar archive
func (t *tarWalker) Next() (archiveEntry, error) {
	// insecure names are cleaned when the tree is flattened
	hdr, err := t.tr.Next()
	if err != nil && !(errors.Is(err, tar.ErrInsecurePath) && hdr != nil) {
		return nil, err
	}
	return &tarEntry{hdr, t.tr}, nil
}

// tarEntry is an entry in a tar archive
type tarEntry struct {
	hdr *tar.Header
	tr  *tar.Reader
}

// Name returns the name of the entry
func (t *tarEntry) Name() string {
	return t.hdr.Name
}

// Size returns the size of the entry
func (t *tarEntry) Size() int64 {
	return t.hdr.Size
}

// IsRegular returns true if the entry is a regular file
func (t *tarEntry) IsRegular() bool {
	return t.hdr.Typeflag == tar.TypeReg
}

// Open returns a reader for the entry
func (t *tarEntry) Open() (io.ReadCloser, error) {
	return &noopReaderCloser{t.tr}, nil
}
