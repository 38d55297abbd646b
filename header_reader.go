// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"bytes"
	"io"
)

// headerReader is an io.Reader whose first bytes can be inspected before they are
// read, e.g. to identify a tar stream inside a decompressed stream.
type headerReader struct {
	io.Reader
	header []byte
}

// newHeaderReader reads up to headerSize bytes of r. A shorter r is not an error,
// the header then holds whatever was read.
func newHeaderReader(r io.Reader, headerSize int) (*headerReader, error) {
	buf := make([]byte, headerSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	buf = buf[:n]
	return &headerReader{Reader: io.MultiReader(bytes.NewReader(buf), r), header: buf}, nil
}

// PeekHeader returns the header without consuming it.
func (h *headerReader) PeekHeader() []byte {
	return h.header
}
