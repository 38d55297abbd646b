// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import "io"

// noopReaderCloser hands out the reader of a streaming archive entry. The data belongs
// to the archive reader, so closing the entry does nothing.
type noopReaderCloser struct {
	io.Reader
}

// Close is a no-op method that satisfies the io.Closer interface.
func (n *noopReaderCloser) Close() error {
	return nil
}
