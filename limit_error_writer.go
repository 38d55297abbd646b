// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import "io"

// limitErrorWriter is a wrapper around an io.Writer that returns Err once more
// than L bytes would be written.
type limitErrorWriter struct {
	W   io.Writer // underlying writer
	L   int64     // limit
	N   int64     // number of bytes written
	Err error     // error returned when the limit is exceeded
}

// Write writes p to the underlying writer. If p does not fit into the remaining
// limit, only the fitting part is written and Err is returned.
func (l *limitErrorWriter) Write(p []byte) (n int, err error) {
	// check if we reached the limit
	if l.N >= l.L && len(p) > 0 {
		return 0, l.Err
	}

	// write until we reach the limit
	if int64(len(p)) > l.L-l.N {
		n, err = l.W.Write(p[:l.L-l.N])
		l.N += int64(n)
		if err == nil {
			err = l.Err
		}
		return n, err
	}

	// write normally
	n, err = l.W.Write(p)
	l.N += int64(n)
	return n, err
}

// limitWriter returns a writer that fails with [ErrMaxExportSizeExceeded] once more
// than maxSize bytes are written to w. A negative maxSize disables the limit.
func limitWriter(w io.Writer, maxSize int64) io.Writer {
	if maxSize < 0 {
		return w
	}
	return &limitErrorWriter{W: w, L: maxSize, Err: ErrMaxExportSizeExceeded}
}
