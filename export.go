// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
)

// ExportOption is a function pointer to implement the option pattern for [Export].
type ExportOption func(*exporter)

type exporter struct {
	level    int
	maxSize  int64
	modified time.Time
	progress func(f FlatFile)
}

// WithCompressionLevel sets the deflate level of exported files, e.g. [flate.BestSpeed].
func WithCompressionLevel(level int) ExportOption {
	return func(e *exporter) {
		e.level = level
	}
}

// WithMaxExportSize limits the size of the written zip archive. Exports that grow
// larger fail with [ErrMaxExportSizeExceeded]. (-1 to disable check)
func WithMaxExportSize(n int64) ExportOption {
	return func(e *exporter) {
		e.maxSize = n
	}
}

// WithModified sets the modification time that is recorded for every exported file.
func WithModified(t time.Time) ExportOption {
	return func(e *exporter) {
		e.modified = t
	}
}

// WithProgress sets a function that is called after every exported file.
func WithProgress(fn func(f FlatFile)) ExportOption {
	return func(e *exporter) {
		e.progress = fn
	}
}

// Export writes files as zip archive to w, in the given order. Paths must be relative,
// slash separated and free of "." and ".." elements, as returned by [Flatten]. A file
// replaces an earlier file with the same path at the position of the earlier one.
// Failures are reported as [*ExportError]. The files are not modified, so a failed
// export can be retried.
func Export(ctx context.Context, w io.Writer, files []FlatFile, opts ...ExportOption) error {
	e := &exporter{
		level:    flate.DefaultCompression,
		maxSize:  -1,
		modified: now(),
		progress: func(FlatFile) {},
	}
	for _, opt := range opts {
		opt(e)
	}

	// validate paths before anything is written
	for _, f := range files {
		if !validExportPath(f.Path) {
			return &ExportError{Path: f.Path, Err: errors.New("invalid path")}
		}
	}
	files = replaceDuplicates(files)

	zw := zip.NewWriter(limitWriter(w, e.maxSize))
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, e.level)
	})

	for _, f := range files {
		// check if context is canceled
		if err := ctx.Err(); err != nil {
			return &ExportError{Err: err}
		}

		zf, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Path,
			Method:   zip.Deflate,
			Modified: e.modified,
		})
		if err != nil {
			return &ExportError{Path: f.Path, Err: err}
		}
		if _, err := io.Copy(zf, bytes.NewReader(f.Data)); err != nil {
			return &ExportError{Path: f.Path, Err: err}
		}
		e.progress(f)
	}

	if err := zw.Close(); err != nil {
		return &ExportError{Err: fmt.Errorf("cannot finish archive: %w", err)}
	}
	return nil
}

// validExportPath reports whether p can be extracted below the directory of the archive.
func validExportPath(p string) bool {
	return p != "." && fs.ValidPath(p) && !strings.Contains(p, "\\")
}

// replaceDuplicates returns files with one entry per path. The last file of a path wins
// and takes the position of the first one.
func replaceDuplicates(files []FlatFile) []FlatFile {
	index := make(map[string]int, len(files))
	unique := make([]FlatFile, 0, len(files))
	for _, f := range files {
		if i, ok := index[f.Path]; ok {
			unique[i] = f
			continue
		}
		index[f.Path] = len(unique)
		unique = append(unique, f)
	}
	return unique
}

// ExportName returns the file name of an export created at t, e.g.
// decompressed_files_2024-05-01T12-30-00-000Z.zip.
func ExportName(t time.Time) string {
	stamp := t.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return fmt.Sprintf("decompressed_files_%s.zip", stamp)
}
