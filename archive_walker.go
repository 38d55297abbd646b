// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"context"
	"fmt"
	"io"
)

// archiveWalker is an interface that represents a file walker in an archive
type archiveWalker interface {
	Type() string
	Next() (archiveEntry, error)
}

// archiveEntry is an interface that represents a file in an archive
type archiveEntry interface {
	IsRegular() bool
	Name() string
	Open() (io.ReadCloser, error)
	Size() int64
}

// collect reads all regular files of src in archive order. Directories, links and
// other special files carry no content and are skipped.
func collect(ctx context.Context, src archiveWalker, maxEntrySize int64) ([]RawEntry, error) {
	var entries []RawEntry
	for {
		// check if context is canceled
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ae, err := src.Next()
		switch {
		case err == io.EOF:
			return entries, nil
		case err != nil:
			return nil, fmt.Errorf("error reading %s: %w", src.Type(), err)
		case ae == nil || !ae.IsRegular():
			continue
		}

		// fail early on declared sizes, the limit reader catches false declarations
		if maxEntrySize != -1 && ae.Size() > maxEntrySize {
			return nil, fmt.Errorf("%s: %w", ae.Name(), ErrMaxExpansionSizeExceeded)
		}

		data, err := readEntry(ae, maxEntrySize)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", ae.Name(), err)
		}
		entries = append(entries, RawEntry{Name: ae.Name(), Data: data})
	}
}

// readEntry opens ae and reads its content.
func readEntry(ae archiveEntry, maxEntrySize int64) ([]byte, error) {
	rc, err := ae.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return readAll(rc, maxEntrySize)
}
