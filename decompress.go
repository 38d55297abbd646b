// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"
)

type decompressionFunc func(io.Reader) (io.Reader, error)

// decompress runs decFunc over src. A decompressed tar stream is unpacked into its
// regular files, an empty stream yields no entries and any other payload becomes a
// single entry named after name without the fileExt suffix. maxEntrySize bounds the
// decompressed stream.
func decompress(ctx context.Context, name string, src []byte, maxEntrySize int64, decFunc decompressionFunc, fileExt string) ([]RawEntry, error) {
	// start decompression
	decompressedStream, err := decFunc(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("cannot start decompression: %w", err)
	}
	defer func() {
		if closer, ok := decompressedStream.(io.Closer); ok {
			closer.Close()
		}
	}()

	// check if context is canceled
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// bound the whole stream and peek at its header to identify a tar archive
	hr, err := newHeaderReader(newLimitErrorReader(decompressedStream, maxEntrySize), tarHeaderLength)
	if err != nil {
		return nil, fmt.Errorf("cannot decompress: %w", err)
	}
	if isTar(hr.PeekHeader()) {
		return untar(ctx, hr, maxEntrySize)
	}

	data, err := io.ReadAll(hr)
	if err != nil {
		return nil, fmt.Errorf("cannot decompress: %w", err)
	}
	if len(data) == 0 || isEmptyTar(data) {
		return nil, nil
	}

	return []RawEntry{{Name: determineOutputName(name, "."+fileExt), Data: data}}, nil
}

// readAll reads r until EOF. It fails with [ErrMaxExpansionSizeExceeded] if r holds
// more than maxSize bytes.
func readAll(r io.Reader, maxSize int64) ([]byte, error) {
	return io.ReadAll(newLimitErrorReader(r, maxSize))
}

const (
	// defaultDecompressionName is the default name for the decompressed content
	defaultDecompressionName = "decompressed-content"

	// defaultDecompressedSuffix is the suffix for the decompressed content if
	// the name does not end with the file extension
	defaultDecompressedSuffix = "decompressed"
)

// determineOutputName determines the name of a single decompressed stream from the
// name of its compressed input.
func determineOutputName(inputName string, fileExt string) string {
	inputName = path.Base(inputName)
	if inputName == "." || inputName == "/" {
		return defaultDecompressionName
	}

	// remove file extension
	newName := inputName
	if strings.HasSuffix(strings.ToLower(inputName), strings.ToLower(fileExt)) {
		newName = newName[:len(newName)-len(fileExt)]
	}

	// check if file extension has been removed, if not, add a suffix
	if newName == inputName {
		newName = fmt.Sprintf("%s.%s", inputName, defaultDecompressedSuffix)
	}

	if newName == "" || !utf8.ValidString(newName) {
		return defaultDecompressionName
	}
	return newName
}
