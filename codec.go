// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"context"
	"fmt"
	"strings"
)

// RawEntry is a named byte buffer produced by a [Codec]. It is not modified after
// it has been produced.
type RawEntry struct {
	Name string
	Data []byte
}

// Codec turns a compressed buffer into zero or more named buffers, in the order they
// are stored. name is a hint about the origin of src and may be empty. A malformed,
// truncated or unsupported src results in a [*CodecError].
type Codec interface {
	Decompress(ctx context.Context, name string, src []byte) ([]RawEntry, error)
}

// CodecFunc is an adapter to allow the use of ordinary functions as [Codec].
type CodecFunc func(ctx context.Context, name string, src []byte) ([]RawEntry, error)

// Decompress calls f(ctx, name, src).
func (f CodecFunc) Decompress(ctx context.Context, name string, src []byte) ([]RawEntry, error) {
	return f(ctx, name, src)
}

// MultiCodec is a [Codec] for a set of registered formats. The format of an input is
// detected by its magic bytes first and by the extension of its name second.
type MultiCodec struct {
	formats      []string
	maxEntrySize int64
}

// NewCodec returns a [MultiCodec] for the given formats, see [AvailableFormats]. Without
// formats, only [FormatLZ4] is supported.
func NewCodec(formats ...string) (*MultiCodec, error) {
	if len(formats) == 0 {
		formats = defaultFormats
	}

	m := &MultiCodec{maxEntrySize: -1}
	seen := make(map[string]bool, len(formats))
	for _, f := range formats {
		f = strings.ToLower(strings.TrimPrefix(f, "."))
		if _, ok := availableFormats[f]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		m.formats = append(m.formats, f)
	}
	return m, nil
}

// Formats returns the formats of the codec in detection order.
func (m *MultiCodec) Formats() []string {
	return m.formats
}

// Suffixes returns the name suffixes of all formats of the codec, e.g. ".lz4".
func (m *MultiCodec) Suffixes() []string {
	suffixes := make([]string, 0, len(m.formats))
	for _, f := range m.formats {
		suffixes = append(suffixes, "."+f)
	}
	return suffixes
}

// SetMaxEntrySize limits the number of bytes a single decompressed entry may have.
// Larger entries fail with [ErrMaxExpansionSizeExceeded]. (-1 to disable check)
func (m *MultiCodec) SetMaxEntrySize(n int64) {
	m.maxEntrySize = n
}

// Decompress detects the format of src and decompresses it.
func (m *MultiCodec) Decompress(ctx context.Context, name string, src []byte) ([]RawEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext, f, ok := m.detect(name, src)
	if !ok {
		return nil, &CodecError{Format: extension(name), Err: ErrUnsupportedFormat}
	}

	entries, err := f.Decoder(ctx, name, src, m.maxEntrySize)
	if err != nil {
		return nil, newCodecError(ext, err)
	}
	return entries, nil
}

// detect returns the format of src. Magic bytes take precedence over the name, which
// is matched with the longest extension.
func (m *MultiCodec) detect(name string, src []byte) (string, format, bool) {
	header := sniff(src, maxHeaderLength)
	for _, ext := range m.formats {
		f := availableFormats[ext]
		if f.HeaderCheck != nil && f.HeaderCheck(header) {
			return ext, f, true
		}
	}

	lower := strings.ToLower(name)
	var match string
	for _, ext := range m.formats {
		if strings.HasSuffix(lower, "."+ext) && len(ext) > len(match) {
			match = ext
		}
	}
	if match == "" {
		return "", format{}, false
	}
	return match, availableFormats[match], true
}
