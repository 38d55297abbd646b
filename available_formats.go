// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"context"
	"sort"
)

// init calculates the maximum header length
func init() {
	for _, f := range availableFormats {
		needs := f.Offset
		for _, mb := range f.MagicBytes {
			if len(mb)+f.Offset > needs {
				needs = len(mb) + f.Offset
			}
		}
		if needs > maxHeaderLength {
			maxHeaderLength = needs
		}
	}
}

// decodeFunc decompresses src into its entries. maxEntrySize bounds every single
// entry (-1 for no limit).
type decodeFunc func(ctx context.Context, name string, src []byte, maxEntrySize int64) ([]RawEntry, error)

type format struct {
	Decoder     decodeFunc
	HeaderCheck headerCheck
	MagicBytes  [][]byte
	Offset      int
}

// availableFormats is collection of decoders with the required magic bytes
// and potential offset, keyed by file extension
var availableFormats = map[string]format{
	Format7zip: {
		Decoder:     decode7zip,
		HeaderCheck: is7zip,
		MagicBytes:  magicBytes7zip,
	},
	FormatBrotli: {
		Decoder:     decodeBrotli,
		HeaderCheck: isBrotli,
	},
	FormatBzip2: {
		Decoder:     decodeBzip2,
		HeaderCheck: isBzip2,
		MagicBytes:  magicBytesBzip2,
	},
	FormatGZip: {
		Decoder:     decodeGZip,
		HeaderCheck: isGZip,
		MagicBytes:  magicBytesGZip,
	},
	FormatLZ4: {
		Decoder:     decodeLZ4,
		HeaderCheck: isLZ4,
		MagicBytes:  magicBytesLZ4,
	},
	FormatRar: {
		Decoder:     decodeRar,
		HeaderCheck: isRar,
		MagicBytes:  magicBytesRar,
	},
	FormatSnappy: {
		Decoder:     decodeSnappy,
		HeaderCheck: isSnappy,
		MagicBytes:  magicBytesSnappy,
	},
	FormatTar: {
		Decoder:     decodeTar,
		HeaderCheck: isTar,
		MagicBytes:  magicBytesTar,
		Offset:      offsetTar,
	},
	FormatXz: {
		Decoder:     decodeXz,
		HeaderCheck: isXz,
		MagicBytes:  magicBytesXz,
	},
	FormatZip: {
		Decoder:     decodeZip,
		HeaderCheck: isZip,
		MagicBytes:  magicBytesZip,
	},
	FormatZlib: {
		Decoder:     decodeZlib,
		HeaderCheck: isZlib,
		MagicBytes:  magicBytesZlib,
	},
	FormatZstd: {
		Decoder:     decodeZstd,
		HeaderCheck: isZstd,
		MagicBytes:  magicBytesZstd,
	},
}

// maxHeaderLength is the maximum header length of all formats
var maxHeaderLength int

// AvailableFormats returns the sorted names of all formats a [MultiCodec] can be built for.
func AvailableFormats() []string {
	names := make([]string, 0, len(availableFormats))
	for name := range availableFormats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
