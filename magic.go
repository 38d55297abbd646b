// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import "bytes"

// SniffLength is the number of leading bytes that are needed to detect every
// image and archive signature known to this package.
const SniffLength = 12

// matchesMagicBytes checks if data contains one of the magicBytes at offset.
func matchesMagicBytes(data []byte, offset int, magicBytes [][]byte) bool {
	// check all possible magic bytes until match is found
	for _, mb := range magicBytes {
		// check if header is long enough
		if offset+len(mb) > len(data) {
			continue
		}

		// check for byte match
		if bytes.Equal(mb, data[offset:offset+len(mb)]) {
			return true
		}
	}

	// no match found
	return false
}

// sniff returns the first n bytes of data, or data if it is shorter.
func sniff(data []byte, n int) []byte {
	if len(data) < n {
		return data
	}
	return data[:n]
}
