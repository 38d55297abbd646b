// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// FormatBinaryDump renders data in the canonical hex+ASCII layout of hexdump -C, 16 bytes
// per line. Only the first limit bytes are rendered, a truncated dump ends with a line
// that reports the omitted and the total number of bytes. A negative limit renders
// everything.
func FormatBinaryDump(data []byte, limit int) string {
	shown := data
	if limit >= 0 && len(data) > limit {
		shown = data[:limit]
	}

	var sb strings.Builder
	sb.WriteString(hex.Dump(shown))
	if omitted := len(data) - len(shown); omitted > 0 {
		fmt.Fprintf(&sb, "... %d bytes omitted (%d bytes total)\n", omitted, len(data))
	}
	return sb.String()
}
