// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBinaryDump(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		limit int
		want  string
	}{
		{
			name:  "empty",
			data:  nil,
			limit: 1024,
			want:  "",
		},
		{
			name:  "partial line",
			data:  []byte("hi"),
			limit: 1024,
			want:  "00000000  68 69                                             |hi|\n",
		},
		{
			name:  "full line with non printable bytes",
			data:  []byte("ABCDEFGH\x00\x01\x7f\x80 ~xy"),
			limit: 1024,
			want:  "00000000  41 42 43 44 45 46 47 48  00 01 7f 80 20 7e 78 79  |ABCDEFGH.... ~xy|\n",
		},
		{
			name:  "truncated",
			data:  []byte("0123456789abcdefXYZ"),
			limit: 16,
			want: "00000000  30 31 32 33 34 35 36 37  38 39 61 62 63 64 65 66  |0123456789abcdef|\n" +
				"... 3 bytes omitted (19 bytes total)\n",
		},
		{
			name:  "unlimited",
			data:  []byte("0123456789abcdefXYZ"),
			limit: -1,
			want: "00000000  30 31 32 33 34 35 36 37  38 39 61 62 63 64 65 66  |0123456789abcdef|\n" +
				"00000010  58 59 5a                                          |XYZ|\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatBinaryDump(tc.data, tc.limit))
		})
	}
}

func TestFormatBinaryDumpTruncation(t *testing.T) {
	const limit = 1024
	for _, size := range []int{0, 1, 15, 16, 17, limit - 1, limit, limit + 1, 4 * limit} {
		data := bytes.Repeat([]byte{0xAB}, size)
		dump := FormatBinaryDump(data, limit)

		// deterministic
		assert.Equal(t, dump, FormatBinaryDump(data, limit))

		summary := fmt.Sprintf("... %d bytes omitted (%d bytes total)\n", size-limit, size)
		if size > limit {
			assert.True(t, strings.HasSuffix(dump, summary), "size %d: missing summary", size)
			assert.Equal(t, limit/16+1, strings.Count(dump, "\n"))
		} else {
			assert.NotContains(t, dump, "omitted", "size %d: unexpected summary", size)
			assert.Equal(t, (size+15)/16, strings.Count(dump, "\n"))
		}
	}
}
