// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"bytes"
	"errors"
	"testing"
)

func TestLimitErrorWriter(t *testing.T) {
	tests := []struct {
		name      string
		limit     int64
		writes    []string
		want      string
		expectErr bool
	}{
		{name: "under limit", limit: 10, writes: []string{"123", "45"}, want: "12345"},
		{name: "at limit", limit: 5, writes: []string{"12345"}, want: "12345"},
		{name: "over limit in one write", limit: 4, writes: []string{"12345"}, want: "1234", expectErr: true},
		{name: "over limit after several writes", limit: 4, writes: []string{"12", "34", "5"}, want: "1234", expectErr: true},
		{name: "empty write at limit", limit: 2, writes: []string{"12", ""}, want: "12"},
		{name: "zero limit", limit: 0, writes: []string{"1"}, want: "", expectErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := limitWriter(&buf, tc.limit)

			var err error
			for _, s := range tc.writes {
				if _, err = w.Write([]byte(s)); err != nil {
					break
				}
			}

			if tc.expectErr != (err != nil) {
				t.Fatalf("expected error: %v, got: %v", tc.expectErr, err)
			}
			if err != nil && !errors.Is(err, ErrMaxExportSizeExceeded) {
				t.Errorf("expected %v, got %v", ErrMaxExportSizeExceeded, err)
			}
			if buf.String() != tc.want {
				t.Errorf("expected %q, got %q", tc.want, buf.String())
			}
		})
	}
}

func TestLimitWriterDisabled(t *testing.T) {
	var buf bytes.Buffer
	if w := limitWriter(&buf, -1); w != &buf {
		t.Errorf("expected the writer to be returned unchanged")
	}
}
