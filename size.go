// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"math"

	"github.com/dustin/go-humanize"
)

// sizeUnits are the binary prefixed units of FormatSize.
var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatSize returns n as human readable size with binary prefixes and one decimal,
// e.g. "0 B", "512 B", "1.5 KB" or "2 GB". Sizes beyond the gigabyte range are
// reported in GB.
func FormatSize(n int64) string {
	if n <= 0 {
		return "0 B"
	}

	i := 0
	for i < len(sizeUnits)-1 && n >= int64(1)<<(10*(i+1)) {
		i++
	}
	v := math.Round(float64(n)/float64(int64(1)<<(10*i))*10) / 10
	return humanize.FtoaWithDigits(v, 1) + " " + sizeUnits[i]
}
