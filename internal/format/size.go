// Package format renders byte counts and counts of things for display.
package format

import (
	"math"

	"github.com/dustin/go-humanize"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// Size converts a byte count into a 1024-based string with at most two
// decimals, e.g. 1024 -> "1 KB", 1536 -> "1.5 KB". GB is the largest unit.
func Size(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}

	value = math.Round(value*100) / 100
	return humanize.FtoaWithDigits(value, 2) + " " + sizeUnits[unit]
}

// Bytes is the compact IEC form used in log lines and transfer summaries.
func Bytes(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}
