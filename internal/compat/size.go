package compat

import "fmt"

var sizeSymbols = []string{"K", "M", "G", "T", "P", "E", "Z", "Y"}

// HumanReadableSize renders n bytes with one decimal in the largest unit
// that n reaches (1536 -> "1.5K"). Values below 1024, including negatives,
// print as plain integers.
func HumanReadableSize(n int64) string {
	for power := len(sizeSymbols); power >= 1; power-- {
		// 1024^power overflows int64 from Z upward; compare in float64.
		unit := pow1024(power)
		if float64(n) >= unit {
			return fmt.Sprintf("%.1f%s", float64(n)/unit, sizeSymbols[power-1])
		}
	}
	return fmt.Sprintf("%d", n)
}

func pow1024(power int) float64 {
	v := 1.0
	for i := 0; i < power; i++ {
		v *= 1024
	}
	return v
}
