// Package forward computes per-timeframe forward-return statistics over a
// list of matches against a price series.
package forward

import "fmt"

// Timeframe pairs a human label with a trading-day offset.
type Timeframe struct {
	Label  string
	Offset int
}

// DefaultTimeframes is the standard 11-timeframe ladder from 1 trading day
// out to roughly one year.
func DefaultTimeframes() []Timeframe {
	return []Timeframe{
		{"1D", 1},
		{"2D", 2},
		{"3D", 3},
		{"1W", 5},
		{"2W", 10},
		{"1M", 21},
		{"2M", 42},
		{"3M", 63},
		{"6M", 126},
		{"9M", 189},
		{"12M", 252},
	}
}

// offsetLabels maps day offsets to display labels. Some offsets map to the
// same label (20 and 21, 40 and 42); both entries are kept intentionally so
// callers using either convention get the expected label.
var offsetLabels = map[int]string{
	1:   "1D",
	2:   "2D",
	3:   "3D",
	5:   "1W",
	10:  "2W",
	20:  "1M",
	21:  "1M",
	40:  "2M",
	42:  "2M",
	63:  "3M",
	126: "6M",
	189: "9M",
	252: "12M",
}

// LabelForOffset resolves a trading-day offset to its display label,
// falling back to a literal day count for unmapped offsets.
func LabelForOffset(offset int) string {
	if label, ok := offsetLabels[offset]; ok {
		return label
	}
	return fmt.Sprintf("%dD", offset)
}
