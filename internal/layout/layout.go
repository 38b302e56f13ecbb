// Package layout generates the arrangement of virtual strings across the stage.
package layout

import "strconv"

// Range selects the octave register the strings are tuned to.
type Range string

const (
	RangeLow  Range = "low"
	RangeMid  Range = "mid"
	RangeHigh Range = "high"
)

// StringCounts is the set of supported string counts.
var StringCounts = []int{6, 12, 24}

// scale is the 7-tone scale pitches cycle through, ascending by octave.
var scale = [7]string{"C", "D", "E", "F", "G", "A", "B"}

// palette cycles alongside the scale so octave-equivalent strings share a color.
var palette = [7]string{
	"#ef476f",
	"#f78c6b",
	"#ffd166",
	"#06d6a0",
	"#118ab2",
	"#6a4c93",
	"#b5179e",
}

// String describes one virtual string. Descriptors are immutable; the set is
// regenerated whenever string count or pitch range changes.
type String struct {
	ID    int     `json:"id"`
	Pitch string  `json:"pitch"`
	Color string  `json:"color"`
	XPos  float64 `json:"xPos"`
}

// ValidCount reports whether n is a supported string count.
func ValidCount(n int) bool {
	for _, c := range StringCounts {
		if c == n {
			return true
		}
	}
	return false
}

// ValidRange reports whether r is a supported pitch range.
func ValidRange(r Range) bool {
	switch r {
	case RangeLow, RangeMid, RangeHigh:
		return true
	}
	return false
}

// octaveBase returns the starting octave for a pitch range.
func octaveBase(r Range) int {
	switch r {
	case RangeLow:
		return 2
	case RangeHigh:
		return 4
	default:
		return 3
	}
}

// Generate produces count string descriptors for the given pitch range.
// Strings are evenly distributed along the horizontal axis: the i-th of N
// sits at (i+1)/(N+1), so XPos is strictly increasing and stays inside (0,1).
// Identical inputs always produce identical output.
func Generate(count int, r Range) []String {
	if count <= 0 {
		return nil
	}

	base := octaveBase(r)
	strings := make([]String, count)
	for i := 0; i < count; i++ {
		strings[i] = String{
			ID:    i,
			Pitch: scale[i%len(scale)] + strconv.Itoa(base+i/len(scale)),
			Color: palette[i%len(palette)],
			XPos:  float64(i+1) / float64(count+1),
		}
	}
	return strings
}
