package timeline

import "math"

// maxSyntheticPoints bounds the index space of an Extension so point counts
// stay representable for any pace ratio.
const maxSyntheticPoints = 1 << 30

// Extension is a series prefixed with 0 and continued past its last real lap
// at the entity's final average pace until it reaches the global maximum.
// Synthetic points are computed on demand, so memory is proportional to the
// real lap count whatever the ratio between the entity's pace and the race
// length.
//
// Points are strictly increasing and At(Len()-1) >= globalMax unless the
// pace is so small that the maxSyntheticPoints bound applies.
type Extension struct {
	known []float64 // 0 followed by the real cumulative times.
	pace  float64
	size  int
}

// Extend builds the extension of s up to globalMax. At least one synthetic
// point is always appended, so the entity holding the global maximum (or the
// only entity of a race) still has a bracketing pair for its own last lap.
func Extend(s Series, globalMax float64) Extension {
	known := make([]float64, 0, len(s.Cumulative)+1)
	known = append(known, 0)
	known = append(known, s.Cumulative...)

	ext := Extension{known: known, pace: s.FinalPace(), size: len(known)}
	if ext.pace <= 0 {
		return ext
	}

	last := known[len(known)-1]
	steps := max(math.Ceil((globalMax-last)/ext.pace), 1)

	if steps >= maxSyntheticPoints || math.IsNaN(steps) {
		ext.size += maxSyntheticPoints

		return ext
	}

	ext.size += int(steps)

	// Guard against the product landing just below globalMax after rounding.
	if ext.At(ext.size-1) < globalMax {
		ext.size++
	}

	return ext
}

// Len returns the number of points, synthetic ones included.
func (e Extension) Len() int {
	return e.size
}

// At returns point k. Points past the last real lap are last + n·pace.
func (e Extension) At(k int) float64 {
	last := len(e.known) - 1
	if k <= last {
		return e.known[k]
	}

	return e.known[last] + float64(k-last)*e.pace
}

// Bracket returns the first segment index k >= from whose upper point
// At(k+1) is >= t, or the last segment when t lies past the end. Real laps
// are scanned; the synthetic part is solved directly.
func (e Extension) Bracket(t float64, from int) int {
	k := from
	last := len(e.known) - 1

	for k+1 <= last && k+2 < e.size && e.known[k+1] < t {
		k++
	}

	if k+1 <= last || k+2 >= e.size || e.At(k+1) >= t {
		return k
	}

	steps := math.Ceil((t - e.known[last]) / e.pace)
	upper := e.size - 1

	if steps < float64(upper-last) {
		upper = max(last+int(steps), k+1)
	}

	for upper < e.size-1 && e.At(upper) < t {
		upper++
	}

	for upper > k+1 && e.At(upper-1) >= t {
		upper--
	}

	return upper - 1
}
