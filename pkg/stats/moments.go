package stats

import (
	"math"
	"slices"
)

// MeanStdDev computes the population mean and standard deviation of the
// given values. Returns (0, 0) for empty input.
func MeanStdDev(values []float64) (mean, stddev float64) {
	count := len(values)
	if count == 0 {
		return 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	mean = sum / float64(count)

	var variance float64

	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}

	return mean, math.Sqrt(variance / float64(count))
}

// SampleStdDev returns the sample (n-1) standard deviation of values.
// Fewer than two values have no spread and yield 0.
func SampleStdDev(values []float64) float64 {
	count := len(values)
	if count < 2 {
		return 0
	}

	mean, _ := MeanStdDev(values)

	var sum float64

	for _, v := range values {
		diff := v - mean
		sum += diff * diff
	}

	return math.Sqrt(sum / float64(count-1))
}

// TrimmedMean averages the fastest round((1-fraction)*n) values, dropping the
// slowest ones as outliers. At least one value is always kept.
func TrimmedMean(values []float64, fraction float64) float64 {
	if len(values) == 0 {
		return 0
	}

	keep := max(1, int(math.Round((1-fraction)*float64(len(values)))))
	sorted := slices.Sorted(slices.Values(values))
	mean, _ := MeanStdDev(sorted[:keep])

	return mean
}
