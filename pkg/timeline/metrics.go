package timeline

// FieldAveragePace returns the running average lap time of the whole field at
// every axis point: total elapsed time of all entities divided by their total
// progress. An entity past its MaxValidIndex no longer contributes the axis
// time and its extrapolated progress but its frozen state: the time of its
// last lap and its completed lap count.
//
// series and progress must be index-aligned. A point with no progress at all
// yields 0.
func FieldAveragePace(axis []float64, series []Series, progress []Progress) []float64 {
	field := make([]float64, len(axis))

	for i, t := range axis {
		var elapsed, laps float64

		for j, p := range progress {
			if i > p.MaxValidIndex {
				elapsed += series[j].LastTime()
				laps += float64(series[j].LapCount())

				continue
			}

			if p.Values[i] <= 0 {
				continue
			}

			elapsed += t
			laps += p.Values[i]
		}

		if laps > 0 {
			field[i] = elapsed / laps
		}
	}

	return field
}

// RunningAveragePace returns t / progress for every valid axis point of p.
func RunningAveragePace(axis []float64, p Progress) []float64 {
	pace := make([]float64, p.MaxValidIndex+1)

	for i := range pace {
		pace[i] = safeDiv(axis[i], p.Values[i])
	}

	return pace
}

// DistanceToWinner returns how many laps p trails the nominal winner at every
// valid axis point of p. Negative values mean p is ahead.
func DistanceToWinner(winner, p Progress) []float64 {
	distance := make([]float64, p.MaxValidIndex+1)

	for i := range distance {
		distance[i] = winner.Values[i] - p.Values[i]
	}

	return distance
}

// DistanceToLeader returns how many laps p trails whoever leads at each valid
// axis point of p. The leader is recomputed per point, so the value is never
// negative.
func DistanceToLeader(all []Progress, p Progress) []float64 {
	distance := make([]float64, p.MaxValidIndex+1)

	for i := range distance {
		leader := p.Values[i]

		for _, other := range all {
			leader = max(leader, other.Values[i])
		}

		distance[i] = leader - p.Values[i]
	}

	return distance
}

// RunningAverageDeviation returns the signed difference in seconds between
// the running average pace of p and the field average at every valid point.
func RunningAverageDeviation(axis []float64, p Progress, field []float64) []float64 {
	deviation := make([]float64, p.MaxValidIndex+1)

	for i := range deviation {
		if p.Values[i] <= 0 {
			continue
		}

		deviation[i] = axis[i]/p.Values[i] - field[i]
	}

	return deviation
}

// AxisLabels returns, for every valid axis point of p, the label of the lap
// s is driving at that moment: the lap that ends at or after the axis time.
func AxisLabels(axis []float64, s Series, p Progress, tolerance float64) []string {
	labels := make([]string, p.MaxValidIndex+1)
	if len(s.Labels) == 0 {
		return labels
	}

	lap := 0

	for i := range labels {
		t := axis[i]
		for lap+1 < len(s.Cumulative) && t > s.Cumulative[lap] && !floatsClose(t, s.Cumulative[lap], tolerance) {
			lap++
		}

		labels[i] = s.Labels[lap]
	}

	return labels
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}

	return num / den
}
