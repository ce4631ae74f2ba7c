package indicator

import "math"

// Mean is the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// StdDev is the sample standard deviation (n-1 denominator).
// It returns 0 for fewer than two values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	mean := Mean(values)

	sum := 0.0
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}

	return math.Sqrt(sum / float64(len(values)-1))
}

// PopulationStdDev is the population standard deviation (n denominator).
func PopulationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	mean := Mean(values)

	sum := 0.0
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}

	return math.Sqrt(sum / float64(len(values)))
}
