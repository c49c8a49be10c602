package common

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Scalar statistics shared across the meter, using gonum where it has the primitive

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// RMS calculates root mean square
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	sumSquares := 0.0
	for _, val := range data {
		sumSquares += val * val
	}

	return math.Sqrt(sumSquares / float64(len(data)))
}

// QuadraticMean calculates the quadratic mean (root mean square of the values
// themselves). Averaging RMS figures must happen here rather than with Mean:
// RMS values are square roots of powers, so the average has to be taken in the
// energy domain.
func QuadraticMean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	squares := make([]float64, len(data))
	for i, val := range data {
		squares[i] = val * val
	}

	return math.Sqrt(stat.Mean(squares, nil))
}

// DecibelAmplitude converts an amplitude ratio to decibels (20*log10)
func DecibelAmplitude(ratio float64) float64 {
	return 20.0 * math.Log10(ratio)
}
