package stats

import (
	"errors"
	"fmt"
	"math"

	moremath "github.com/aclements/go-moremath/stats"
)

// ErrInvalidArgument is returned when Describe is given no values.
var ErrInvalidArgument = errors.New("invalid argument")

// Description holds the descriptive statistics of a sequence of values.
type Description struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Describe computes mean, median, population standard deviation, min and max.
// The input slice is not modified.
func Describe(values []float64) (Description, error) {
	n := len(values)
	if n == 0 {
		return Description{}, fmt.Errorf("%w: no values to describe", ErrInvalidArgument)
	}

	xs := make([]float64, n)
	copy(xs, values)
	samp := moremath.Sample{Xs: xs}
	samp.Sort()
	lo, hi := samp.Bounds()

	// Sample.Variance divides by n-1.
	var stddev float64
	if n > 1 {
		stddev = math.Sqrt(samp.Variance() * float64(n-1) / float64(n))
	}

	return Description{
		Mean:   samp.Mean(),
		Median: samp.Quantile(0.5),
		StdDev: stddev,
		Min:    lo,
		Max:    hi,
	}, nil
}

// Mean computes the arithmetic mean. Returns 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return moremath.Mean(values)
}
