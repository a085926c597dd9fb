package rigvalidator

import "fmt"

type float64Option struct {
	value float64
	set   bool
}

func (o float64Option) resolvedOr(def float64) float64 {
	if !o.set {
		return def
	}
	return o.value
}

type intOption struct {
	value int
	set   bool
}

func (o intOption) resolvedOr(def int) int {
	if !o.set {
		return def
	}
	return o.value
}

// Options configures validation tolerances and reporting bounds.
type Options struct {
	matrixTolerance float64Option
	weightTolerance float64Option
	maxReported     intOption
}

// NewOptions returns a default, valid options value.
func NewOptions() Options {
	return Options{}
}

// WithMatrixTolerance sets the absolute per-entry tolerance for transform
// comparison.
func (o Options) WithMatrixTolerance(value float64) Options {
	o.matrixTolerance = float64Option{value: value, set: true}
	return o
}

// WithWeightTolerance sets the absolute tolerance for skin weight
// comparison.
func (o Options) WithWeightTolerance(value float64) Options {
	o.weightTolerance = float64Option{value: value, set: true}
	return o
}

// WithMaxReportedMismatches sets how many individual joint-index or weight
// issues one detailed skin validation reports per stream before summarizing
// the rest.
func (o Options) WithMaxReportedMismatches(value int) Options {
	o.maxReported = intOption{value: value, set: true}
	return o
}

// Validate validates option values.
func (o Options) Validate() error {
	_, err := o.withDefaults()
	return err
}

type resolvedOptions struct {
	matrixTolerance float64
	weightTolerance float64
	maxReported     int
}

func (o Options) withDefaults() (resolvedOptions, error) {
	r := resolvedOptions{
		matrixTolerance: o.matrixTolerance.resolvedOr(MatrixTolerance),
		weightTolerance: o.weightTolerance.resolvedOr(WeightTolerance),
		maxReported:     o.maxReported.resolvedOr(MaxReportedMismatches),
	}
	if r.matrixTolerance < 0 {
		return resolvedOptions{}, fmt.Errorf("matrix tolerance %g: must be nonnegative", r.matrixTolerance)
	}
	if r.weightTolerance < 0 {
		return resolvedOptions{}, fmt.Errorf("weight tolerance %g: must be nonnegative", r.weightTolerance)
	}
	if r.maxReported < 1 {
		return resolvedOptions{}, fmt.Errorf("max reported mismatches %d: must be at least 1", r.maxReported)
	}
	return r, nil
}
