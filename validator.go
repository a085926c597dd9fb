package rigvalidator

import (
	"fmt"

	"github.com/BrendanBarber/MayaUSD-RigValidator/issues"
)

// Validator compares file-sourced and scene-sourced rig structures under a
// fixed tolerance policy. Validators are stateless after construction and
// safe for concurrent use.
type Validator struct {
	opts resolvedOptions
}

// NewValidator builds a validator, applying defaults for unset options.
func NewValidator(opts ...Options) (*Validator, error) {
	o := NewOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	resolved, err := o.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("validator options: %w", err)
	}
	return &Validator{opts: resolved}, nil
}

var defaultValidator = &Validator{opts: resolvedOptions{
	matrixTolerance: MatrixTolerance,
	weightTolerance: WeightTolerance,
	maxReported:     MaxReportedMismatches,
}}

// QuickValidateSkeleton reports whether the two skeletons describe the same
// rig, using default tolerances.
func QuickValidateSkeleton(fileSkel, sceneSkel *Skeleton) bool {
	return defaultValidator.QuickValidateSkeleton(fileSkel, sceneSkel)
}

// DetailedValidateSkeleton itemizes every skeleton divergence, using
// default tolerances.
func DetailedValidateSkeleton(fileSkel, sceneSkel *Skeleton) issues.List {
	return defaultValidator.DetailedValidateSkeleton(fileSkel, sceneSkel)
}

// QuickValidateSkinBinding reports whether the two skin bindings agree,
// using default tolerances.
func QuickValidateSkinBinding(fileSkin, sceneSkin *SkinBinding) bool {
	return defaultValidator.QuickValidateSkinBinding(fileSkin, sceneSkin)
}

// DetailedValidateSkinBinding itemizes every skin binding divergence, using
// default tolerances.
func DetailedValidateSkinBinding(fileSkin, sceneSkin *SkinBinding) issues.List {
	return defaultValidator.DetailedValidateSkinBinding(fileSkin, sceneSkin)
}
