package rigvalidator

import (
	"math"

	"github.com/BrendanBarber/MayaUSD-RigValidator/issues"
)

// MaxReportedMismatches is the default cap on individually reported
// joint-index or weight issues per stream in one detailed skin validation.
// Skin bindings commonly carry thousands of samples; the cap is a usability
// bound, not a detection limit, since the summary issue preserves the total.
const MaxReportedMismatches = 5

var emptyBinding SkinBinding

// mismatchAccumulator bounds how many individual issues one comparison
// stream contributes while keeping the full mismatch count for the trailing
// summary issue.
type mismatchAccumulator struct {
	code  issues.Code
	what  string
	limit int
	total int
}

func newMismatchAccumulator(code issues.Code, what string, limit int) *mismatchAccumulator {
	return &mismatchAccumulator{code: code, what: what, limit: limit}
}

// observe counts one mismatch and reports whether it should be emitted as
// an individual issue.
func (a *mismatchAccumulator) observe() bool {
	a.total++
	return a.total <= a.limit
}

// appendSummary appends one suppressed-count summary issue when more
// mismatches were observed than the individual cap.
func (a *mismatchAccumulator) appendSummary(list issues.List) issues.List {
	if a.total <= a.limit {
		return list
	}
	return append(list, issues.Newf(a.code,
		"... and %d more %s (showing first %d only)", a.total-a.limit, a.what, a.limit))
}

// QuickValidateSkinBinding reports whether the two skin bindings agree:
// equal sequence lengths, identical joint indices, weights within the
// weight tolerance, and matching geometry bind transforms. It
// short-circuits on the first failure. A nil binding compares as empty.
func (v *Validator) QuickValidateSkinBinding(fileSkin, sceneSkin *SkinBinding) bool {
	if v == nil {
		v = defaultValidator
	}
	if fileSkin == nil {
		fileSkin = &emptyBinding
	}
	if sceneSkin == nil {
		sceneSkin = &emptyBinding
	}

	if len(fileSkin.JointIndices) != len(sceneSkin.JointIndices) {
		return false
	}
	if len(fileSkin.JointWeights) != len(sceneSkin.JointWeights) {
		return false
	}

	for i, idx := range fileSkin.JointIndices {
		if idx != sceneSkin.JointIndices[i] {
			return false
		}
	}
	for i, w := range fileSkin.JointWeights {
		if !weightsMatch(w, sceneSkin.JointWeights[i], v.opts.weightTolerance) {
			return false
		}
	}

	return MatricesMatch(fileSkin.GeomBindTransform, sceneSkin.GeomBindTransform, v.opts.matrixTolerance)
}

// DetailedValidateSkinBinding itemizes every divergence between the two
// skin bindings. A joint-index or weight length mismatch yields a single
// count issue and aborts immediately. Otherwise all positions are scanned:
// the first MaxReportedMismatches index mismatches and the first
// MaxReportedMismatches weight mismatches are reported individually, each
// stream followed by one summary issue encoding how many more were
// suppressed, and finally the geometry bind transforms are compared.
func (v *Validator) DetailedValidateSkinBinding(fileSkin, sceneSkin *SkinBinding) issues.List {
	if v == nil {
		v = defaultValidator
	}
	if fileSkin == nil {
		fileSkin = &emptyBinding
	}
	if sceneSkin == nil {
		sceneSkin = &emptyBinding
	}

	var list issues.List

	if len(fileSkin.JointIndices) != len(sceneSkin.JointIndices) {
		list = append(list, issues.Newf(issues.WeightCountMismatch,
			"Joint indices count mismatch: file has %d, scene has %d",
			len(fileSkin.JointIndices), len(sceneSkin.JointIndices)))
		return list
	}
	if len(fileSkin.JointWeights) != len(sceneSkin.JointWeights) {
		list = append(list, issues.Newf(issues.WeightCountMismatch,
			"Joint weights count mismatch: file has %d, scene has %d",
			len(fileSkin.JointWeights), len(sceneSkin.JointWeights)))
		return list
	}

	indexMismatches := newMismatchAccumulator(issues.JointIndexMismatch, "joint index mismatches", v.opts.maxReported)
	for i, idx := range fileSkin.JointIndices {
		if idx != sceneSkin.JointIndices[i] {
			if indexMismatches.observe() {
				list = append(list, issues.NewAtf(issues.JointIndexMismatch, i,
					"Joint index mismatch at position %d: file=%d, scene=%d", i, idx, sceneSkin.JointIndices[i]))
			}
		}
	}
	list = indexMismatches.appendSummary(list)

	weightMismatches := newMismatchAccumulator(issues.WeightValueMismatch, "weight mismatches", v.opts.maxReported)
	for i, w := range fileSkin.JointWeights {
		scene := sceneSkin.JointWeights[i]
		if !weightsMatch(w, scene, v.opts.weightTolerance) {
			if weightMismatches.observe() {
				diff := math.Abs(float64(w) - float64(scene))
				list = append(list, issues.NewAtf(issues.WeightValueMismatch, i,
					"Weight mismatch at position %d: file=%g, scene=%g (diff=%.6g)", i, w, scene, diff))
			}
		}
	}
	list = weightMismatches.appendSummary(list)

	if !MatricesMatch(fileSkin.GeomBindTransform, sceneSkin.GeomBindTransform, v.opts.matrixTolerance) {
		list = append(list, issues.New(issues.GeomBindTransformMismatch, "Geometry bind transform mismatch"))
	}

	return list
}
