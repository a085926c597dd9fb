package rigvalidator

import "github.com/BrendanBarber/MayaUSD-RigValidator/issues"

var emptySkeleton Skeleton

// QuickValidateSkeleton reports whether fileSkel and sceneSkel describe the
// same rig: equal joint counts, names, parent indices, and bind and rest
// transforms within the matrix tolerance. It short-circuits on the first
// disagreement, cheapest checks first; the ordering does not affect the
// result. A nil skeleton compares as empty.
func (v *Validator) QuickValidateSkeleton(fileSkel, sceneSkel *Skeleton) bool {
	if v == nil {
		v = defaultValidator
	}
	if fileSkel == nil {
		fileSkel = &emptySkeleton
	}
	if sceneSkel == nil {
		sceneSkel = &emptySkeleton
	}

	if len(fileSkel.JointNames) != len(sceneSkel.JointNames) {
		return false
	}
	if len(fileSkel.ParentIndices) != len(sceneSkel.ParentIndices) {
		return false
	}
	if len(fileSkel.BindTransforms) != len(sceneSkel.BindTransforms) {
		return false
	}

	for i, name := range fileSkel.JointNames {
		if name != sceneSkel.JointNames[i] {
			return false
		}
	}
	for i, parent := range fileSkel.ParentIndices {
		if parent != sceneSkel.ParentIndices[i] {
			return false
		}
	}

	for i, bind := range fileSkel.BindTransforms {
		if !MatricesMatch(bind, sceneSkel.BindTransforms[i], v.opts.matrixTolerance) {
			return false
		}
	}
	rests := min(len(fileSkel.RestTransforms), len(sceneSkel.RestTransforms))
	for i := 0; i < rests; i++ {
		if !MatricesMatch(fileSkel.RestTransforms[i], sceneSkel.RestTransforms[i], v.opts.matrixTolerance) {
			return false
		}
	}
	return true
}

// DetailedValidateSkeleton itemizes every divergence between the two
// skeletons. A joint count mismatch aborts further comparison immediately,
// positional checks being meaningless once lengths differ, and yields a
// single issue carrying both counts. Otherwise every check runs
// exhaustively in a fixed order: names, parent indices, bind transforms,
// rest transforms, each mismatch appended as an index-tagged issue in
// discovery order.
func (v *Validator) DetailedValidateSkeleton(fileSkel, sceneSkel *Skeleton) issues.List {
	if v == nil {
		v = defaultValidator
	}
	if fileSkel == nil {
		fileSkel = &emptySkeleton
	}
	if sceneSkel == nil {
		sceneSkel = &emptySkeleton
	}

	var list issues.List

	if len(fileSkel.JointNames) != len(sceneSkel.JointNames) {
		list = append(list, issues.Newf(issues.JointCountMismatch,
			"Joint count mismatch: file has %d joints, scene has %d joints",
			len(fileSkel.JointNames), len(sceneSkel.JointNames)))
		return list
	}
	// Secondary array lengths only diverge on malformed input, which the
	// extraction gate rejects. Still a count mismatch, not a panic.
	if len(fileSkel.ParentIndices) != len(sceneSkel.ParentIndices) ||
		len(fileSkel.BindTransforms) != len(sceneSkel.BindTransforms) {
		list = append(list, issues.Newf(issues.JointCountMismatch,
			"Joint array length mismatch: file has %d parent indices and %d bind transforms, scene has %d and %d",
			len(fileSkel.ParentIndices), len(fileSkel.BindTransforms),
			len(sceneSkel.ParentIndices), len(sceneSkel.BindTransforms)))
		return list
	}

	for i, name := range fileSkel.JointNames {
		if name != sceneSkel.JointNames[i] {
			list = append(list, issues.NewAtf(issues.JointNameMismatch, i,
				"Joint %d name mismatch: file='%s', scene='%s'", i, name, sceneSkel.JointNames[i]))
		}
	}

	for i, parent := range fileSkel.ParentIndices {
		if parent != sceneSkel.ParentIndices[i] {
			list = append(list, issues.NewAtf(issues.ParentIndexMismatch, i,
				"Joint %d parent index mismatch: file=%d, scene=%d", i, parent, sceneSkel.ParentIndices[i]))
		}
	}

	for i, bind := range fileSkel.BindTransforms {
		if !MatricesMatch(bind, sceneSkel.BindTransforms[i], v.opts.matrixTolerance) {
			list = append(list, issues.NewAtf(issues.BindTransformMismatch, i,
				"Joint %d (%s) bind transform mismatch", i, jointLabel(sceneSkel, i)))
		}
	}

	rests := min(len(fileSkel.RestTransforms), len(sceneSkel.RestTransforms))
	for i := 0; i < rests; i++ {
		if !MatricesMatch(fileSkel.RestTransforms[i], sceneSkel.RestTransforms[i], v.opts.matrixTolerance) {
			list = append(list, issues.NewAtf(issues.RestTransformMismatch, i,
				"Joint %d (%s) rest transform mismatch", i, jointLabel(sceneSkel, i)))
		}
	}

	return list
}

func jointLabel(s *Skeleton, i int) string {
	if i < len(s.JointNames) {
		return s.JointNames[i]
	}
	return "?"
}
