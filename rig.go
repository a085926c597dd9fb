// Package rigvalidator cross-validates a character skeleton and its skin
// binding as represented in two independently produced sources, a USD
// file's skeletal schema and a Maya scene, to detect divergence introduced
// by export/import round-trips.
//
// Extraction packages (usdskel, gltfskel, maya) materialize one Skeleton
// and one SkinBinding per source; the validators here compare the pair
// either as a quick pass/fail check or as a detailed, bounded issue list.
package rigvalidator

import "fmt"

// NegligibleWeight is the influence threshold at or below which extractors
// drop a per-vertex joint-weight sample. Both file and scene extractors
// apply it so the two sequences stay positionally comparable.
const NegligibleWeight = 1e-4

// Skeleton is the canonical ordered joint hierarchy from one source.
// Joint names are skeleton-relative paths; parent indices reference earlier
// positions, -1 marking a root. Built once per validation run, immutable
// thereafter.
type Skeleton struct {
	Path           string
	JointNames     []string
	ParentIndices  []int32
	BindTransforms []Matrix4
	RestTransforms []Matrix4
}

// JointCount returns the number of joints.
func (s *Skeleton) JointCount() int {
	if s == nil {
		return 0
	}
	return len(s.JointNames)
}

// Check verifies the structural invariants: all per-joint arrays share the
// joint count, and every nonnegative parent index references a strictly
// earlier position. Extractors call it before handing a skeleton to a
// validator, so validators never see a malformed structure.
func (s *Skeleton) Check() error {
	if s == nil {
		return fmt.Errorf("skeleton: nil")
	}
	n := len(s.JointNames)
	if len(s.ParentIndices) != n || len(s.BindTransforms) != n || len(s.RestTransforms) != n {
		return fmt.Errorf("skeleton %q: inconsistent array lengths: %d names, %d parents, %d binds, %d rests",
			s.Path, n, len(s.ParentIndices), len(s.BindTransforms), len(s.RestTransforms))
	}
	for i, parent := range s.ParentIndices {
		if parent < -1 {
			return fmt.Errorf("skeleton %q: joint %d parent index %d out of range", s.Path, i, parent)
		}
		if parent >= 0 && int(parent) >= i {
			return fmt.Errorf("skeleton %q: joint %d parent index %d does not reference an earlier joint", s.Path, i, parent)
		}
	}
	return nil
}

// SkinBinding is the canonical vertex-to-joint influence mapping from one
// source: a flat sequence of (joint index, weight) pairs in vertex-major,
// influence-ascending order, plus the bound geometry's bind-time transform.
type SkinBinding struct {
	SkeletonPath      string
	GeometryPath      string
	JointIndices      []int32
	JointWeights      []float32
	GeomBindTransform Matrix4
}

// SampleCount returns the number of joint-weight samples.
func (b *SkinBinding) SampleCount() int {
	if b == nil {
		return 0
	}
	return len(b.JointIndices)
}

// Check verifies the structural invariants: index and weight sequences
// share a length and every joint index is nonnegative.
func (b *SkinBinding) Check() error {
	if b == nil {
		return fmt.Errorf("skin binding: nil")
	}
	if len(b.JointIndices) != len(b.JointWeights) {
		return fmt.Errorf("skin binding %q: %d joint indices but %d weights",
			b.GeometryPath, len(b.JointIndices), len(b.JointWeights))
	}
	for i, idx := range b.JointIndices {
		if idx < 0 {
			return fmt.Errorf("skin binding %q: sample %d has negative joint index %d", b.GeometryPath, i, idx)
		}
	}
	return nil
}
