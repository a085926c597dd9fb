package maya

import (
	"errors"
	"strings"

	rigvalidator "github.com/BrendanBarber/MayaUSD-RigValidator"
)

// ExtractSkinBinding reads the skin cluster driving the given mesh and
// flattens its dense weight table into the sparse vertex-major sample
// sequence, dropping negligible weights the same way file-side
// extraction does. Joint indices are positions in the cluster's
// influence list. The skeleton path is the influences' deepest common
// DAG ancestor.
//
// mesh is a full DAG path or a unique node name.
func (s *Scene) ExtractSkinBinding(mesh string) (*rigvalidator.SkinBinding, error) {
	meshNode, err := s.resolve(mesh)
	if err != nil {
		return nil, err
	}
	cluster, ok := s.clusterByGeom[meshNode.Path]
	if !ok {
		return nil, notFoundf("no skin cluster drives %s", meshNode.Path)
	}

	skelPath, err := commonRoot(cluster.Influences)
	if err != nil {
		return nil, badSourcef("skin cluster %q: %v", cluster.Name, err)
	}

	influences := len(cluster.Influences)
	indices := make([]int32, 0, len(cluster.Weights))
	weights := make([]float32, 0, len(cluster.Weights))
	for v := 0; v < cluster.VertexCount; v++ {
		row := cluster.Weights[v*influences : (v+1)*influences]
		for j, w := range row {
			if w > rigvalidator.NegligibleWeight {
				indices = append(indices, int32(j))
				weights = append(weights, float32(w))
			}
		}
	}

	binding := &rigvalidator.SkinBinding{
		SkeletonPath:      skelPath,
		GeometryPath:      meshNode.Path,
		JointIndices:      indices,
		JointWeights:      weights,
		GeomBindTransform: cluster.geom,
	}
	if err := binding.Check(); err != nil {
		return nil, badSourcef("skin cluster %q: %v", cluster.Name, err)
	}
	return binding, nil
}

// commonRoot returns the deepest DAG path that prefixes every influence
// path, trimming segments off the first influence until all agree.
func commonRoot(influences []string) (string, error) {
	if len(influences) == 0 {
		return "", nil
	}
	prefix := strings.Split(influences[0][1:], "|")
	for _, inf := range influences[1:] {
		segments := strings.Split(inf[1:], "|")
		for !prefixMatches(prefix, segments) {
			prefix = prefix[:len(prefix)-1]
			if len(prefix) == 0 {
				return "", errors.New("influences share no common root")
			}
		}
	}
	return "|" + strings.Join(prefix, "|"), nil
}

func prefixMatches(prefix, segments []string) bool {
	if len(segments) < len(prefix) {
		return false
	}
	for i := range prefix {
		if segments[i] != prefix[i] {
			return false
		}
	}
	return true
}
