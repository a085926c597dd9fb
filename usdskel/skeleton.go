package usdskel

import (
	"strings"

	rigvalidator "github.com/BrendanBarber/MayaUSD-RigValidator"
	"github.com/BrendanBarber/MayaUSD-RigValidator/internal/mat4"
	"github.com/BrendanBarber/MayaUSD-RigValidator/internal/usdtext"
)

func skeletonFromLayer(layer *usdtext.Layer, skelPath string) (*rigvalidator.Skeleton, error) {
	prim, err := findSkeletonPrim(layer, skelPath)
	if err != nil {
		return nil, err
	}

	jointsValue, err := requireValue(prim, "joints")
	if err != nil {
		return nil, err
	}
	joints, err := jointsValue.StringList()
	if err != nil {
		return nil, badSourcef("prim %s: joints: %v", prim.Path, err)
	}

	binds, err := matrixListAttr(prim, "bindTransforms")
	if err != nil {
		return nil, err
	}
	rests, err := matrixListAttr(prim, "restTransforms")
	if err != nil {
		return nil, err
	}
	if len(binds) != len(joints) {
		return nil, badSourcef("prim %s: %d joints but %d bind transforms", prim.Path, len(joints), len(binds))
	}
	if len(rests) != len(joints) {
		return nil, badSourcef("prim %s: %d joints but %d rest transforms", prim.Path, len(joints), len(rests))
	}

	parents, err := parentIndices(prim.Path, joints)
	if err != nil {
		return nil, err
	}

	skel := &rigvalidator.Skeleton{
		Path:           prim.Path,
		JointNames:     joints,
		ParentIndices:  parents,
		BindTransforms: binds,
		RestTransforms: rests,
	}
	if err := skel.Check(); err != nil {
		return nil, badSourcef("prim %s: %v", prim.Path, err)
	}
	return skel, nil
}

func findSkeletonPrim(layer *usdtext.Layer, skelPath string) (*usdtext.Prim, error) {
	if skelPath != "" {
		prim := layer.Find(skelPath)
		if prim == nil {
			return nil, notFoundf("no prim at %s", skelPath)
		}
		if prim.TypeName != "Skeleton" {
			return nil, badSourcef("prim %s is a %s, not a Skeleton", skelPath, prim.TypeName)
		}
		return prim, nil
	}

	prims := layer.ByType("Skeleton")
	switch len(prims) {
	case 0:
		return nil, notFoundf("layer has no Skeleton prims")
	case 1:
		return prims[0], nil
	default:
		return nil, badSourcef("layer has %d Skeleton prims, a skeleton path is required", len(prims))
	}
}

func skeletonPaths(layer *usdtext.Layer) []string {
	prims := layer.ByType("Skeleton")
	paths := make([]string, len(prims))
	for i, prim := range prims {
		paths[i] = prim.Path
	}
	return paths
}

func matrixListAttr(prim *usdtext.Prim, name string) ([]rigvalidator.Matrix4, error) {
	value, err := requireValue(prim, name)
	if err != nil {
		return nil, err
	}
	rows, err := value.MatrixList()
	if err != nil {
		return nil, badSourcef("prim %s: %s: %v", prim.Path, name, err)
	}
	matrices := make([]rigvalidator.Matrix4, len(rows))
	for i, r := range rows {
		matrices[i] = mat4.FromRows(r)
	}
	return matrices, nil
}

// parentIndices derives the topology the joints attribute encodes in its
// paths: each joint's parent is its nearest ancestor path present in the
// list, or -1 for roots. Joints are authored parents first, which
// Skeleton.Check enforces afterwards.
func parentIndices(primPath string, joints []string) ([]int32, error) {
	index := make(map[string]int32, len(joints))
	for i, path := range joints {
		if _, dup := index[path]; dup {
			return nil, badSourcef("prim %s: duplicate joint path %q", primPath, path)
		}
		index[path] = int32(i)
	}

	parents := make([]int32, len(joints))
	for i, path := range joints {
		parents[i] = -1
		for anc := parentPath(path); anc != ""; anc = parentPath(anc) {
			if j, ok := index[anc]; ok {
				parents[i] = j
				break
			}
		}
	}
	return parents, nil
}

func parentPath(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return ""
	}
	return path[:i]
}
