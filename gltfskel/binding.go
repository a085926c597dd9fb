package gltfskel

import (
	"github.com/qmuntal/gltf"

	rigvalidator "github.com/BrendanBarber/MayaUSD-RigValidator"
)

const (
	attrJoints  = "JOINTS_0"
	attrWeights = "WEIGHTS_0"
)

func bindingFromSkin(doc *gltf.Document, skin *gltf.Skin, skinIndex int, meshRef string) (*rigvalidator.SkinBinding, error) {
	label := skinLabel(skin, skinIndex)

	var candidates []uint32
	for i, n := range doc.Nodes {
		if n.Skin != nil && int(*n.Skin) == skinIndex && n.Mesh != nil {
			candidates = append(candidates, uint32(i))
		}
	}

	var nodeIndex uint32
	switch {
	case meshRef != "":
		found := false
		for _, c := range candidates {
			if doc.Nodes[c].Name == meshRef {
				nodeIndex = c
				found = true
				break
			}
		}
		if !found {
			return nil, notFoundf("no mesh node named %q is skinned to %s", meshRef, label)
		}
	case len(candidates) == 0:
		return nil, notFoundf("no mesh is skinned to %s", label)
	case len(candidates) > 1:
		return nil, badSourcef("%d meshes are skinned to %s, a mesh name is required", len(candidates), label)
	default:
		nodeIndex = candidates[0]
	}

	node := doc.Nodes[nodeIndex]
	geomLabel := nodeLabel(doc, nodeIndex)
	if int(*node.Mesh) >= len(doc.Meshes) {
		return nil, badSourcef("node %s: mesh %d out of range", geomLabel, *node.Mesh)
	}
	mesh := doc.Meshes[*node.Mesh]

	var indices []int32
	var weights []float32
	skinned := false
	for pi, prim := range mesh.Primitives {
		ja, ok := prim.Attributes[attrJoints]
		if !ok {
			continue
		}
		wa, ok := prim.Attributes[attrWeights]
		if !ok {
			return nil, badSourcef("mesh %s primitive %d has %s but no %s", geomLabel, pi, attrJoints, attrWeights)
		}
		skinned = true

		jointQuads, err := readJointQuads(doc, ja)
		if err != nil {
			return nil, err
		}
		weightQuads, err := readWeightQuads(doc, wa)
		if err != nil {
			return nil, err
		}
		if len(jointQuads) != len(weightQuads) {
			return nil, badSourcef("mesh %s primitive %d: %d joint elements but %d weight elements",
				geomLabel, pi, len(jointQuads), len(weightQuads))
		}

		for v := range weightQuads {
			for k := 0; k < 4; k++ {
				w := weightQuads[v][k]
				if w <= rigvalidator.NegligibleWeight {
					continue
				}
				j := jointQuads[v][k]
				if j >= len(skin.Joints) {
					return nil, badSourcef("mesh %s primitive %d: joint index %d out of range (%d joints)",
						geomLabel, pi, j, len(skin.Joints))
				}
				indices = append(indices, int32(j))
				weights = append(weights, w)
			}
		}
	}
	if !skinned {
		return nil, badSourcef("mesh %s has no skinning attributes", geomLabel)
	}

	binding := &rigvalidator.SkinBinding{
		SkeletonPath:      label,
		GeometryPath:      geomLabel,
		JointIndices:      indices,
		JointWeights:      weights,
		GeomBindTransform: rigvalidator.Identity(),
	}
	if err := binding.Check(); err != nil {
		return nil, badSourcef("mesh %s: %v", geomLabel, err)
	}
	return binding, nil
}
