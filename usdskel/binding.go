package usdskel

import (
	rigvalidator "github.com/BrendanBarber/MayaUSD-RigValidator"
	"github.com/BrendanBarber/MayaUSD-RigValidator/internal/mat4"
	"github.com/BrendanBarber/MayaUSD-RigValidator/internal/usdtext"
)

const (
	relSkeleton       = "skel:skeleton"
	attrJointIndices  = "primvars:skel:jointIndices"
	attrJointWeights  = "primvars:skel:jointWeights"
	attrGeomBindXform = "primvars:skel:geomBindTransform"
)

func bindingFromLayer(layer *usdtext.Layer, meshPath string) (*rigvalidator.SkinBinding, error) {
	prim, err := findBoundMesh(layer, meshPath)
	if err != nil {
		return nil, err
	}

	rel, ok := prim.Attr(relSkeleton)
	if !ok || !rel.HasValue {
		return nil, badSourcef("prim %s: missing %s relationship", prim.Path, relSkeleton)
	}
	targets, err := rel.Value.PathList()
	if err != nil {
		return nil, badSourcef("prim %s: %s: %v", prim.Path, relSkeleton, err)
	}
	if len(targets) == 0 {
		return nil, badSourcef("prim %s: empty %s relationship", prim.Path, relSkeleton)
	}

	indicesValue, err := requireValue(prim, attrJointIndices)
	if err != nil {
		return nil, err
	}
	indices, err := indicesValue.IntList()
	if err != nil {
		return nil, badSourcef("prim %s: %s: %v", prim.Path, attrJointIndices, err)
	}

	weightsValue, err := requireValue(prim, attrJointWeights)
	if err != nil {
		return nil, err
	}
	weights, err := weightsValue.FloatList()
	if err != nil {
		return nil, badSourcef("prim %s: %s: %v", prim.Path, attrJointWeights, err)
	}

	if len(indices) != len(weights) {
		return nil, badSourcef("prim %s: %d joint indices but %d weights", prim.Path, len(indices), len(weights))
	}

	geomBind := rigvalidator.Identity()
	if attr, ok := prim.Attr(attrGeomBindXform); ok && attr.HasValue {
		rows, err := attr.Value.Matrix()
		if err != nil {
			return nil, badSourcef("prim %s: %s: %v", prim.Path, attrGeomBindXform, err)
		}
		geomBind = mat4.FromRows(rows)
	}

	// Exporters pad each vertex's influence run with zero-weight
	// entries. Dropping negligible weights here keeps the sequence
	// positionally comparable with scene-side extraction, which applies
	// the same threshold.
	outIndices := make([]int32, 0, len(indices))
	outWeights := make([]float32, 0, len(weights))
	for k, w := range weights {
		if w > rigvalidator.NegligibleWeight {
			outIndices = append(outIndices, int32(indices[k]))
			outWeights = append(outWeights, float32(w))
		}
	}

	binding := &rigvalidator.SkinBinding{
		SkeletonPath:      targets[0],
		GeometryPath:      prim.Path,
		JointIndices:      outIndices,
		JointWeights:      outWeights,
		GeomBindTransform: geomBind,
	}
	if err := binding.Check(); err != nil {
		return nil, badSourcef("prim %s: %v", prim.Path, err)
	}
	return binding, nil
}

func findBoundMesh(layer *usdtext.Layer, meshPath string) (*usdtext.Prim, error) {
	if meshPath != "" {
		prim := layer.Find(meshPath)
		if prim == nil {
			return nil, notFoundf("no prim at %s", meshPath)
		}
		return prim, nil
	}

	var bound []*usdtext.Prim
	layer.Walk(func(p *usdtext.Prim) {
		if attr, ok := p.Attr(relSkeleton); ok && attr.Rel {
			bound = append(bound, p)
		}
	})
	switch len(bound) {
	case 0:
		return nil, notFoundf("layer has no prims bound to a skeleton")
	case 1:
		return bound[0], nil
	default:
		return nil, badSourcef("layer has %d bound prims, a mesh path is required", len(bound))
	}
}
