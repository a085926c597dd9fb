package maya

import (
	rigvalidator "github.com/BrendanBarber/MayaUSD-RigValidator"
)

// ExtractSkeleton walks the joint hierarchy under root and builds the
// skeleton in pre-order, children in snapshot order. Joint names are
// root-relative paths in the exporter's token form, so they compare
// directly against a USD skeleton's joints. Rest transforms are the
// joints' world matrices brought into the root's space; bind transforms
// come from the skin clusters' bind pre-matrices, identity for joints
// no cluster references.
//
// root is a full DAG path or a unique joint name.
func (s *Scene) ExtractSkeleton(root string) (*rigvalidator.Skeleton, error) {
	rootNode, err := s.resolve(root)
	if err != nil {
		return nil, err
	}
	if rootNode.Type != "joint" {
		return nil, badSourcef("node %s is a %s, not a joint", rootNode.Path, rootNode.Type)
	}
	if rootNode.world.Det() == 0 {
		return nil, badSourcef("root joint %s has a singular world matrix", rootNode.Path)
	}
	rootInv := rootNode.world.Inv()

	skel := &rigvalidator.Skeleton{Path: rootNode.Path}

	type frame struct {
		node   *Node
		parent int32
		token  string
	}
	stack := []frame{{node: rootNode, parent: -1, token: nodeName(rootNode.Path)}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		index := int32(len(skel.JointNames))
		skel.JointNames = append(skel.JointNames, f.token)
		skel.ParentIndices = append(skel.ParentIndices, f.parent)
		skel.BindTransforms = append(skel.BindTransforms, s.bindMatrixFor(f.node.Path))
		skel.RestTransforms = append(skel.RestTransforms, rootInv.Mul4(f.node.world))

		// Reversed push keeps pre-order with children visited in
		// snapshot order.
		children := s.childrenOf[f.node.Path]
		for i := len(children) - 1; i >= 0; i-- {
			child := children[i]
			if child.Type != "joint" {
				continue
			}
			stack = append(stack, frame{
				node:   child,
				parent: index,
				token:  f.token + "/" + nodeName(child.Path),
			})
		}
	}

	if err := skel.Check(); err != nil {
		return nil, badSourcef("skeleton under %s: %v", rootNode.Path, err)
	}
	return skel, nil
}

// bindMatrixFor returns the bind pre-matrix recorded for the joint by
// the first skin cluster that lists it as an influence, or identity when
// no cluster does. Bind data lives on clusters, not joints, so an
// unbound joint has no bind transform of its own.
func (s *Scene) bindMatrixFor(jointPath string) rigvalidator.Matrix4 {
	for _, c := range s.SkinClusters {
		if len(c.bindPre) == 0 {
			continue
		}
		for i, inf := range c.Influences {
			if inf == jointPath {
				return c.bindPre[i]
			}
		}
	}
	return rigvalidator.Identity()
}
