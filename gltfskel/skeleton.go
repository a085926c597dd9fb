package gltfskel

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"

	rigvalidator "github.com/BrendanBarber/MayaUSD-RigValidator"
)

var identityFlat = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// localMatrix composes a node's local transform. glTF stores flat
// matrices column-major, the same layout mgl64 uses. Hand-built nodes
// may leave rotation or scale zero; those normalize to identity.
func localMatrix(n *gltf.Node) mgl64.Mat4 {
	if n.Matrix != ([16]float64{}) && n.Matrix != identityFlat {
		return mgl64.Mat4(n.Matrix)
	}
	rot := n.Rotation
	if rot == ([4]float64{}) {
		rot = [4]float64{0, 0, 0, 1}
	}
	scale := n.Scale
	if scale == ([3]float64{}) {
		scale = [3]float64{1, 1, 1}
	}
	q := mgl64.Quat{W: rot[3], V: mgl64.Vec3{rot[0], rot[1], rot[2]}}.Normalize()
	m := mgl64.Translate3D(n.Translation[0], n.Translation[1], n.Translation[2])
	m = m.Mul4(q.Mat4())
	return m.Mul4(mgl64.Scale3D(scale[0], scale[1], scale[2]))
}

// transformCache resolves global node transforms over the parent links
// implied by the children arrays. Construction rejects nodes with
// several parents and cyclic hierarchies, so resolution cannot loop.
type transformCache struct {
	doc     *gltf.Document
	parents map[uint32]uint32
	memo    map[uint32]mgl64.Mat4
}

func newTransformCache(doc *gltf.Document) (*transformCache, error) {
	parents := make(map[uint32]uint32)
	for i, n := range doc.Nodes {
		for _, child := range n.Children {
			if int(child) >= len(doc.Nodes) {
				return nil, badSourcef("node %d lists child %d out of range", i, child)
			}
			if _, seen := parents[child]; seen {
				return nil, badSourcef("node %d has multiple parents", child)
			}
			parents[child] = uint32(i)
		}
	}
	for i := range doc.Nodes {
		steps := 0
		for n := uint32(i); ; steps++ {
			parent, ok := parents[n]
			if !ok {
				break
			}
			if steps > len(doc.Nodes) {
				return nil, badSourcef("node hierarchy contains a cycle at node %d", i)
			}
			n = parent
		}
	}
	return &transformCache{
		doc:     doc,
		parents: parents,
		memo:    make(map[uint32]mgl64.Mat4),
	}, nil
}

func (c *transformCache) global(node uint32) mgl64.Mat4 {
	if m, ok := c.memo[node]; ok {
		return m
	}
	m := localMatrix(c.doc.Nodes[node])
	if parent, ok := c.parents[node]; ok {
		m = c.global(parent).Mul4(m)
	}
	c.memo[node] = m
	return m
}

func skeletonFromSkin(doc *gltf.Document, skin *gltf.Skin, skinIndex int) (*rigvalidator.Skeleton, error) {
	label := skinLabel(skin, skinIndex)
	if len(skin.Joints) == 0 {
		return nil, badSourcef("skin %s has no joints", label)
	}
	cache, err := newTransformCache(doc)
	if err != nil {
		return nil, err
	}

	jointPos := make(map[uint32]int32, len(skin.Joints))
	for i, node := range skin.Joints {
		if int(node) >= len(doc.Nodes) {
			return nil, badSourcef("skin %s: joint node %d out of range", label, node)
		}
		if _, dup := jointPos[node]; dup {
			return nil, badSourcef("skin %s: node %d appears twice in joints", label, node)
		}
		jointPos[node] = int32(i)
	}

	// A joint's parent is the nearest ancestor node that is itself in
	// the joint list; intermediate grouping nodes are looked through.
	parentPos := make([]int32, len(skin.Joints))
	for i, node := range skin.Joints {
		parentPos[i] = -1
		for n := node; ; {
			parent, ok := cache.parents[n]
			if !ok {
				break
			}
			if pos, isJoint := jointPos[parent]; isJoint {
				parentPos[i] = pos
				break
			}
			n = parent
		}
		if parentPos[i] >= int32(i) {
			return nil, badSourcef("skin %s: joints are not ordered parents first (joint %d)", label, i)
		}
	}

	names := make([]string, len(skin.Joints))
	for i, node := range skin.Joints {
		name := nodeLabel(doc, node)
		if p := parentPos[i]; p >= 0 {
			names[i] = names[p] + "/" + name
		} else {
			names[i] = name
		}
	}

	// Rest transforms are relative to the skin's skeleton node when it
	// declares one, else to the single root joint.
	var rootNode uint32
	if skin.Skeleton != nil {
		if int(*skin.Skeleton) >= len(doc.Nodes) {
			return nil, badSourcef("skin %s: skeleton node %d out of range", label, *skin.Skeleton)
		}
		rootNode = *skin.Skeleton
	} else {
		roots := 0
		for i := range skin.Joints {
			if parentPos[i] == -1 {
				if roots == 0 {
					rootNode = skin.Joints[i]
				}
				roots++
			}
		}
		if roots != 1 {
			return nil, badSourcef("skin %s: %d root joints and no skeleton node", label, roots)
		}
	}
	rootGlobal := cache.global(rootNode)
	if rootGlobal.Det() == 0 {
		return nil, badSourcef("skin %s: root node %s has a singular transform", label, nodeLabel(doc, rootNode))
	}
	rootInv := rootGlobal.Inv()

	rests := make([]rigvalidator.Matrix4, len(skin.Joints))
	for i, node := range skin.Joints {
		rests[i] = rootInv.Mul4(cache.global(node))
	}

	binds := make([]rigvalidator.Matrix4, len(skin.Joints))
	if skin.InverseBindMatrices != nil {
		ibms, err := readMatrices(doc, *skin.InverseBindMatrices)
		if err != nil {
			return nil, err
		}
		if len(ibms) < len(skin.Joints) {
			return nil, badSourcef("skin %s: %d inverse bind matrices for %d joints", label, len(ibms), len(skin.Joints))
		}
		copy(binds, ibms[:len(skin.Joints)])
	} else {
		for i := range binds {
			binds[i] = rigvalidator.Identity()
		}
	}

	skel := &rigvalidator.Skeleton{
		Path:           label,
		JointNames:     names,
		ParentIndices:  parentPos,
		BindTransforms: binds,
		RestTransforms: rests,
	}
	if err := skel.Check(); err != nil {
		return nil, badSourcef("skin %s: %v", label, err)
	}
	return skel, nil
}
