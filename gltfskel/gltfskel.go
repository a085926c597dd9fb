// Package gltfskel extracts rig data from glTF 2.0 documents. A skin's
// joint list maps onto the skeleton description and its JOINTS_0 and
// WEIGHTS_0 vertex attributes onto the skin binding, so exports that
// went through glTF can be validated against a Maya scene the same way
// USD layers are.
//
// Bind transforms are the skin's inverse bind matrices read as stored,
// which is the convention scene-side extraction uses for bind
// pre-matrices. glTF bakes geometry offsets into node transforms, so
// the geometry bind transform is always identity.
package gltfskel

import (
	"fmt"
	"strconv"

	"github.com/qmuntal/gltf"

	rigvalidator "github.com/BrendanBarber/MayaUSD-RigValidator"
)

// ReadSkeleton extracts the skeleton of the skin identified by skinRef.
// skinRef is a skin name, a decimal skin index, or empty for a
// document's single skin.
func ReadSkeleton(doc *gltf.Document, skinRef string) (*rigvalidator.Skeleton, error) {
	skin, index, err := findSkin(doc, skinRef)
	if err != nil {
		return nil, err
	}
	return skeletonFromSkin(doc, skin, index)
}

// ReadSkeletonFile is ReadSkeleton on the named .gltf or .glb file.
func ReadSkeletonFile(path, skinRef string) (*rigvalidator.Skeleton, error) {
	doc, err := openDocument(path)
	if err != nil {
		return nil, err
	}
	return ReadSkeleton(doc, skinRef)
}

// ReadSkinBinding extracts the binding of the mesh skinned to the skin
// identified by skinRef. meshRef selects among several skinned meshes
// by node name; empty meshRef requires exactly one.
func ReadSkinBinding(doc *gltf.Document, skinRef, meshRef string) (*rigvalidator.SkinBinding, error) {
	skin, index, err := findSkin(doc, skinRef)
	if err != nil {
		return nil, err
	}
	return bindingFromSkin(doc, skin, index, meshRef)
}

// ReadSkinBindingFile is ReadSkinBinding on the named file.
func ReadSkinBindingFile(path, skinRef, meshRef string) (*rigvalidator.SkinBinding, error) {
	doc, err := openDocument(path)
	if err != nil {
		return nil, err
	}
	return ReadSkinBinding(doc, skinRef, meshRef)
}

// Skins returns a label for every skin in the document, the skin's name
// when it has one.
func Skins(doc *gltf.Document) []string {
	labels := make([]string, len(doc.Skins))
	for i, skin := range doc.Skins {
		labels[i] = skinLabel(skin, i)
	}
	return labels
}

// SkinsFile is Skins on the named file.
func SkinsFile(path string) ([]string, error) {
	doc, err := openDocument(path)
	if err != nil {
		return nil, err
	}
	return Skins(doc), nil
}

func openDocument(path string) (*gltf.Document, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf %q: %w: %v", path, rigvalidator.ErrBadSource, err)
	}
	return doc, nil
}

func findSkin(doc *gltf.Document, skinRef string) (*gltf.Skin, int, error) {
	if len(doc.Skins) == 0 {
		return nil, 0, notFoundf("document has no skins")
	}
	if skinRef == "" {
		if len(doc.Skins) > 1 {
			return nil, 0, badSourcef("document has %d skins, a skin name is required", len(doc.Skins))
		}
		return doc.Skins[0], 0, nil
	}
	for i, skin := range doc.Skins {
		if skin.Name == skinRef {
			return skin, i, nil
		}
	}
	if n, err := strconv.Atoi(skinRef); err == nil && n >= 0 && n < len(doc.Skins) {
		return doc.Skins[n], n, nil
	}
	return nil, 0, notFoundf("no skin named %q", skinRef)
}

func skinLabel(skin *gltf.Skin, index int) string {
	if skin.Name != "" {
		return skin.Name
	}
	return fmt.Sprintf("skins[%d]", index)
}

func nodeLabel(doc *gltf.Document, index uint32) string {
	if int(index) < len(doc.Nodes) && doc.Nodes[index].Name != "" {
		return doc.Nodes[index].Name
	}
	return fmt.Sprintf("nodes[%d]", index)
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", rigvalidator.ErrNotFound, fmt.Sprintf(format, args...))
}

func badSourcef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", rigvalidator.ErrBadSource, fmt.Sprintf(format, args...))
}
