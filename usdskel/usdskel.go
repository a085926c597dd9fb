// Package usdskel extracts rig data from USD text layers. It reads
// UsdSkel Skeleton prims into skeleton descriptions and mesh skinning
// primvars into skin bindings, using the same joint ordering and
// transform conventions the exporter authored.
//
// Layers must be USDA text. Binary crate files are rejected with a
// malformed-source error rather than misparsed.
package usdskel

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	rigvalidator "github.com/BrendanBarber/MayaUSD-RigValidator"
	"github.com/BrendanBarber/MayaUSD-RigValidator/internal/usdtext"
)

// ReadSkeleton extracts the skeleton at skelPath from the named layer in
// fsys. An empty skelPath selects the layer's single Skeleton prim and
// fails if the layer has none or several.
func ReadSkeleton(fsys fs.FS, name, skelPath string) (*rigvalidator.Skeleton, error) {
	layer, err := parseLayer(fsys, name)
	if err != nil {
		return nil, err
	}
	return skeletonFromLayer(layer, skelPath)
}

// ReadSkeletonFile is ReadSkeleton reading from the operating system.
func ReadSkeletonFile(path, skelPath string) (*rigvalidator.Skeleton, error) {
	return ReadSkeleton(os.DirFS(filepath.Dir(path)), filepath.Base(path), skelPath)
}

// Skeletons returns the paths of every Skeleton prim in the named layer,
// in document order.
func Skeletons(fsys fs.FS, name string) ([]string, error) {
	layer, err := parseLayer(fsys, name)
	if err != nil {
		return nil, err
	}
	return skeletonPaths(layer), nil
}

// SkeletonsFile is Skeletons reading from the operating system.
func SkeletonsFile(path string) ([]string, error) {
	return Skeletons(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// ReadSkinBinding extracts the skin binding authored on the mesh prim at
// meshPath. An empty meshPath selects the layer's single bound mesh.
func ReadSkinBinding(fsys fs.FS, name, meshPath string) (*rigvalidator.SkinBinding, error) {
	layer, err := parseLayer(fsys, name)
	if err != nil {
		return nil, err
	}
	return bindingFromLayer(layer, meshPath)
}

// ReadSkinBindingFile is ReadSkinBinding reading from the operating system.
func ReadSkinBindingFile(path, meshPath string) (*rigvalidator.SkinBinding, error) {
	return ReadSkinBinding(os.DirFS(filepath.Dir(path)), filepath.Base(path), meshPath)
}

func parseLayer(fsys fs.FS, name string) (*usdtext.Layer, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("usd layer %q: %w", name, err)
	}
	return parseLayerBytes(name, data)
}

func parseLayerBytes(name string, data []byte) (*usdtext.Layer, error) {
	layer, err := usdtext.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("usd layer %q: %w: %v", name, rigvalidator.ErrBadSource, err)
	}
	return layer, nil
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", rigvalidator.ErrNotFound, fmt.Sprintf(format, args...))
}

func badSourcef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", rigvalidator.ErrBadSource, fmt.Sprintf(format, args...))
}

func requireValue(prim *usdtext.Prim, name string) (usdtext.Value, error) {
	attr, ok := prim.Attr(name)
	if !ok || !attr.HasValue {
		return usdtext.Value{}, badSourcef("prim %s: missing %s", prim.Path, name)
	}
	return attr.Value, nil
}
