package usdskel_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl64"

	rigvalidator "github.com/BrendanBarber/MayaUSD-RigValidator"
	"github.com/BrendanBarber/MayaUSD-RigValidator/usdskel"
)

const bodyLayer = `#usda 1.0
(
    defaultPrim = "Figure"
    upAxis = "Y"
)

def SkelRoot "Figure"
{
    def Skeleton "Rig"
    {
        uniform token[] joints = ["pelvis", "pelvis/spine", "pelvis/spine/chest/neck"]
        uniform matrix4d[] bindTransforms = [
            ( (1, 0, 0, 0), (0, 1, 0, 0), (0, 0, 1, 0), (0, 0, 0, 1) ),
            ( (1, 0, 0, 0), (0, 1, 0, 0), (0, 0, 1, 0), (1, 0, 0, 1) ),
            ( (1, 0, 0, 0), (0, 1, 0, 0), (0, 0, 1, 0), (2, 0, 0, 1) ),
        ]
        uniform matrix4d[] restTransforms = [
            ( (1, 0, 0, 0), (0, 1, 0, 0), (0, 0, 1, 0), (0, 0, 0, 1) ),
            ( (1, 0, 0, 0), (0, 1, 0, 0), (0, 0, 1, 0), (0, 1, 0, 1) ),
            ( (1, 0, 0, 0), (0, 1, 0, 0), (0, 0, 1, 0), (0, 2, 0, 1) ),
        ]
    }

    def Mesh "Body"
    {
        rel skel:skeleton = </Figure/Rig>
        int[] primvars:skel:jointIndices = [0, 1, 2, 0, 1, 0] (
            elementSize = 2
        )
        float[] primvars:skel:jointWeights = [0.6, 0.4, 1, 0, 0.7, 0.3] (
            elementSize = 2
        )
        matrix4d primvars:skel:geomBindTransform = ( (1, 0, 0, 0), (0, 1, 0, 0), (0, 0, 1, 0), (5, 0, 0, 1) )
    }
}
`

func layerFS(src string) fstest.MapFS {
	return fstest.MapFS{
		"rig.usda": &fstest.MapFile{Data: []byte(src)},
	}
}

func TestReadSkeleton(t *testing.T) {
	skel, err := usdskel.ReadSkeleton(layerFS(bodyLayer), "rig.usda", "/Figure/Rig")
	if err != nil {
		t.Fatalf("ReadSkeleton: %v", err)
	}

	if skel.Path != "/Figure/Rig" {
		t.Errorf("Path = %q", skel.Path)
	}
	wantNames := []string{"pelvis", "pelvis/spine", "pelvis/spine/chest/neck"}
	if len(skel.JointNames) != len(wantNames) {
		t.Fatalf("JointNames = %v", skel.JointNames)
	}
	for i := range wantNames {
		if skel.JointNames[i] != wantNames[i] {
			t.Errorf("JointNames[%d] = %q, want %q", i, skel.JointNames[i], wantNames[i])
		}
	}

	// The chest joint is not in the list, so the neck's parent resolves
	// to the nearest listed ancestor, the spine.
	wantParents := []int32{-1, 0, 1}
	for i := range wantParents {
		if skel.ParentIndices[i] != wantParents[i] {
			t.Errorf("ParentIndices[%d] = %d, want %d", i, skel.ParentIndices[i], wantParents[i])
		}
	}

	for i := 0; i < 3; i++ {
		if want := mgl64.Translate3D(float64(i), 0, 0); skel.BindTransforms[i] != want {
			t.Errorf("BindTransforms[%d] = %v", i, skel.BindTransforms[i])
		}
		if want := mgl64.Translate3D(0, float64(i), 0); skel.RestTransforms[i] != want {
			t.Errorf("RestTransforms[%d] = %v", i, skel.RestTransforms[i])
		}
	}
}

func TestReadSkeletonDiscovery(t *testing.T) {
	t.Run("single skeleton needs no path", func(t *testing.T) {
		skel, err := usdskel.ReadSkeleton(layerFS(bodyLayer), "rig.usda", "")
		if err != nil {
			t.Fatalf("ReadSkeleton: %v", err)
		}
		if skel.Path != "/Figure/Rig" {
			t.Errorf("Path = %q", skel.Path)
		}
	})

	t.Run("no skeletons", func(t *testing.T) {
		src := "#usda 1.0\ndef Xform \"Empty\" {}\n"
		_, err := usdskel.ReadSkeleton(layerFS(src), "rig.usda", "")
		if !errors.Is(err, rigvalidator.ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("several skeletons", func(t *testing.T) {
		src := `#usda 1.0
def Skeleton "A" { uniform token[] joints = [] uniform matrix4d[] bindTransforms = [] uniform matrix4d[] restTransforms = [] }
def Skeleton "B" { uniform token[] joints = [] uniform matrix4d[] bindTransforms = [] uniform matrix4d[] restTransforms = [] }
`
		_, err := usdskel.ReadSkeleton(layerFS(src), "rig.usda", "")
		if err == nil || !strings.Contains(err.Error(), "skeleton path is required") {
			t.Fatalf("error = %v", err)
		}

		paths, err := usdskel.Skeletons(layerFS(src), "rig.usda")
		if err != nil {
			t.Fatalf("Skeletons: %v", err)
		}
		if len(paths) != 2 || paths[0] != "/A" || paths[1] != "/B" {
			t.Fatalf("Skeletons = %v", paths)
		}
	})

	t.Run("path misses", func(t *testing.T) {
		_, err := usdskel.ReadSkeleton(layerFS(bodyLayer), "rig.usda", "/Figure/Gone")
		if !errors.Is(err, rigvalidator.ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("path names a mesh", func(t *testing.T) {
		_, err := usdskel.ReadSkeleton(layerFS(bodyLayer), "rig.usda", "/Figure/Body")
		if !errors.Is(err, rigvalidator.ErrBadSource) {
			t.Fatalf("error = %v, want ErrBadSource", err)
		}
	})
}

func TestReadSkeletonBadLayers(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing joints",
			src: `#usda 1.0
def Skeleton "S" {
    uniform matrix4d[] bindTransforms = []
    uniform matrix4d[] restTransforms = []
}
`,
			want: "missing joints",
		},
		{
			name: "transform count differs",
			src: `#usda 1.0
def Skeleton "S" {
    uniform token[] joints = ["a", "b"]
    uniform matrix4d[] bindTransforms = [ ( (1,0,0,0), (0,1,0,0), (0,0,1,0), (0,0,0,1) ) ]
    uniform matrix4d[] restTransforms = [ ( (1,0,0,0), (0,1,0,0), (0,0,1,0), (0,0,0,1) ) ]
}
`,
			want: "2 joints but 1 bind transforms",
		},
		{
			name: "duplicate joint path",
			src: `#usda 1.0
def Skeleton "S" {
    uniform token[] joints = ["a", "a"]
    uniform matrix4d[] bindTransforms = [
        ( (1,0,0,0), (0,1,0,0), (0,0,1,0), (0,0,0,1) ),
        ( (1,0,0,0), (0,1,0,0), (0,0,1,0), (0,0,0,1) ),
    ]
    uniform matrix4d[] restTransforms = [
        ( (1,0,0,0), (0,1,0,0), (0,0,1,0), (0,0,0,1) ),
        ( (1,0,0,0), (0,1,0,0), (0,0,1,0), (0,0,0,1) ),
    ]
}
`,
			want: "duplicate joint path",
		},
		{
			name: "crate file",
			src:  "PXR-USDC\x00",
			want: "missing #usda header",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := usdskel.ReadSkeleton(layerFS(tc.src), "rig.usda", "")
			if !errors.Is(err, rigvalidator.ErrBadSource) {
				t.Fatalf("error = %v, want ErrBadSource", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error = %q, want substring %q", err, tc.want)
			}
		})
	}
}

func TestReadSkinBinding(t *testing.T) {
	binding, err := usdskel.ReadSkinBinding(layerFS(bodyLayer), "rig.usda", "/Figure/Body")
	if err != nil {
		t.Fatalf("ReadSkinBinding: %v", err)
	}

	if binding.SkeletonPath != "/Figure/Rig" {
		t.Errorf("SkeletonPath = %q", binding.SkeletonPath)
	}
	if binding.GeometryPath != "/Figure/Body" {
		t.Errorf("GeometryPath = %q", binding.GeometryPath)
	}

	// The zero-weight padding pair is dropped.
	wantIndices := []int32{0, 1, 2, 1, 0}
	wantWeights := []float32{0.6, 0.4, 1, 0.7, 0.3}
	if binding.SampleCount() != len(wantIndices) {
		t.Fatalf("SampleCount = %d, want %d", binding.SampleCount(), len(wantIndices))
	}
	for i := range wantIndices {
		if binding.JointIndices[i] != wantIndices[i] {
			t.Errorf("JointIndices[%d] = %d, want %d", i, binding.JointIndices[i], wantIndices[i])
		}
		if binding.JointWeights[i] != wantWeights[i] {
			t.Errorf("JointWeights[%d] = %g, want %g", i, binding.JointWeights[i], wantWeights[i])
		}
	}

	if want := mgl64.Translate3D(5, 0, 0); binding.GeomBindTransform != want {
		t.Errorf("GeomBindTransform = %v", binding.GeomBindTransform)
	}
}

func TestReadSkinBindingDefaults(t *testing.T) {
	src := `#usda 1.0
def Mesh "M" {
    rel skel:skeleton = </Skel>
    int[] primvars:skel:jointIndices = [0]
    float[] primvars:skel:jointWeights = [1]
}
`
	binding, err := usdskel.ReadSkinBinding(layerFS(src), "rig.usda", "")
	if err != nil {
		t.Fatalf("ReadSkinBinding: %v", err)
	}
	if binding.GeomBindTransform != rigvalidator.Identity() {
		t.Errorf("GeomBindTransform = %v, want identity", binding.GeomBindTransform)
	}
}

func TestReadSkinBindingErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing relationship",
			src: `#usda 1.0
def Mesh "M" {
    int[] primvars:skel:jointIndices = [0]
    float[] primvars:skel:jointWeights = [1]
}
`,
			want: "no prims bound",
		},
		{
			name: "count mismatch",
			src: `#usda 1.0
def Mesh "M" {
    rel skel:skeleton = </Skel>
    int[] primvars:skel:jointIndices = [0, 1]
    float[] primvars:skel:jointWeights = [1]
}
`,
			want: "2 joint indices but 1 weights",
		},
		{
			name: "negative joint index",
			src: `#usda 1.0
def Mesh "M" {
    rel skel:skeleton = </Skel>
    int[] primvars:skel:jointIndices = [-2]
    float[] primvars:skel:jointWeights = [1]
}
`,
			want: "negative",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := usdskel.ReadSkinBinding(layerFS(tc.src), "rig.usda", "")
			if err == nil {
				t.Fatal("no error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error = %q, want substring %q", err, tc.want)
			}
		})
	}
}

func TestReadSkeletonFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rig.usda")
	if err := os.WriteFile(path, []byte(bodyLayer), 0o644); err != nil {
		t.Fatal(err)
	}

	skel, err := usdskel.ReadSkeletonFile(path, "")
	if err != nil {
		t.Fatalf("ReadSkeletonFile: %v", err)
	}
	if skel.JointCount() != 3 {
		t.Fatalf("JointCount = %d, want 3", skel.JointCount())
	}

	binding, err := usdskel.ReadSkinBindingFile(path, "")
	if err != nil {
		t.Fatalf("ReadSkinBindingFile: %v", err)
	}
	if binding.SkeletonPath != skel.Path {
		t.Errorf("binding targets %q, skeleton at %q", binding.SkeletonPath, skel.Path)
	}
}
