package maya_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	rigvalidator "github.com/BrendanBarber/MayaUSD-RigValidator"
	"github.com/BrendanBarber/MayaUSD-RigValidator/maya"
)

const identity = "[1,0,0,0,0,1,0,0,0,0,1,0,0,0,0,1]"

// rigSnapshot is a small biped fragment: a joint chain under a group,
// one control that is not a joint, a second joint branch, and a skinned
// mesh. World matrices are plain translations so expected rest
// transforms stay exact.
const rigSnapshot = `{
  "nodes": [
    {"path": "|grp", "type": "transform", "worldMatrix": ` + identity + `},
    {"path": "|grp|pelvis", "type": "joint", "worldMatrix": [1,0,0,0,0,1,0,0,0,0,1,0,0,10,0,1]},
    {"path": "|grp|pelvis|spine", "type": "joint", "worldMatrix": [1,0,0,0,0,1,0,0,0,0,1,0,0,15,0,1]},
    {"path": "|grp|pelvis|spine|chest", "type": "joint", "worldMatrix": [1,0,0,0,0,1,0,0,0,0,1,0,0,20,0,1]},
    {"path": "|grp|pelvis|spine|chest|head", "type": "joint", "worldMatrix": [1,0,0,0,0,1,0,0,0,0,1,0,0,25,0,1]},
    {"path": "|grp|pelvis|tail_ctrl", "type": "transform", "worldMatrix": ` + identity + `},
    {"path": "|grp|pelvis|hip_l", "type": "joint", "worldMatrix": [1,0,0,0,0,1,0,0,0,0,1,0,2,10,0,1]},
    {"path": "|grp|body", "type": "mesh", "worldMatrix": ` + identity + `}
  ],
  "skinClusters": [
    {
      "name": "skinCluster1",
      "geometry": "|grp|body",
      "influences": ["|grp|pelvis", "|grp|pelvis|spine", "|grp|pelvis|spine|chest"],
      "bindPreMatrix": [
        [1,0,0,0,0,1,0,0,0,0,1,0,0,-10,0,1],
        [1,0,0,0,0,1,0,0,0,0,1,0,0,-15,0,1],
        [1,0,0,0,0,1,0,0,0,0,1,0,0,-20,0,1]
      ],
      "geomMatrix": [1,0,0,0,0,1,0,0,0,0,1,0,1,2,3,1],
      "vertexCount": 2,
      "weights": [0.6, 0.4, 0, 0, 0.00005, 0.99995]
    }
  ]
}`

func loadRig(t *testing.T) *maya.Scene {
	t.Helper()
	scene, err := maya.LoadSnapshot(strings.NewReader(rigSnapshot))
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	return scene
}

func TestLoadSnapshot(t *testing.T) {
	scene := loadRig(t)

	if len(scene.Nodes) != 8 {
		t.Fatalf("nodes = %d, want 8", len(scene.Nodes))
	}
	node, ok := scene.Node("|grp|pelvis|spine")
	if !ok {
		t.Fatal("Node(|grp|pelvis|spine) missing")
	}
	if node.Type != "joint" {
		t.Errorf("type = %q, want joint", node.Type)
	}
	if _, ok := scene.Node("|grp|nothing"); ok {
		t.Error("Node(|grp|nothing) found")
	}
}

func TestLoadSnapshotFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rig.json")
	if err := os.WriteFile(path, []byte(rigSnapshot), 0o644); err != nil {
		t.Fatal(err)
	}

	scene, err := maya.LoadSnapshotFile(path)
	if err != nil {
		t.Fatalf("LoadSnapshotFile: %v", err)
	}
	if len(scene.SkinClusters) != 1 {
		t.Fatalf("skin clusters = %d, want 1", len(scene.SkinClusters))
	}

	if _, err := maya.LoadSnapshotFile(filepath.Join(dir, "absent.json")); err == nil {
		t.Fatal("loading a missing file succeeded")
	}
}

func TestLoadSnapshotRejectsBadStructure(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "truncated json",
			src:  `{"nodes": [`,
			want: "snapshot",
		},
		{
			name: "relative path",
			src:  `{"nodes": [{"path": "grp", "type": "transform", "worldMatrix": ` + identity + `}]}`,
			want: "not a full DAG path",
		},
		{
			name: "empty segment",
			src:  `{"nodes": [{"path": "|grp||x", "type": "transform", "worldMatrix": ` + identity + `}]}`,
			want: "empty segment",
		},
		{
			name: "duplicate path",
			src: `{"nodes": [
				{"path": "|a", "type": "joint", "worldMatrix": ` + identity + `},
				{"path": "|a", "type": "joint", "worldMatrix": ` + identity + `}]}`,
			want: "duplicate node path",
		},
		{
			name: "missing parent",
			src:  `{"nodes": [{"path": "|a|b", "type": "joint", "worldMatrix": ` + identity + `}]}`,
			want: "parent |a is not in the snapshot",
		},
		{
			name: "short world matrix",
			src:  `{"nodes": [{"path": "|a", "type": "joint", "worldMatrix": [1, 0, 0]}]}`,
			want: "world matrix",
		},
		{
			name: "cluster geometry unknown",
			src: `{"nodes": [{"path": "|a", "type": "joint", "worldMatrix": ` + identity + `}],
				"skinClusters": [{"name": "sc", "geometry": "|gone", "influences": [], "vertexCount": 0, "weights": []}]}`,
			want: "geometry |gone is not in the snapshot",
		},
		{
			name: "cluster influence unknown",
			src: `{"nodes": [{"path": "|m", "type": "mesh", "worldMatrix": ` + identity + `}],
				"skinClusters": [{"name": "sc", "geometry": "|m", "influences": ["|gone"], "vertexCount": 0, "weights": []}]}`,
			want: "influence |gone is not in the snapshot",
		},
		{
			name: "bind pre-matrix count",
			src: `{"nodes": [
				{"path": "|m", "type": "mesh", "worldMatrix": ` + identity + `},
				{"path": "|j", "type": "joint", "worldMatrix": ` + identity + `}],
				"skinClusters": [{"name": "sc", "geometry": "|m", "influences": ["|j"],
					"bindPreMatrix": [` + identity + `, ` + identity + `],
					"vertexCount": 0, "weights": []}]}`,
			want: "2 bind pre-matrices for 1 influences",
		},
		{
			name: "geom matrix length",
			src: `{"nodes": [{"path": "|m", "type": "mesh", "worldMatrix": ` + identity + `}],
				"skinClusters": [{"name": "sc", "geometry": "|m", "influences": [],
					"geomMatrix": [1, 2, 3], "vertexCount": 0, "weights": []}]}`,
			want: "geom matrix",
		},
		{
			name: "weight table size",
			src: `{"nodes": [
				{"path": "|m", "type": "mesh", "worldMatrix": ` + identity + `},
				{"path": "|j", "type": "joint", "worldMatrix": ` + identity + `}],
				"skinClusters": [{"name": "sc", "geometry": "|m", "influences": ["|j"],
					"vertexCount": 2, "weights": [1]}]}`,
			want: "1 weights for 2 vertices with 1 influences",
		},
		{
			name: "negative vertex count",
			src: `{"nodes": [{"path": "|m", "type": "mesh", "worldMatrix": ` + identity + `}],
				"skinClusters": [{"name": "sc", "geometry": "|m", "influences": [],
					"vertexCount": -1, "weights": []}]}`,
			want: "negative vertex count",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := maya.LoadSnapshot(strings.NewReader(tc.src))
			if !errors.Is(err, rigvalidator.ErrBadSource) {
				t.Fatalf("error = %v, want ErrBadSource", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error = %q, want substring %q", err, tc.want)
			}
		})
	}
}
