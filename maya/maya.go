// Package maya extracts rig data from a Maya scene snapshot. A snapshot
// is a JSON document an in-scene exporter script writes: the DAG nodes
// of interest with their world matrices, plus each skin cluster's
// influences, bind pre-matrices, and dense per-vertex weights. Working
// from a snapshot keeps extraction deterministic and testable without a
// running Maya session.
//
// DAG paths use Maya's pipe separator, for example |rig|pelvis|spine.
package maya

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	rigvalidator "github.com/BrendanBarber/MayaUSD-RigValidator"
	"github.com/BrendanBarber/MayaUSD-RigValidator/internal/mat4"
)

// Node is one DAG node of the snapshot. WorldMatrix holds 16 values in
// Maya's flat row-major order.
type Node struct {
	Path        string    `json:"path"`
	Type        string    `json:"type"`
	WorldMatrix []float64 `json:"worldMatrix"`

	world rigvalidator.Matrix4
}

// SkinCluster is one skin cluster of the snapshot. Influences are joint
// DAG paths in logical-index order. BindPreMatrix, when present, carries
// one 16-value matrix per influence. Weights is the dense vertex-major
// weight table, VertexCount rows of one weight per influence.
type SkinCluster struct {
	Name          string      `json:"name"`
	Geometry      string      `json:"geometry"`
	Influences    []string    `json:"influences"`
	BindPreMatrix [][]float64 `json:"bindPreMatrix,omitempty"`
	GeomMatrix    []float64   `json:"geomMatrix,omitempty"`
	VertexCount   int         `json:"vertexCount"`
	Weights       []float64   `json:"weights"`

	bindPre []rigvalidator.Matrix4
	geom    rigvalidator.Matrix4
}

// Scene is a loaded snapshot. Obtain one through LoadSnapshot; the
// loader verifies the structure and builds the lookup indexes the
// extraction methods rely on.
type Scene struct {
	Nodes        []*Node        `json:"nodes"`
	SkinClusters []*SkinCluster `json:"skinClusters"`

	byPath        map[string]*Node
	childrenOf    map[string][]*Node
	clusterByGeom map[string]*SkinCluster
}

// LoadSnapshot decodes and verifies a snapshot.
func LoadSnapshot(r io.Reader) (*Scene, error) {
	var scene Scene
	dec := json.NewDecoder(r)
	if err := dec.Decode(&scene); err != nil {
		return nil, badSourcef("snapshot: %v", err)
	}
	if err := scene.index(); err != nil {
		return nil, err
	}
	return &scene, nil
}

// LoadSnapshotFile is LoadSnapshot reading the named file.
func LoadSnapshotFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", path, err)
	}
	defer f.Close()
	scene, err := LoadSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", path, err)
	}
	return scene, nil
}

// Node returns the node at the given DAG path.
func (s *Scene) Node(path string) (*Node, bool) {
	n, ok := s.byPath[path]
	return n, ok
}

// index verifies the snapshot structure and builds the path and
// geometry lookups. Every reference a later extraction follows is
// resolved here, so extractions only fail on rig-level problems.
func (s *Scene) index() error {
	s.byPath = make(map[string]*Node, len(s.Nodes))
	s.childrenOf = make(map[string][]*Node)
	s.clusterByGeom = make(map[string]*SkinCluster, len(s.SkinClusters))

	for _, n := range s.Nodes {
		if err := checkPath(n.Path); err != nil {
			return err
		}
		if _, dup := s.byPath[n.Path]; dup {
			return badSourcef("duplicate node path %s", n.Path)
		}
		world, err := mat4.FromFlat(n.WorldMatrix)
		if err != nil {
			return badSourcef("node %s: world matrix: %v", n.Path, err)
		}
		n.world = world
		s.byPath[n.Path] = n
	}
	for _, n := range s.Nodes {
		parent := parentPath(n.Path)
		if parent != "" {
			if _, ok := s.byPath[parent]; !ok {
				return badSourcef("node %s: parent %s is not in the snapshot", n.Path, parent)
			}
		}
		s.childrenOf[parent] = append(s.childrenOf[parent], n)
	}

	for _, c := range s.SkinClusters {
		if err := s.checkCluster(c); err != nil {
			return err
		}
		if _, dup := s.clusterByGeom[c.Geometry]; dup {
			return badSourcef("skin cluster %q: geometry %s already has a cluster", c.Name, c.Geometry)
		}
		s.clusterByGeom[c.Geometry] = c
	}
	return nil
}

func (s *Scene) checkCluster(c *SkinCluster) error {
	if _, ok := s.byPath[c.Geometry]; !ok {
		return badSourcef("skin cluster %q: geometry %s is not in the snapshot", c.Name, c.Geometry)
	}
	for _, inf := range c.Influences {
		if _, ok := s.byPath[inf]; !ok {
			return badSourcef("skin cluster %q: influence %s is not in the snapshot", c.Name, inf)
		}
	}
	if c.BindPreMatrix != nil && len(c.BindPreMatrix) != len(c.Influences) {
		return badSourcef("skin cluster %q: %d bind pre-matrices for %d influences",
			c.Name, len(c.BindPreMatrix), len(c.Influences))
	}
	c.bindPre = make([]rigvalidator.Matrix4, len(c.BindPreMatrix))
	for i, flat := range c.BindPreMatrix {
		m, err := mat4.FromFlat(flat)
		if err != nil {
			return badSourcef("skin cluster %q: bind pre-matrix %d: %v", c.Name, i, err)
		}
		c.bindPre[i] = m
	}
	c.geom = rigvalidator.Identity()
	if c.GeomMatrix != nil {
		m, err := mat4.FromFlat(c.GeomMatrix)
		if err != nil {
			return badSourcef("skin cluster %q: geom matrix: %v", c.Name, err)
		}
		c.geom = m
	}
	if c.VertexCount < 0 {
		return badSourcef("skin cluster %q: negative vertex count %d", c.Name, c.VertexCount)
	}
	if want := c.VertexCount * len(c.Influences); len(c.Weights) != want {
		return badSourcef("skin cluster %q: %d weights for %d vertices with %d influences",
			c.Name, len(c.Weights), c.VertexCount, len(c.Influences))
	}
	return nil
}

// resolve accepts either a full DAG path or a node's short name. A short
// name must be unique in the snapshot.
func (s *Scene) resolve(ref string) (*Node, error) {
	if ref == "" {
		return nil, notFoundf("empty node reference")
	}
	if strings.HasPrefix(ref, "|") {
		n, ok := s.byPath[ref]
		if !ok {
			return nil, notFoundf("no node at path %s", ref)
		}
		return n, nil
	}

	var found *Node
	matches := 0
	for _, n := range s.Nodes {
		if nodeName(n.Path) == ref {
			found = n
			matches++
		}
	}
	switch matches {
	case 0:
		return nil, notFoundf("no node named %q", ref)
	case 1:
		return found, nil
	default:
		return nil, badSourcef("name %q matches %d nodes, a full path is required", ref, matches)
	}
}

func checkPath(path string) error {
	if !strings.HasPrefix(path, "|") {
		return badSourcef("node path %q is not a full DAG path", path)
	}
	for _, segment := range strings.Split(path[1:], "|") {
		if segment == "" {
			return badSourcef("node path %q has an empty segment", path)
		}
	}
	return nil
}

func nodeName(path string) string {
	return path[strings.LastIndexByte(path, '|')+1:]
}

func parentPath(path string) string {
	i := strings.LastIndexByte(path, '|')
	if i <= 0 {
		return ""
	}
	return path[:i]
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", rigvalidator.ErrNotFound, fmt.Sprintf(format, args...))
}

func badSourcef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", rigvalidator.ErrBadSource, fmt.Sprintf(format, args...))
}
