package usdskel

import (
	"fmt"
	"io/fs"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"

	rigvalidator "github.com/BrendanBarber/MayaUSD-RigValidator"
	"github.com/BrendanBarber/MayaUSD-RigValidator/internal/usdtext"
)

// DefaultCacheSize is the number of parsed layers a Loader retains.
const DefaultCacheSize = 16

// LoaderOptions configure a Loader. The zero value reads from the
// operating system and keeps DefaultCacheSize parsed layers.
type LoaderOptions struct {
	fsys      fs.FS
	cacheSize int
}

// NewLoaderOptions returns options with the defaults.
func NewLoaderOptions() LoaderOptions {
	return LoaderOptions{}
}

// WithFS reads layers from fsys instead of the operating system.
func (o LoaderOptions) WithFS(fsys fs.FS) LoaderOptions {
	o.fsys = fsys
	return o
}

// WithCacheSize bounds the number of parsed layers kept in memory.
func (o LoaderOptions) WithCacheSize(n int) LoaderOptions {
	o.cacheSize = n
	return o
}

// Loader parses each layer once and serves repeated extractions from a
// bounded cache, so validating several skeletons and meshes of one asset
// does not reread the file. Safe for concurrent use.
type Loader struct {
	fsys  fs.FS
	cache *lru.Cache[string, *usdtext.Layer]
}

// NewLoader returns a Loader. Only the first options value is used.
func NewLoader(opts ...LoaderOptions) (*Loader, error) {
	var o LoaderOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	size := o.cacheSize
	if size == 0 {
		size = DefaultCacheSize
	}
	if size < 0 {
		return nil, fmt.Errorf("loader options: cache size must be positive, have %d", size)
	}
	cache, err := lru.New[string, *usdtext.Layer](size)
	if err != nil {
		return nil, fmt.Errorf("loader cache: %w", err)
	}
	return &Loader{fsys: o.fsys, cache: cache}, nil
}

// Skeleton extracts the skeleton at skelPath from the named layer.
func (l *Loader) Skeleton(name, skelPath string) (*rigvalidator.Skeleton, error) {
	layer, err := l.layer(name)
	if err != nil {
		return nil, err
	}
	return skeletonFromLayer(layer, skelPath)
}

// Skeletons returns the Skeleton prim paths of the named layer.
func (l *Loader) Skeletons(name string) ([]string, error) {
	layer, err := l.layer(name)
	if err != nil {
		return nil, err
	}
	return skeletonPaths(layer), nil
}

// SkinBinding extracts the skin binding on the mesh prim at meshPath.
func (l *Loader) SkinBinding(name, meshPath string) (*rigvalidator.SkinBinding, error) {
	layer, err := l.layer(name)
	if err != nil {
		return nil, err
	}
	return bindingFromLayer(layer, meshPath)
}

func (l *Loader) layer(name string) (*usdtext.Layer, error) {
	if layer, ok := l.cache.Get(name); ok {
		return layer, nil
	}
	data, err := l.readFile(name)
	if err != nil {
		return nil, fmt.Errorf("usd layer %q: %w", name, err)
	}
	layer, err := parseLayerBytes(name, data)
	if err != nil {
		return nil, err
	}
	l.cache.Add(name, layer)
	return layer, nil
}

func (l *Loader) readFile(name string) ([]byte, error) {
	if l.fsys != nil {
		return fs.ReadFile(l.fsys, name)
	}
	return os.ReadFile(name)
}
