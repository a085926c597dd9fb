package gltfskel

import (
	"encoding/binary"
	"math"

	"github.com/qmuntal/gltf"

	rigvalidator "github.com/BrendanBarber/MayaUSD-RigValidator"
	"github.com/BrendanBarber/MayaUSD-RigValidator/internal/mat4"
)

// accessorView is a bounds-checked window over an accessor's buffer
// bytes. Interleaved buffer views are handled through the stride.
type accessorView struct {
	data     []byte
	stride   int
	elemSize int
	count    int
}

func (v accessorView) elem(i int) []byte {
	off := i * v.stride
	return v.data[off : off+v.elemSize]
}

func componentSize(t gltf.ComponentType) int {
	switch t {
	case gltf.ComponentByte, gltf.ComponentUbyte:
		return 1
	case gltf.ComponentShort, gltf.ComponentUshort:
		return 2
	case gltf.ComponentFloat, gltf.ComponentUint:
		return 4
	default:
		return 0
	}
}

func componentsPerElem(t gltf.AccessorType) int {
	switch t {
	case gltf.AccessorScalar:
		return 1
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	case gltf.AccessorVec4:
		return 4
	case gltf.AccessorMat4:
		return 16
	default:
		return 0
	}
}

// view resolves an accessor index down to raw bytes, validating every
// index and length on the way. Sparse or viewless accessors are not
// produced by the exporters this reads, so they are rejected.
func view(doc *gltf.Document, index uint32) (accessorView, *gltf.Accessor, error) {
	if int(index) >= len(doc.Accessors) {
		return accessorView{}, nil, badSourcef("accessor %d out of range (%d accessors)", index, len(doc.Accessors))
	}
	acc := doc.Accessors[index]
	if acc.BufferView == nil {
		return accessorView{}, nil, badSourcef("accessor %d has no buffer view", index)
	}
	if int(*acc.BufferView) >= len(doc.BufferViews) {
		return accessorView{}, nil, badSourcef("accessor %d: buffer view %d out of range", index, *acc.BufferView)
	}
	bv := doc.BufferViews[*acc.BufferView]
	if int(bv.Buffer) >= len(doc.Buffers) {
		return accessorView{}, nil, badSourcef("accessor %d: buffer %d out of range", index, bv.Buffer)
	}
	buf := doc.Buffers[bv.Buffer]
	if int(bv.ByteOffset)+int(bv.ByteLength) > len(buf.Data) {
		return accessorView{}, nil, badSourcef("accessor %d: buffer view exceeds buffer data (%d+%d > %d)",
			index, bv.ByteOffset, bv.ByteLength, len(buf.Data))
	}

	elemSize := componentSize(acc.ComponentType) * componentsPerElem(acc.Type)
	if elemSize == 0 {
		return accessorView{}, nil, badSourcef("accessor %d: unsupported component or element type", index)
	}
	stride := int(bv.ByteStride)
	if stride == 0 {
		stride = elemSize
	}

	data := buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	if int(acc.ByteOffset) > len(data) {
		return accessorView{}, nil, badSourcef("accessor %d: byte offset exceeds buffer view", index)
	}
	data = data[acc.ByteOffset:]
	count := int(acc.Count)
	if count > 0 {
		need := (count-1)*stride + elemSize
		if need > len(data) {
			return accessorView{}, nil, badSourcef("accessor %d: %d elements exceed buffer view (%d > %d bytes)",
				index, count, need, len(data))
		}
	}
	return accessorView{data: data, stride: stride, elemSize: elemSize, count: count}, acc, nil
}

func f32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

// readMatrices decodes a MAT4 float accessor, one column-major matrix
// per element.
func readMatrices(doc *gltf.Document, index uint32) ([]rigvalidator.Matrix4, error) {
	v, acc, err := view(doc, index)
	if err != nil {
		return nil, err
	}
	if acc.ComponentType != gltf.ComponentFloat || acc.Type != gltf.AccessorMat4 {
		return nil, badSourcef("accessor %d: expected float MAT4 data", index)
	}
	out := make([]rigvalidator.Matrix4, v.count)
	for i := 0; i < v.count; i++ {
		e := v.elem(i)
		var flat [16]float32
		for k := range flat {
			flat[k] = f32(e[k*4:])
		}
		out[i] = mat4.FromFlat32(flat)
	}
	return out, nil
}

// readJointQuads decodes a JOINTS_0 accessor, four influence indices
// per vertex, stored unsigned byte or short.
func readJointQuads(doc *gltf.Document, index uint32) ([][4]int, error) {
	v, acc, err := view(doc, index)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltf.AccessorVec4 {
		return nil, badSourcef("accessor %d: joints must be VEC4", index)
	}
	out := make([][4]int, v.count)
	for i := 0; i < v.count; i++ {
		e := v.elem(i)
		for k := 0; k < 4; k++ {
			switch acc.ComponentType {
			case gltf.ComponentUbyte:
				out[i][k] = int(e[k])
			case gltf.ComponentUshort:
				out[i][k] = int(binary.LittleEndian.Uint16(e[k*2:]))
			default:
				return nil, badSourcef("accessor %d: joints must be unsigned byte or short", index)
			}
		}
	}
	return out, nil
}

// readWeightQuads decodes a WEIGHTS_0 accessor, four weights per
// vertex: float, or integer data normalized to [0, 1].
func readWeightQuads(doc *gltf.Document, index uint32) ([][4]float32, error) {
	v, acc, err := view(doc, index)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltf.AccessorVec4 {
		return nil, badSourcef("accessor %d: weights must be VEC4", index)
	}
	out := make([][4]float32, v.count)
	for i := 0; i < v.count; i++ {
		e := v.elem(i)
		for k := 0; k < 4; k++ {
			switch acc.ComponentType {
			case gltf.ComponentFloat:
				out[i][k] = f32(e[k*4:])
			case gltf.ComponentUbyte:
				out[i][k] = float32(e[k]) / 255
			case gltf.ComponentUshort:
				out[i][k] = float32(binary.LittleEndian.Uint16(e[k*2:])) / 65535
			default:
				return nil, badSourcef("accessor %d: weights must be float or normalized integer", index)
			}
		}
	}
	return out, nil
}
