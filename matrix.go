package rigvalidator

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats/scalar"
)

// Matrix4 is a 4x4 transform matrix, column-major. Extractors convert
// row-major source data (USD matrix4d, Maya worldMatrix) at the boundary so
// every stored transform shares this layout.
type Matrix4 = mgl64.Mat4

const (
	// MatrixTolerance is the default absolute per-entry tolerance for
	// transform comparison.
	MatrixTolerance = 1e-6
	// WeightTolerance is the default absolute tolerance for skin weight
	// comparison.
	WeightTolerance = 1e-5
)

// Identity returns the identity transform.
func Identity() Matrix4 {
	return mgl64.Ident4()
}

// MatricesMatch reports whether every corresponding entry of a and b
// differs by at most tolerance. An entry difference exactly equal to the
// tolerance matches. This is the sole matrix equality primitive; every
// transform comparison routes through it so one tolerance policy applies
// everywhere.
func MatricesMatch(a, b Matrix4, tolerance float64) bool {
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			if !scalar.EqualWithinAbs(a.At(row, col), b.At(row, col), tolerance) {
				return false
			}
		}
	}
	return true
}

func weightsMatch(a, b float32, tolerance float64) bool {
	return scalar.EqualWithinAbs(float64(a), float64(b), tolerance)
}
