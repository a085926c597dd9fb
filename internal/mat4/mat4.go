// Package mat4 loads source matrix data into the column-vector mgl64
// representation shared across the validator.
package mat4

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// FromRows builds a matrix from the four rows of a row-vector-convention
// matrix, as USD matrix4d tuples are written. The result is the transpose,
// expressing the same transform in the column-vector convention.
func FromRows(rows [4][4]float64) mgl64.Mat4 {
	var m mgl64.Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			m[col*4+row] = rows[col][row]
		}
	}
	return m
}

// FromFlat builds a matrix from 16 flat values. Row-major data in the
// row-vector convention (Maya matrix attributes) and column-major data in
// the column-vector convention (glTF matrices) share the same flat order,
// so both load with a straight copy and come out column-vector here.
func FromFlat(vals []float64) (mgl64.Mat4, error) {
	var m mgl64.Mat4
	if len(vals) != 16 {
		return m, fmt.Errorf("matrix needs 16 values, got %d", len(vals))
	}
	copy(m[:], vals)
	return m, nil
}

// FromFlat32 builds a matrix from 16 flat float32 values, as decoded from
// glTF accessor data. Same ordering as FromFlat.
func FromFlat32(vals [16]float32) mgl64.Mat4 {
	var m mgl64.Mat4
	for i, v := range vals {
		m[i] = float64(v)
	}
	return m
}
