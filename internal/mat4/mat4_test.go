package mat4

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// Row-vector translation by (3,4,5): translation sits in the last row.
var translationRows = [4][4]float64{
	{1, 0, 0, 0},
	{0, 1, 0, 0},
	{0, 0, 1, 0},
	{3, 4, 5, 1},
}

func TestFromRows(t *testing.T) {
	m := FromRows(translationRows)
	want := mgl64.Translate3D(3, 4, 5)
	if m != want {
		t.Errorf("FromRows() = %v, want %v", m, want)
	}
	if got := m.At(0, 3); got != 3 {
		t.Errorf("At(0,3) = %g, want 3", got)
	}

	asymmetric := [4][4]float64{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
		{13, 14, 15, 16},
	}
	m = FromRows(asymmetric)
	// Entry (row 1, col 2) of the transpose is source entry (2, 1).
	if got := m.At(1, 2); got != 10 {
		t.Errorf("At(1,2) = %g, want 10", got)
	}
}

func TestFromFlat(t *testing.T) {
	flat := make([]float64, 0, 16)
	for _, row := range translationRows {
		flat = append(flat, row[:]...)
	}
	m, err := FromFlat(flat)
	if err != nil {
		t.Fatal(err)
	}
	if want := mgl64.Translate3D(3, 4, 5); m != want {
		t.Errorf("FromFlat() = %v, want %v", m, want)
	}
	if m != FromRows(translationRows) {
		t.Error("FromFlat() and FromRows() disagree on the same matrix")
	}

	if _, err := FromFlat(flat[:15]); err == nil {
		t.Error("FromFlat() with 15 values: want error")
	}
	if _, err := FromFlat(nil); err == nil {
		t.Error("FromFlat(nil): want error")
	}
}

func TestFromFlat32(t *testing.T) {
	var vals [16]float32
	ident := mgl64.Ident4()
	for i, v := range ident {
		vals[i] = float32(v)
	}
	if got := FromFlat32(vals); got != ident {
		t.Errorf("FromFlat32() = %v, want identity", got)
	}
}
