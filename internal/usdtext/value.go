package usdtext

import (
	"fmt"
	"math"
)

// ValueKind discriminates the payload of a Value.
type ValueKind int

const (
	KindNone ValueKind = iota
	KindNumber
	KindString
	KindToken
	KindPath
	KindAsset
	KindTuple
	KindList
)

func (k ValueKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindToken:
		return "token"
	case KindPath:
		return "path"
	case KindAsset:
		return "asset"
	case KindTuple:
		return "tuple"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a parsed attribute payload. Num carries numbers, Str carries
// string, token, path, and asset text, and Items carries tuple and list
// elements.
type Value struct {
	Kind  ValueKind
	Num   float64
	Str   string
	Items []Value
}

// Bool interprets the boolean tokens the text format uses.
func (v Value) Bool() (bool, error) {
	if v.Kind == KindToken {
		switch v.Str {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, fmt.Errorf("expected boolean, have %s", v.Kind)
}

// Float returns the value as a scalar number.
func (v Value) Float() (float64, error) {
	if v.Kind != KindNumber {
		return 0, fmt.Errorf("expected number, have %s", v.Kind)
	}
	return v.Num, nil
}

// Int returns the value as an integral number.
func (v Value) Int() (int64, error) {
	f, err := v.Float()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("expected integer, have %g", f)
	}
	return int64(f), nil
}

// Path returns the target of a path reference value.
func (v Value) Path() (string, error) {
	if v.Kind != KindPath {
		return "", fmt.Errorf("expected path reference, have %s", v.Kind)
	}
	return v.Str, nil
}

// StringList returns the elements of a list of quoted strings. Skeleton
// joint orders are authored this way.
func (v Value) StringList() ([]string, error) {
	if v.Kind != KindList {
		return nil, fmt.Errorf("expected list, have %s", v.Kind)
	}
	out := make([]string, 0, len(v.Items))
	for i, item := range v.Items {
		if item.Kind != KindString && item.Kind != KindToken {
			return nil, fmt.Errorf("list element %d: expected string, have %s", i, item.Kind)
		}
		out = append(out, item.Str)
	}
	return out, nil
}

// IntList returns the elements of a list of integral numbers.
func (v Value) IntList() ([]int64, error) {
	if v.Kind != KindList {
		return nil, fmt.Errorf("expected list, have %s", v.Kind)
	}
	out := make([]int64, 0, len(v.Items))
	for i, item := range v.Items {
		n, err := item.Int()
		if err != nil {
			return nil, fmt.Errorf("list element %d: %w", i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// FloatList returns the elements of a list of numbers.
func (v Value) FloatList() ([]float64, error) {
	if v.Kind != KindList {
		return nil, fmt.Errorf("expected list, have %s", v.Kind)
	}
	out := make([]float64, 0, len(v.Items))
	for i, item := range v.Items {
		f, err := item.Float()
		if err != nil {
			return nil, fmt.Errorf("list element %d: %w", i, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// PathList returns relationship targets, accepting either a single path
// reference or a list of them.
func (v Value) PathList() ([]string, error) {
	if v.Kind == KindPath {
		return []string{v.Str}, nil
	}
	if v.Kind != KindList {
		return nil, fmt.Errorf("expected path reference or list, have %s", v.Kind)
	}
	out := make([]string, 0, len(v.Items))
	for i, item := range v.Items {
		p, err := item.Path()
		if err != nil {
			return nil, fmt.Errorf("list element %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Matrix returns a matrix4d value as rows of four numbers, in the order
// they were authored.
func (v Value) Matrix() ([4][4]float64, error) {
	var rows [4][4]float64
	if v.Kind != KindTuple {
		return rows, fmt.Errorf("expected matrix tuple, have %s", v.Kind)
	}
	if len(v.Items) != 4 {
		return rows, fmt.Errorf("expected 4 matrix rows, have %d", len(v.Items))
	}
	for i, item := range v.Items {
		if item.Kind != KindTuple {
			return rows, fmt.Errorf("matrix row %d: expected tuple, have %s", i, item.Kind)
		}
		if len(item.Items) != 4 {
			return rows, fmt.Errorf("matrix row %d: expected 4 entries, have %d", i, len(item.Items))
		}
		for j, entry := range item.Items {
			f, err := entry.Float()
			if err != nil {
				return rows, fmt.Errorf("matrix entry %d,%d: %w", i, j, err)
			}
			rows[i][j] = f
		}
	}
	return rows, nil
}

// MatrixList returns a matrix4d[] value as a slice of row tuples.
func (v Value) MatrixList() ([][4][4]float64, error) {
	if v.Kind != KindList {
		return nil, fmt.Errorf("expected matrix list, have %s", v.Kind)
	}
	out := make([][4][4]float64, 0, len(v.Items))
	for i, item := range v.Items {
		rows, err := item.Matrix()
		if err != nil {
			return nil, fmt.Errorf("list element %d: %w", i, err)
		}
		out = append(out, rows)
	}
	return out, nil
}
