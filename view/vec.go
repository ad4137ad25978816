package view

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec is a point or direction in the 4D space spanned by the plane
// coordinate z = zre + i·zim and the Julia parameter c = cre + i·cim.
type Vec mgl64.Vec4

// V builds a Vec from its components.
func V(zre, zim, cre, cim float64) Vec {
	return Vec{zre, zim, cre, cim}
}

// Add returns v + w.
func (v Vec) Add(w Vec) Vec {
	return Vec(mgl64.Vec4(v).Add(mgl64.Vec4(w)))
}

// Mul returns s·v.
func (v Vec) Mul(s float64) Vec {
	return Vec(mgl64.Vec4(v).Mul(s))
}

// Len is the euclidean norm.
func (v Vec) Len() float64 {
	return mgl64.Vec4(v).Len()
}

// ApproxEqual reports whether every component of v is within threshold of
// the matching component of w. The bound is absolute, so it also holds
// against exact zeros.
func (v Vec) ApproxEqual(w Vec, threshold float64) bool {
	for _, d := range mgl64.Vec4(v).Sub(mgl64.Vec4(w)) {
		if !(math.Abs(d) <= threshold) {
			return false
		}
	}
	return true
}

func (v Vec) finite() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Add is the free-function form of v.Add(w).
func Add(v, w Vec) Vec {
	return v.Add(w)
}

// Mul is the free-function form of v.Mul(s).
func Mul(s float64, v Vec) Vec {
	return v.Mul(s)
}

// Rotate turns the pair (v, w) by angle within the plane they span:
//
//	v' = cos(angle)·v - sin(angle)·w
//	w' = sin(angle)·v + cos(angle)·w
func Rotate(v, w Vec, angle float64) (Vec, Vec) {
	sin, cos := math.Sincos(angle)
	return v.Mul(cos).Add(w.Mul(-sin)), v.Mul(sin).Add(w.Mul(cos))
}

func (v Vec) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", v[0], v[1], v[2], v[3])
}

type vecJSON struct {
	Zre *float64 `json:"zre"`
	Zim *float64 `json:"zim"`
	Cre *float64 `json:"cre"`
	Cim *float64 `json:"cim"`
}

func (v Vec) MarshalJSON() ([]byte, error) {
	return json.Marshal(vecJSON{Zre: &v[0], Zim: &v[1], Cre: &v[2], Cim: &v[3]})
}

// UnmarshalJSON requires all four components. v is only written on success.
func (v *Vec) UnmarshalJSON(data []byte) error {
	var raw vecJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for _, c := range []struct {
		name string
		val  *float64
	}{
		{"zre", raw.Zre},
		{"zim", raw.Zim},
		{"cre", raw.Cre},
		{"cim", raw.Cim},
	} {
		if c.val == nil {
			return fmt.Errorf("missing component %q", c.name)
		}
	}

	*v = Vec{*raw.Zre, *raw.Zim, *raw.Cre, *raw.Cim}
	return nil
}
