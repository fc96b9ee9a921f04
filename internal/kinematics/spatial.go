package kinematics

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// SE3 is a rigid placement: rotation R and translation T.
type SE3 struct {
	R mgl64.Mat3
	T mgl64.Vec3
}

func Identity() SE3 {
	return SE3{R: mgl64.Ident3()}
}

func (m SE3) Inverse() SE3 {
	rt := m.R.Transpose()
	return SE3{R: rt, T: rt.Mul3x1(m.T).Mul(-1)}
}

// ActionMatrix returns the 6x6 matrix that maps a spatial motion expressed in
// the frame of m into the base frame:
//
//	[ R   skew(T)R ]
//	[ 0       R    ]
//
// Rows and columns are ordered linear-first, matching Motion.
func (m SE3) ActionMatrix() *mat.Dense {
	a := mat.NewDense(6, 6, nil)
	tr := Skew(m.T).Mul3(m.R)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			a.Set(i, j, m.R.At(i, j))
			a.Set(i, j+3, tr.At(i, j))
			a.Set(i+3, j+3, m.R.At(i, j))
		}
	}
	return a
}

// Motion is a spatial velocity or acceleration, linear part first.
type Motion struct {
	Lin mgl64.Vec3
	Ang mgl64.Vec3
}

// Force is a spatial force: linear force and moment.
type Force struct {
	Lin mgl64.Vec3
	Ang mgl64.Vec3
}

// Skew returns the cross-product matrix of v, so Skew(v).Mul3x1(w) == v x w.
func Skew(v mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3FromCols(
		mgl64.Vec3{0, v[2], -v[1]},
		mgl64.Vec3{-v[2], 0, v[0]},
		mgl64.Vec3{v[1], -v[0], 0},
	)
}

// MulMat3 computes R*M for a 3-row matrix M with any number of columns.
func MulMat3(r mgl64.Mat3, m mat.Matrix) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(3, c, nil)
	for j := 0; j < c; j++ {
		for i := 0; i < 3; i++ {
			s := 0.0
			for k := 0; k < 3; k++ {
				s += r.At(i, k) * m.At(k, j)
			}
			out.Set(i, j, s)
		}
	}
	return out
}

// TopRows3 and BottomRows3 slice the linear and angular blocks of a 6-row
// spatial matrix without copying.
func TopRows3(m *mat.Dense) mat.Matrix {
	_, c := m.Dims()
	return m.Slice(0, 3, 0, c)
}

func BottomRows3(m *mat.Dense) mat.Matrix {
	_, c := m.Dims()
	return m.Slice(3, 6, 0, c)
}
