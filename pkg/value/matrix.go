package value

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Transform 矩阵分解后的缩放、旋转、平移
type Transform struct {
	Scaling     mgl64.Vec3
	Rotation    Quaternion
	Translation mgl64.Vec3
}

// DecomposeMatrix 将矩阵分解为缩放、旋转、平移
//
// 行列式为负时 Y 轴缩放取负号，ComposeMatrix 可以还原同一矩阵。
// 任一轴缩放为 0 时无法求出旋转，返回 ok=false，旋转为单位四元数。
func DecomposeMatrix(m Matrix) (t Transform, ok bool) {
	mm := mgl64.Mat4(m)
	t.Translation = mgl64.Vec3{mm[12], mm[13], mm[14]}

	c0 := mgl64.Vec3{mm[0], mm[1], mm[2]}
	c1 := mgl64.Vec3{mm[4], mm[5], mm[6]}
	c2 := mgl64.Vec3{mm[8], mm[9], mm[10]}
	sx, sy, sz := c0.Len(), c1.Len(), c2.Len()
	if mm.Det() < 0 {
		sy = -sy
	}
	t.Scaling = mgl64.Vec3{sx, sy, sz}

	if sx == 0 || sy == 0 || sz == 0 {
		t.Rotation = IdentityQuaternion()
		return t, false
	}

	rot := mgl64.Mat3{
		c0[0] / sx, c0[1] / sx, c0[2] / sx,
		c1[0] / sy, c1[1] / sy, c1[2] / sy,
		c2[0] / sz, c2[1] / sz, c2[2] / sz,
	}
	t.Rotation = Quaternion(mgl64.Mat4ToQuat(rot.Mat4()).Normalize())
	return t, true
}

// ComposeMatrix 由缩放、旋转、平移合成矩阵：T * R * S
func ComposeMatrix(t Transform) Matrix {
	s, p := t.Scaling, t.Translation
	m := mgl64.Translate3D(p[0], p[1], p[2]).
		Mul4(mgl64.Quat(t.Rotation).Normalize().Mat4()).
		Mul4(mgl64.Scale3D(s[0], s[1], s[2]))
	return Matrix(m)
}

// DecomposeLerp 分解插值：缩放和平移线性插值，旋转球面插值
// 任一端无法分解时退化为逐元素插值
func DecomposeLerp(a, b Matrix, t float64) Matrix {
	ta, okA := DecomposeMatrix(a)
	tb, okB := DecomposeMatrix(b)
	if !okA || !okB {
		return Lerp(a, b, t).(Matrix)
	}
	return ComposeMatrix(Transform{
		Scaling:     ta.Scaling.Add(tb.Scaling.Sub(ta.Scaling).Mul(t)),
		Rotation:    Slerp(ta.Rotation, tb.Rotation, t),
		Translation: ta.Translation.Add(tb.Translation.Sub(ta.Translation).Mul(t)),
	})
}
