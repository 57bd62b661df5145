package value

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// Add 逐分量相加（a 与 b 必须是同一变体）
func Add(a, b Value) Value {
	switch x := a.(type) {
	case Float:
		return x + as[Float](b)
	case Vector2:
		return Vector2(mgl64.Vec2(x).Add(mgl64.Vec2(as[Vector2](b))))
	case Vector3:
		return Vector3(mgl64.Vec3(x).Add(mgl64.Vec3(as[Vector3](b))))
	case Quaternion:
		return Quaternion(mgl64.Quat(x).Add(mgl64.Quat(as[Quaternion](b))))
	case Color3:
		y := as[Color3](b)
		return Color3{R: x.R + y.R, G: x.G + y.G, B: x.B + y.B}
	case Size:
		y := as[Size](b)
		return Size{Width: x.Width + y.Width, Height: x.Height + y.Height}
	case Matrix:
		return Matrix(mgl64.Mat4(x).Add(mgl64.Mat4(as[Matrix](b))))
	}
	return a
}

// Sub 逐分量相减 a - b
func Sub(a, b Value) Value {
	return Add(a, Scale(b, -1))
}

// Scale 逐分量缩放
func Scale(v Value, s float64) Value {
	switch x := v.(type) {
	case Float:
		return Float(float64(x) * s)
	case Vector2:
		return Vector2(mgl64.Vec2(x).Mul(s))
	case Vector3:
		return Vector3(mgl64.Vec3(x).Mul(s))
	case Quaternion:
		return Quaternion(mgl64.Quat(x).Scale(s))
	case Color3:
		return Color3{R: x.R * s, G: x.G * s, B: x.B * s}
	case Size:
		return Size{Width: x.Width * s, Height: x.Height * s}
	case Matrix:
		return Matrix(mgl64.Mat4(x).Mul(s))
	}
	return v
}

// ScaleAndAdd 返回 acc + v*s，混合器的线性累加原语
func ScaleAndAdd(acc, v Value, s float64) Value {
	return Add(acc, Scale(v, s))
}

// Lerp 在 a 和 b 之间插值
//   - Quaternion 走最短路径球面插值
//   - Color3 在 RGB 空间线性插值
//   - Matrix 逐元素线性插值（分解插值见 DecomposeLerp）
func Lerp(a, b Value, t float64) Value {
	switch x := a.(type) {
	case Float:
		y := as[Float](b)
		return x + (y-x)*Float(t)
	case Quaternion:
		return Slerp(x, as[Quaternion](b), t)
	case Color3:
		return Color3(colorful.Color(x).BlendRgb(colorful.Color(as[Color3](b)), t))
	}
	return Add(Scale(a, 1-t), Scale(b, t))
}

// Slerp 四元数球面插值，点积为负时翻转 b 以走最短路径
func Slerp(a, b Quaternion, t float64) Quaternion {
	qa, qb := mgl64.Quat(a), mgl64.Quat(b)
	if qa.Dot(qb) < 0 {
		qb = qb.Scale(-1)
	}
	return Quaternion(mgl64.QuatSlerp(qa, qb, t))
}

// Multiply 四元数乘法 a*b（先应用 b 再应用 a）
func Multiply(a, b Quaternion) Quaternion {
	return Quaternion(mgl64.Quat(a).Mul(mgl64.Quat(b)))
}

// RotationZ 返回四元数绕 Z 轴的转角（弧度），2D 渲染只需要这一项
func RotationZ(q Quaternion) float64 {
	x, y, z := q.V[0], q.V[1], q.V[2]
	return math.Atan2(2*(q.W*z+x*y), 1-2*(y*y+z*z))
}

// ApproxEqual 判断两个值在 eps 范围内逐分量相等
// 四元数 q 与 -q 表示同一旋转，视为相等
func ApproxEqual(a, b Value, eps float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	fa, fb := Floats(a), Floats(b)
	if a.Kind() == KindQuaternion && mgl64.Quat(a.(Quaternion)).Dot(mgl64.Quat(b.(Quaternion))) < 0 {
		for i := range fb {
			fb[i] = -fb[i]
		}
	}
	for i := range fa {
		if math.Abs(fa[i]-fb[i]) > eps {
			return false
		}
	}
	return true
}
