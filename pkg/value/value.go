// Package value 定义动画可以写入目标属性的值类型
//
// 值是一个封闭的 tagged union：每个变体（Float、Vector2、Vector3、Quaternion、
// Color3、Size、Matrix）都是普通的值类型，按 Kind 分派插值与混合策略，
// 不在运行时探测 "是否支持 clone / scaleAndAdd" 之类的能力。
package value

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// Kind 值变体的类型标签
type Kind int

const (
	KindFloat Kind = iota
	KindVector2
	KindVector3
	KindQuaternion
	KindColor3
	KindSize
	KindMatrix
)

// String 返回类型标签的字符串表示（用于日志和配置）
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindVector2:
		return "vector2"
	case KindVector3:
		return "vector3"
	case KindQuaternion:
		return "quaternion"
	case KindColor3:
		return "color3"
	case KindSize:
		return "size"
	case KindMatrix:
		return "matrix"
	default:
		return "unknown"
	}
}

// Components 返回该类型在配置文件中需要的分量个数
func (k Kind) Components() int {
	switch k {
	case KindFloat:
		return 1
	case KindVector2, KindSize:
		return 2
	case KindVector3, KindColor3:
		return 3
	case KindQuaternion:
		return 4
	case KindMatrix:
		return 16
	default:
		return 0
	}
}

// ParseKind 将配置文件中的类型字符串转换为 Kind（大小写不敏感）
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float", "number":
		return KindFloat, nil
	case "vector2", "vec2":
		return KindVector2, nil
	case "vector3", "vec3":
		return KindVector3, nil
	case "quaternion", "quat":
		return KindQuaternion, nil
	case "color3", "color":
		return KindColor3, nil
	case "size":
		return KindSize, nil
	case "matrix", "mat4":
		return KindMatrix, nil
	default:
		return 0, fmt.Errorf("unknown value kind %q", s)
	}
}

// Value 是所有可动画值的公共接口
// 只有本包内的类型可以实现它（isValue 未导出）
type Value interface {
	Kind() Kind
	isValue()
}

// Float 标量
type Float float64

// Vector2 二维向量
type Vector2 mgl64.Vec2

// Vector3 三维向量
type Vector3 mgl64.Vec3

// Quaternion 旋转四元数（W 为实部）
type Quaternion mgl64.Quat

// Color3 RGB 颜色（分量 0~1，允许越界以便叠加）
type Color3 colorful.Color

// Size 宽高
type Size struct {
	Width  float64
	Height float64
}

// Matrix 4x4 变换矩阵（列主序，与 mgl64 一致）
type Matrix mgl64.Mat4

func (Float) Kind() Kind      { return KindFloat }
func (Vector2) Kind() Kind    { return KindVector2 }
func (Vector3) Kind() Kind    { return KindVector3 }
func (Quaternion) Kind() Kind { return KindQuaternion }
func (Color3) Kind() Kind     { return KindColor3 }
func (Size) Kind() Kind       { return KindSize }
func (Matrix) Kind() Kind     { return KindMatrix }

func (Float) isValue()      {}
func (Vector2) isValue()    {}
func (Vector3) isValue()    {}
func (Quaternion) isValue() {}
func (Color3) isValue()     {}
func (Size) isValue()       {}
func (Matrix) isValue()     {}

// IdentityQuaternion 单位四元数
func IdentityQuaternion() Quaternion {
	return Quaternion(mgl64.QuatIdent())
}

// IdentityMatrix 单位矩阵
func IdentityMatrix() Matrix {
	return Matrix(mgl64.Ident4())
}

// Zero 返回指定类型的加法零元
// 注意：四元数和矩阵的零元是全 0，而不是单位元，用于 Relative 循环的偏移累加
func Zero(kind Kind) Value {
	switch kind {
	case KindVector2:
		return Vector2{}
	case KindVector3:
		return Vector3{}
	case KindQuaternion:
		return Quaternion{}
	case KindColor3:
		return Color3{}
	case KindSize:
		return Size{}
	case KindMatrix:
		return Matrix{}
	default:
		return Float(0)
	}
}

// Neutral 返回指定类型的"无变化"值：四元数和矩阵为单位元，其余为零
func Neutral(kind Kind) Value {
	switch kind {
	case KindQuaternion:
		return IdentityQuaternion()
	case KindMatrix:
		return IdentityMatrix()
	default:
		return Zero(kind)
	}
}

// FromFloats 从分量数组构造值（配置文件使用）
//
// 分量顺序：
//   - quaternion: [x, y, z, w]
//   - color3: [r, g, b]
//   - size: [width, height]
//   - matrix: 16 个元素，列主序
func FromFloats(kind Kind, c []float64) (Value, error) {
	if want := kind.Components(); want == 0 || len(c) != want {
		return nil, fmt.Errorf("%s expects %d components, got %d", kind, kind.Components(), len(c))
	}
	switch kind {
	case KindFloat:
		return Float(c[0]), nil
	case KindVector2:
		return Vector2{c[0], c[1]}, nil
	case KindVector3:
		return Vector3{c[0], c[1], c[2]}, nil
	case KindQuaternion:
		return Quaternion{W: c[3], V: mgl64.Vec3{c[0], c[1], c[2]}}, nil
	case KindColor3:
		return Color3{R: c[0], G: c[1], B: c[2]}, nil
	case KindSize:
		return Size{Width: c[0], Height: c[1]}, nil
	default:
		var m Matrix
		copy(m[:], c)
		return m, nil
	}
}

// Floats 返回值的分量数组，与 FromFloats 互逆
func Floats(v Value) []float64 {
	switch x := v.(type) {
	case Float:
		return []float64{float64(x)}
	case Vector2:
		return []float64{x[0], x[1]}
	case Vector3:
		return []float64{x[0], x[1], x[2]}
	case Quaternion:
		return []float64{x.V[0], x.V[1], x.V[2], x.W}
	case Color3:
		return []float64{x.R, x.G, x.B}
	case Size:
		return []float64{x.Width, x.Height}
	case Matrix:
		out := make([]float64, 16)
		copy(out, x[:])
		return out
	default:
		return nil
	}
}

// as 将 b 断言为与 a 相同的变体；类型不匹配时返回零值
func as[T Value](b Value) T {
	v, _ := b.(T)
	return v
}
