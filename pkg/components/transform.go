package components

import "github.com/decker502/animrt/pkg/value"

// TransformComponent 实体的局部变换(纯数据)
//
// 动画目标适配器(target.Entity)把以下属性路径映射到此组件：
//   - position / position.x / position.y / position.z
//   - rotation (四元数)
//   - scaling
//   - skew (二维切变，reanim 的 kx/ky)
//   - matrix (由 Position/Rotation/Scaling 合成，写入时反向分解)
//
// Version 每次被动画写入后递增，渲染侧可以据此判断缓存是否失效。
type TransformComponent struct {
	Position value.Vector3
	Rotation value.Quaternion
	Scaling  value.Vector3
	Skew     value.Vector2

	// Version 变换被写入的次数
	Version int
}

// NewTransformComponent 返回单位变换：原点、无旋转、缩放为 1
func NewTransformComponent() *TransformComponent {
	return &TransformComponent{
		Rotation: value.IdentityQuaternion(),
		Scaling:  value.Vector3{1, 1, 1},
	}
}

// Matrix 合成局部矩阵 T * R * S
func (c *TransformComponent) Matrix() value.Matrix {
	return value.ComposeMatrix(value.Transform{
		Scaling:     [3]float64(c.Scaling),
		Rotation:    c.Rotation,
		Translation: [3]float64(c.Position),
	})
}

// SetMatrix 分解矩阵并写回各分量
// 无法分解的矩阵(某轴缩放为 0)只写入平移和缩放，旋转保持不变
func (c *TransformComponent) SetMatrix(m value.Matrix) {
	t, ok := value.DecomposeMatrix(m)
	c.Position = value.Vector3(t.Translation)
	c.Scaling = value.Vector3(t.Scaling)
	if ok {
		c.Rotation = t.Rotation
	}
}
