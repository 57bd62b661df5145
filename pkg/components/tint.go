package components

import "github.com/decker502/animrt/pkg/value"

// TintComponent 颜色叠加与透明度
// 属性路径：color、color.r/g/b、alpha
type TintComponent struct {
	Color value.Color3
	Alpha float64

	// Version 颜色被写入的次数
	Version int
}

// NewTintComponent 白色、不透明
func NewTintComponent() *TintComponent {
	return &TintComponent{Color: value.Color3{R: 1, G: 1, B: 1}, Alpha: 1}
}

// SizeComponent 实体尺寸(如 UI 元素的宽高)
// 属性路径：size、size.width、size.height
type SizeComponent struct {
	Size value.Size
}
