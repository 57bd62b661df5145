// Package target 定义动画写入的目标对象契约，以及两种适配器
//
// 动画运行时只通过 Target.Property(path) 读写属性，其余能力都是可选接口：
//   - DirtyMarker: 每次直接写入后回调（渲染缓存失效等）
//   - RestPoser: 提供静止姿态，作为加权混合的原始值
//   - PropertiesProvider: 逐目标覆盖轨道的循环模式与混合设置
//   - Hierarchy: 子节点，用于层级动画
//
// 注意：Target 会作为 map 的键（迟绑定混合按 (目标, 属性) 分组），
// 实现类型必须可比较，通常是指针或由指针组成的小结构体。
package target

import (
	"strings"

	"github.com/decker502/animrt/pkg/track"
	"github.com/decker502/animrt/pkg/value"
)

// Property 一个可读写的属性槽
type Property interface {
	Get() value.Value
	Set(v value.Value)
}

// Target 可被动画的对象
type Target interface {
	// Property 解析点分隔的属性路径（如 "position"、"position.x"）
	// 无法解析时返回 false，对应的运行时动画会被静默停止
	Property(path string) (Property, bool)
}

// DirtyMarker 写入后的脏标记回调
type DirtyMarker interface {
	MarkAsDirty(property string)
}

// RestPoser 提供属性的静止姿态
type RestPoser interface {
	RestPose(path string) (value.Value, bool)
}

// PropertiesProvider 逐目标的动画属性覆盖
type PropertiesProvider interface {
	AnimationProperties() *track.Properties
}

// Hierarchy 有子节点的目标
type Hierarchy interface {
	Children() []Target
}

// Funcs 由一对闭包组成的属性
type Funcs struct {
	GetFunc func() value.Value
	SetFunc func(v value.Value)
}

func (f Funcs) Get() value.Value  { return f.GetFunc() }
func (f Funcs) Set(v value.Value) { f.SetFunc(v) }

// Descendants 返回目标的后代节点（深度优先，不含自身）
// directOnly 为 true 时只返回直接子节点
func Descendants(t Target, directOnly bool) []Target {
	h, ok := t.(Hierarchy)
	if !ok {
		return nil
	}
	var out []Target
	for _, child := range h.Children() {
		out = append(out, child)
		if !directOnly {
			out = append(out, Descendants(child, false)...)
		}
	}
	return out
}

// Component 将向量类属性的单个分量包装成 Float 属性
//
// 支持的分量名：
//   - Vector2/Vector3: x, y, z
//   - Quaternion: x, y, z, w
//   - Color3: r, g, b
//   - Size: width, height
func Component(p Property, name string) (Property, bool) {
	idx, ok := componentIndex(p.Get(), name)
	if !ok {
		return nil, false
	}
	return Funcs{
		GetFunc: func() value.Value {
			return value.Float(value.Floats(p.Get())[idx])
		},
		SetFunc: func(v value.Value) {
			f, ok := v.(value.Float)
			if !ok {
				return
			}
			cur := p.Get()
			parts := value.Floats(cur)
			parts[idx] = float64(f)
			next, err := value.FromFloats(cur.Kind(), parts)
			if err == nil {
				p.Set(next)
			}
		},
	}, true
}

func componentIndex(v value.Value, name string) (int, bool) {
	if v == nil {
		return 0, false
	}
	var names []string
	switch v.Kind() {
	case value.KindVector2:
		names = []string{"x", "y"}
	case value.KindVector3:
		names = []string{"x", "y", "z"}
	case value.KindQuaternion:
		names = []string{"x", "y", "z", "w"}
	case value.KindColor3:
		names = []string{"r", "g", "b"}
	case value.KindSize:
		names = []string{"width", "height"}
	}
	for i, n := range names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// resolvePath 按 "base.component" 的形式解析路径
// lookup 负责解析不带分量的基础属性
func resolvePath(path string, lookup func(string) (Property, bool)) (Property, bool) {
	if p, ok := lookup(path); ok {
		return p, true
	}
	dot := strings.LastIndexByte(path, '.')
	if dot <= 0 || dot == len(path)-1 {
		return nil, false
	}
	base, ok := lookup(path[:dot])
	if !ok {
		return nil, false
	}
	return Component(base, path[dot+1:])
}
