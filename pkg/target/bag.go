package target

import (
	"github.com/decker502/animrt/pkg/track"
	"github.com/decker502/animrt/pkg/value"
)

// Bag 以 map 保存属性的简单目标
// 用于测试和无场景图的工具（如 cmd/verify_reanim）
type Bag struct {
	values     map[string]value.Value
	restPose   map[string]value.Value
	dirty      map[string]int
	properties *track.Properties
	children   []Target
}

// NewBag 创建属性包，initial 中的每个键都是可动画属性
func NewBag(initial map[string]value.Value) *Bag {
	b := &Bag{
		values:   make(map[string]value.Value, len(initial)),
		restPose: make(map[string]value.Value),
		dirty:    make(map[string]int),
	}
	for k, v := range initial {
		b.values[k] = v
	}
	return b
}

// Property 实现 Target
func (b *Bag) Property(path string) (Property, bool) {
	return resolvePath(path, b.lookup)
}

func (b *Bag) lookup(path string) (Property, bool) {
	if _, ok := b.values[path]; !ok {
		return nil, false
	}
	return Funcs{
		GetFunc: func() value.Value { return b.values[path] },
		SetFunc: func(v value.Value) { b.values[path] = v },
	}, true
}

// Get 读取属性（支持分量路径），不存在时返回 nil
func (b *Bag) Get(path string) value.Value {
	p, ok := b.Property(path)
	if !ok {
		return nil
	}
	return p.Get()
}

// Set 写入属性；属性不存在时新建
func (b *Bag) Set(path string, v value.Value) {
	if p, ok := b.Property(path); ok {
		p.Set(v)
		return
	}
	b.values[path] = v
}

// MarkAsDirty 实现 DirtyMarker
func (b *Bag) MarkAsDirty(property string) {
	b.dirty[property]++
}

// DirtyCount 返回属性被标记为脏的次数
func (b *Bag) DirtyCount(property string) int {
	return b.dirty[property]
}

// SetRestPose 设置属性的静止姿态
func (b *Bag) SetRestPose(path string, v value.Value) {
	b.restPose[path] = v
}

// RestPose 实现 RestPoser
func (b *Bag) RestPose(path string) (value.Value, bool) {
	v, ok := b.restPose[path]
	return v, ok
}

// SetAnimationProperties 设置逐目标的动画属性覆盖（nil 表示不覆盖）
func (b *Bag) SetAnimationProperties(p *track.Properties) {
	b.properties = p
}

// AnimationProperties 实现 PropertiesProvider
func (b *Bag) AnimationProperties() *track.Properties {
	return b.properties
}

// AddChild 添加子目标
func (b *Bag) AddChild(child Target) {
	b.children = append(b.children, child)
}

// Children 实现 Hierarchy
func (b *Bag) Children() []Target {
	return b.children
}
