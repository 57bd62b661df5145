package target

import (
	"strings"

	"github.com/decker502/animrt/pkg/components"
	"github.com/decker502/animrt/pkg/ecs"
	"github.com/decker502/animrt/pkg/track"
	"github.com/decker502/animrt/pkg/value"
)

// Entity 把 ECS 实体适配为动画目标
//
// Entity 是值类型：同一实体的两个 Entity 相等，因此从不同地方构造的
// 适配器在迟绑定混合中会归入同一组。
//
// 属性路径到组件的映射：
//   - position、rotation、scaling、skew、matrix: TransformComponent
//   - color、alpha: TintComponent
//   - size: SizeComponent
//
// 实体缺少对应组件时路径无法解析。
type Entity struct {
	em *ecs.EntityManager
	id ecs.EntityID
}

// NewEntity 创建实体适配器
func NewEntity(em *ecs.EntityManager, id ecs.EntityID) Entity {
	return Entity{em: em, id: id}
}

// ID 实体 ID
func (e Entity) ID() ecs.EntityID { return e.id }

// Property 实现 Target
func (e Entity) Property(path string) (Property, bool) {
	return resolvePath(path, e.lookup)
}

func (e Entity) lookup(path string) (Property, bool) {
	switch path {
	case "position", "rotation", "scaling", "skew", "matrix":
		tc, ok := ecs.GetComponent[*components.TransformComponent](e.em, e.id)
		if !ok {
			return nil, false
		}
		return transformProperty(tc, path), true
	case "color", "alpha":
		tint, ok := ecs.GetComponent[*components.TintComponent](e.em, e.id)
		if !ok {
			return nil, false
		}
		if path == "alpha" {
			return Funcs{
				GetFunc: func() value.Value { return value.Float(tint.Alpha) },
				SetFunc: func(v value.Value) {
					if f, ok := v.(value.Float); ok {
						tint.Alpha = float64(f)
					}
				},
			}, true
		}
		return Funcs{
			GetFunc: func() value.Value { return tint.Color },
			SetFunc: func(v value.Value) {
				if c, ok := v.(value.Color3); ok {
					tint.Color = c
				}
			},
		}, true
	case "size":
		sc, ok := ecs.GetComponent[*components.SizeComponent](e.em, e.id)
		if !ok {
			return nil, false
		}
		return Funcs{
			GetFunc: func() value.Value { return sc.Size },
			SetFunc: func(v value.Value) {
				if s, ok := v.(value.Size); ok {
					sc.Size = s
				}
			},
		}, true
	}
	return nil, false
}

func transformProperty(tc *components.TransformComponent, path string) Property {
	switch path {
	case "position":
		return Funcs{
			GetFunc: func() value.Value { return tc.Position },
			SetFunc: func(v value.Value) { setAs(v, &tc.Position) },
		}
	case "rotation":
		return Funcs{
			GetFunc: func() value.Value { return tc.Rotation },
			SetFunc: func(v value.Value) { setAs(v, &tc.Rotation) },
		}
	case "scaling":
		return Funcs{
			GetFunc: func() value.Value { return tc.Scaling },
			SetFunc: func(v value.Value) { setAs(v, &tc.Scaling) },
		}
	case "skew":
		return Funcs{
			GetFunc: func() value.Value { return tc.Skew },
			SetFunc: func(v value.Value) { setAs(v, &tc.Skew) },
		}
	default:
		return Funcs{
			GetFunc: func() value.Value { return tc.Matrix() },
			SetFunc: func(v value.Value) {
				if m, ok := v.(value.Matrix); ok {
					tc.SetMatrix(m)
				}
			},
		}
	}
}

// setAs 只在类型匹配时写入
func setAs[T value.Value](v value.Value, dst *T) {
	if typed, ok := v.(T); ok {
		*dst = typed
	}
}

// MarkAsDirty 实现 DirtyMarker：递增对应组件的 Version
func (e Entity) MarkAsDirty(property string) {
	base, _, _ := strings.Cut(property, ".")
	switch base {
	case "position", "rotation", "scaling", "skew", "matrix":
		if tc, ok := ecs.GetComponent[*components.TransformComponent](e.em, e.id); ok {
			tc.Version++
		}
	case "color", "alpha":
		if tint, ok := ecs.GetComponent[*components.TintComponent](e.em, e.id); ok {
			tint.Version++
		}
	}
}

// RestPose 实现 RestPoser
func (e Entity) RestPose(path string) (value.Value, bool) {
	rp, ok := ecs.GetComponent[*components.RestPoseComponent](e.em, e.id)
	if !ok {
		return nil, false
	}
	v, ok := rp.Values[path]
	return v, ok
}

// AnimationProperties 实现 PropertiesProvider
func (e Entity) AnimationProperties() *track.Properties {
	pc, ok := ecs.GetComponent[*components.AnimationPropertiesComponent](e.em, e.id)
	if !ok {
		return nil
	}
	return &pc.Properties
}

// Children 实现 Hierarchy，已删除的子实体被跳过
func (e Entity) Children() []Target {
	hc, ok := ecs.GetComponent[*components.HierarchyComponent](e.em, e.id)
	if !ok {
		return nil
	}
	out := make([]Target, 0, len(hc.Children))
	for _, child := range hc.Children {
		if e.em.Exists(child) {
			out = append(out, Entity{em: e.em, id: child})
		}
	}
	return out
}
