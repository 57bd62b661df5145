package target

import (
	"testing"

	"github.com/decker502/animrt/pkg/components"
	"github.com/decker502/animrt/pkg/ecs"
	"github.com/decker502/animrt/pkg/track"
	"github.com/decker502/animrt/pkg/value"
)

func newTestEntity(em *ecs.EntityManager) Entity {
	id := em.CreateEntity()
	ecs.AddComponent(em, id, components.NewTransformComponent())
	ecs.AddComponent(em, id, components.NewTintComponent())
	return NewEntity(em, id)
}

// TestEntity_TransformPaths 变换属性与分量路径
func TestEntity_TransformPaths(t *testing.T) {
	em := ecs.NewEntityManager()
	e := newTestEntity(em)

	p, ok := e.Property("position.x")
	if !ok {
		t.Fatal("Expected position.x to resolve")
	}
	p.Set(value.Float(12))

	tc, _ := ecs.GetComponent[*components.TransformComponent](em, e.ID())
	if tc.Position[0] != 12 {
		t.Errorf("Expected position.x = 12, got %v", tc.Position[0])
	}

	// 类型不匹配的写入被忽略
	rot, _ := e.Property("rotation")
	rot.Set(value.Float(1))
	if tc.Rotation != value.IdentityQuaternion() {
		t.Errorf("Expected rotation unchanged, got %v", tc.Rotation)
	}

	m, _ := e.Property("matrix")
	m.Set(value.ComposeMatrix(value.Transform{
		Scaling:     [3]float64{2, 2, 2},
		Rotation:    value.IdentityQuaternion(),
		Translation: [3]float64{1, 2, 3},
	}))
	if !value.ApproxEqual(tc.Position, value.Vector3{1, 2, 3}, 1e-9) {
		t.Errorf("Expected position from matrix, got %v", tc.Position)
	}
	if !value.ApproxEqual(tc.Scaling, value.Vector3{2, 2, 2}, 1e-9) {
		t.Errorf("Expected scaling from matrix, got %v", tc.Scaling)
	}
}

// TestEntity_MissingComponent 缺少组件时路径无法解析
func TestEntity_MissingComponent(t *testing.T) {
	em := ecs.NewEntityManager()
	e := NewEntity(em, em.CreateEntity())

	for _, path := range []string{"position", "alpha", "size.width", "unknown"} {
		if _, ok := e.Property(path); ok {
			t.Errorf("Expected %q to be unresolvable", path)
		}
	}
}

// TestEntity_TintAndSize 颜色、透明度与尺寸
func TestEntity_TintAndSize(t *testing.T) {
	em := ecs.NewEntityManager()
	e := newTestEntity(em)
	ecs.AddComponent(em, e.ID(), &components.SizeComponent{Size: value.Size{Width: 10, Height: 20}})

	a, _ := e.Property("alpha")
	a.Set(value.Float(0.25))
	c, _ := e.Property("color.b")
	c.Set(value.Float(0))
	s, _ := e.Property("size.height")
	s.Set(value.Float(40))

	tint, _ := ecs.GetComponent[*components.TintComponent](em, e.ID())
	if tint.Alpha != 0.25 || tint.Color.B != 0 || tint.Color.R != 1 {
		t.Errorf("Unexpected tint %+v", tint)
	}
	size, _ := ecs.GetComponent[*components.SizeComponent](em, e.ID())
	if size.Size.Height != 40 || size.Size.Width != 10 {
		t.Errorf("Unexpected size %+v", size.Size)
	}
}

// TestEntity_Identity 同一实体的适配器相等
func TestEntity_Identity(t *testing.T) {
	em := ecs.NewEntityManager()
	id := em.CreateEntity()

	keys := map[Target]int{}
	keys[NewEntity(em, id)]++
	keys[NewEntity(em, id)]++
	if len(keys) != 1 || keys[NewEntity(em, id)] != 2 {
		t.Errorf("Expected adapters of one entity to share a map key, got %v", keys)
	}
}

// TestEntity_OptionalCapabilities 脏标记、静止姿态、属性覆盖和子节点
func TestEntity_OptionalCapabilities(t *testing.T) {
	em := ecs.NewEntityManager()
	parent := newTestEntity(em)
	child := newTestEntity(em)
	gone := em.CreateEntity()

	yoyo := track.LoopYoyo
	ecs.AddComponent(em, parent.ID(), &components.RestPoseComponent{
		Values: map[string]value.Value{"position": value.Vector3{5, 0, 0}},
	})
	ecs.AddComponent(em, parent.ID(), &components.AnimationPropertiesComponent{
		Properties: track.Properties{LoopMode: &yoyo},
	})
	ecs.AddComponent(em, parent.ID(), &components.HierarchyComponent{
		Children: []ecs.EntityID{child.ID(), gone},
	})
	em.DestroyEntity(gone)
	em.RemoveMarkedEntities()

	parent.MarkAsDirty("position.x")
	parent.MarkAsDirty("alpha")
	tc, _ := ecs.GetComponent[*components.TransformComponent](em, parent.ID())
	tint, _ := ecs.GetComponent[*components.TintComponent](em, parent.ID())
	if tc.Version != 1 || tint.Version != 1 {
		t.Errorf("Expected one version bump each, got %d and %d", tc.Version, tint.Version)
	}

	if v, ok := parent.RestPose("position"); !ok || v != (value.Vector3{5, 0, 0}) {
		t.Errorf("Expected rest pose, got %v %v", v, ok)
	}
	if _, ok := child.RestPose("position"); ok {
		t.Error("Expected no rest pose on child")
	}

	props := parent.AnimationProperties()
	if props == nil || props.LoopMode == nil || *props.LoopMode != track.LoopYoyo {
		t.Errorf("Expected yoyo override, got %+v", props)
	}
	if child.AnimationProperties() != nil {
		t.Error("Expected no override on child")
	}

	children := parent.Children()
	if len(children) != 1 || children[0] != Target(child) {
		t.Errorf("Expected only the live child, got %v", children)
	}
}
