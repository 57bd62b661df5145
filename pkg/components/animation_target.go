package components

import (
	"github.com/decker502/animrt/pkg/ecs"
	"github.com/decker502/animrt/pkg/track"
	"github.com/decker502/animrt/pkg/value"
)

// RestPoseComponent 实体的静止姿态
//
// 键为属性路径(如 "position"、"rotation")。存在时作为加权混合的原始值，
// 否则运行时动画使用开始播放时属性的当前值。
type RestPoseComponent struct {
	Values map[string]value.Value
}

// AnimationPropertiesComponent 逐实体覆盖轨道的循环模式和混合设置
// 字段为 nil 表示沿用轨道自身的设置
type AnimationPropertiesComponent struct {
	Properties track.Properties
}

// HierarchyComponent 子实体列表，用于层级动画
// (Scheduler.BeginDirectHierarchyAnimation 会同时驱动子实体)
type HierarchyComponent struct {
	Children []ecs.EntityID
}
