package components

import "github.com/decker502/animrt/pkg/ecs"

// ReanimComponent 绑定到一个 Reanim 文件的实体
//
// 每个部件是一个子实体（带 TransformComponent 和 ReanimPartComponent），
// 由 ReanimSystem 创建；父实体同时持有 HierarchyComponent。
type ReanimComponent struct {
	// ReanimName 注册到 ReanimSystem 时使用的名称（如 "Sample"）
	ReanimName string

	// Parts 部件名 -> 子实体
	Parts map[string]ecs.EntityID

	// PartOrder 部件在文件中的顺序（即绘制顺序）
	PartOrder []string

	// CurrentAnim 当前播放的区间名（如 "anim_idle"），未播放时为空
	CurrentAnim string

	// IsLooping 当前区间是否循环播放
	IsLooping bool

	// IsFinished 非循环区间播放完毕后为 true
	IsFinished bool
}

// ReanimPartComponent 部件子实体的标识
type ReanimPartComponent struct {
	// Owner 持有 ReanimComponent 的父实体
	Owner ecs.EntityID
	// Part 部件轨道名（如 "head"）
	Part string
	// ImagePath 第一帧引用的图片（如 "IMAGE_REANIM_PEASHOOTER_HEAD"）
	ImagePath string
}
