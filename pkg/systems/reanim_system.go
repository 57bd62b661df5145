package systems

import (
	"fmt"
	"io/fs"
	"log"

	"github.com/decker502/animrt/internal/reanim"
	"github.com/decker502/animrt/pkg/animation"
	"github.com/decker502/animrt/pkg/components"
	"github.com/decker502/animrt/pkg/ecs"
	"github.com/decker502/animrt/pkg/target"
	"github.com/decker502/animrt/pkg/track"
	"github.com/decker502/animrt/pkg/value"
)

// reanimData 一个已注册 Reanim 文件的转换结果
type reanimData struct {
	xml    *reanim.ReanimXML
	parts  []reanim.PartTracks
	ranges []track.Range
	// first 每个部件第一帧的状态，用于初始化子实体（常量通道没有轨道）
	first map[string]reanim.ResolvedFrame
}

// ReanimSystem 把 Reanim 文件接入关键帧运行时
//
// 每个部件对应一个子实体，播放区间时每个部件一个 Animatable，
// 全部同步到第一个部件的时间轴。调度器由 AnimationSystem 推进。
type ReanimSystem struct {
	entityManager *ecs.EntityManager
	scheduler     *animation.Scheduler
	trackOptions  []track.Option
	data          map[string]*reanimData
}

// NewReanimSystem 创建 Reanim 系统
//
// 参数：
//   - em: 实体管理器
//   - scheduler: 与 AnimationSystem 共用的调度器
//   - opts: 构建部件轨道时附加的选项（如混合设置）
func NewReanimSystem(em *ecs.EntityManager, scheduler *animation.Scheduler, opts ...track.Option) *ReanimSystem {
	return &ReanimSystem{
		entityManager: em,
		scheduler:     scheduler,
		trackOptions:  opts,
		data:          make(map[string]*reanimData),
	}
}

// RegisterReanim 转换并缓存一个 Reanim 文件
// 同名注册会覆盖之前的数据（已创建的实体不受影响）
func (s *ReanimSystem) RegisterReanim(name string, r *reanim.ReanimXML) error {
	parts, err := r.BuildPartTracks(s.trackOptions...)
	if err != nil {
		return fmt.Errorf("转换 reanim '%s' 失败: %w", name, err)
	}

	first := make(map[string]reanim.ResolvedFrame)
	for i := range r.Tracks {
		t := &r.Tracks[i]
		if t.IsDefinition() || len(t.Frames) == 0 {
			continue
		}
		first[t.Name] = t.Resolve()[0]
	}

	s.data[name] = &reanimData{xml: r, parts: parts, ranges: r.Ranges(), first: first}
	log.Printf("[ReanimSystem] Registered '%s': %d parts, %d ranges", name, len(parts), len(s.data[name].ranges))
	return nil
}

// LoadReanimFS 从文件系统读取并注册 Reanim 文件
func (s *ReanimSystem) LoadReanimFS(fsys fs.FS, name, path string) error {
	r, err := reanim.ParseReanimFS(fsys, path)
	if err != nil {
		return err
	}
	return s.RegisterReanim(name, r)
}

// Ranges 返回已注册文件的命名区间
func (s *ReanimSystem) Ranges(name string) ([]track.Range, bool) {
	d, ok := s.data[name]
	if !ok {
		return nil, false
	}
	return d.ranges, true
}

// InitReanimComponent 为实体创建部件子实体并添加 ReanimComponent
//
// 参数：
//   - entityID: 父实体
//   - reanimName: 已注册的 Reanim 名称
//
// 返回：
//   - error: 名称未注册或实体已绑定时返回错误
func (s *ReanimSystem) InitReanimComponent(entityID ecs.EntityID, reanimName string) error {
	d, ok := s.data[reanimName]
	if !ok {
		return fmt.Errorf("reanim '%s' 未注册", reanimName)
	}
	if ecs.HasComponent[*components.ReanimComponent](s.entityManager, entityID) {
		return fmt.Errorf("实体 %d 已绑定 reanim", entityID)
	}

	comp := &components.ReanimComponent{
		ReanimName: reanimName,
		Parts:      make(map[string]ecs.EntityID),
	}
	hierarchy := &components.HierarchyComponent{}

	for i := range d.xml.Tracks {
		t := &d.xml.Tracks[i]
		rf, ok := d.first[t.Name]
		if !ok {
			continue
		}
		partID := s.entityManager.CreateEntity()
		tc := components.NewTransformComponent()
		tc.Position = value.Vector3{rf.X, rf.Y, 0}
		tc.Scaling = value.Vector3{rf.ScaleX, rf.ScaleY, 1}
		tc.Skew = value.Vector2{rf.SkewX, rf.SkewY}
		s.entityManager.AddComponent(partID, tc)
		s.entityManager.AddComponent(partID, &components.ReanimPartComponent{
			Owner:     entityID,
			Part:      t.Name,
			ImagePath: rf.ImagePath,
		})

		comp.Parts[t.Name] = partID
		comp.PartOrder = append(comp.PartOrder, t.Name)
		hierarchy.Children = append(hierarchy.Children, partID)
	}

	s.entityManager.AddComponent(entityID, comp)
	s.entityManager.AddComponent(entityID, hierarchy)
	return nil
}

// PlayAnimation 循环播放命名区间
func (s *ReanimSystem) PlayAnimation(entityID ecs.EntityID, animName string) error {
	return s.play(entityID, animName, true)
}

// PlayAnimationOnce 播放一次命名区间，结束后 IsFinished 为 true
func (s *ReanimSystem) PlayAnimationOnce(entityID ecs.EntityID, animName string) error {
	return s.play(entityID, animName, false)
}

func (s *ReanimSystem) play(entityID ecs.EntityID, animName string, loop bool) error {
	comp, ok := ecs.GetComponent[*components.ReanimComponent](s.entityManager, entityID)
	if !ok {
		return fmt.Errorf("实体 %d 没有 ReanimComponent", entityID)
	}
	d := s.data[comp.ReanimName]
	if d == nil {
		return fmt.Errorf("reanim '%s' 未注册", comp.ReanimName)
	}

	var rg track.Range
	found := false
	for _, r := range d.ranges {
		if r.Name == animName {
			rg, found = r, true
			break
		}
	}
	if !found {
		return fmt.Errorf("reanim '%s' 没有区间 '%s'", comp.ReanimName, animName)
	}

	opts := animation.PlayOptions{Loop: loop, StopCurrent: true}.WithRange(rg)
	var root *animation.Animatable
	for _, p := range d.parts {
		tracks := p.Tracks()
		partID, ok := comp.Parts[p.Part]
		if !ok || len(tracks) == 0 {
			continue
		}
		a := s.scheduler.BeginDirectAnimation(target.NewEntity(s.entityManager, partID), tracks, opts)
		if root == nil {
			root = a
			continue
		}
		a.SyncWith(root)
	}

	comp.CurrentAnim = animName
	comp.IsLooping = loop
	comp.IsFinished = false
	if root == nil {
		// 所有部件都是静止的
		comp.IsFinished = !loop
		return nil
	}
	root.OnAnimationEnd.AddOnce(func(*animation.Animatable) {
		if comp.CurrentAnim == animName {
			comp.IsFinished = true
		}
	})
	return nil
}

// StopAnimation 停止实体所有部件上的动画
func (s *ReanimSystem) StopAnimation(entityID ecs.EntityID) {
	comp, ok := ecs.GetComponent[*components.ReanimComponent](s.entityManager, entityID)
	if !ok {
		return
	}
	for _, partID := range comp.Parts {
		s.scheduler.StopAnimation(target.NewEntity(s.entityManager, partID), "", nil)
	}
	comp.CurrentAnim = ""
}

// DestroyReanim 停止动画并标记删除部件子实体
func (s *ReanimSystem) DestroyReanim(entityID ecs.EntityID) {
	comp, ok := ecs.GetComponent[*components.ReanimComponent](s.entityManager, entityID)
	if !ok {
		return
	}
	s.StopAnimation(entityID)
	for _, partID := range comp.Parts {
		s.entityManager.DestroyEntity(partID)
	}
	ecs.RemoveComponent[*components.ReanimComponent](s.entityManager, entityID)
	ecs.RemoveComponent[*components.HierarchyComponent](s.entityManager, entityID)
}
