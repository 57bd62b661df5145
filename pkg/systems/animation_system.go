package systems

import (
	"fmt"
	"log"

	"github.com/decker502/animrt/pkg/animation"
	"github.com/decker502/animrt/pkg/components"
	"github.com/decker502/animrt/pkg/config"
	"github.com/decker502/animrt/pkg/ecs"
	"github.com/decker502/animrt/pkg/target"
	"github.com/decker502/animrt/pkg/track"
)

// AnimationSystem 把 ECS 实体接入关键帧动画运行时
//
// 每帧依次：
//  1. 处理 AnimationCommandComponent（播放、停止、暂停、恢复、调整权重）
//  2. 停止目标实体已被删除的动画
//  3. 推进调度器（含迟绑定混合提交）
//  4. 按间隔清理已处理的命令组件（可选）
type AnimationSystem struct {
	entityManager *ecs.EntityManager
	scheduler     *animation.Scheduler
	configManager *config.AnimationConfigManager
	handlers      config.EventHandlers

	enableCommandCleanup bool
	cleanupInterval      float64
	cleanupTimer         float64
}

// NewAnimationSystem 创建动画系统
//
// 参数：
//   - em: 实体管理器
//   - scheduler: 动画调度器
//   - cm: 片段配置（按名称构建轨道）
func NewAnimationSystem(em *ecs.EntityManager, scheduler *animation.Scheduler, cm *config.AnimationConfigManager) *AnimationSystem {
	return &AnimationSystem{
		entityManager: em,
		scheduler:     scheduler,
		configManager: cm,
	}
}

// Scheduler 返回系统驱动的调度器
func (s *AnimationSystem) Scheduler() *animation.Scheduler {
	return s.scheduler
}

// SetEventHandlers 设置之后构建的轨道使用的事件处理函数
func (s *AnimationSystem) SetEventHandlers(handlers config.EventHandlers) {
	s.handlers = handlers
}

// EnableCommandCleanup 每隔 interval 秒移除已处理的命令组件
func (s *AnimationSystem) EnableCommandCleanup(interval float64) {
	s.enableCommandCleanup = true
	s.cleanupInterval = interval
}

// Update 处理命令并推进动画
//
// 参数：
//   - deltaTime: 距上一帧的时间（秒）
func (s *AnimationSystem) Update(deltaTime float64) {
	s.processAnimationCommands()
	s.stopOrphanedAnimations()
	s.scheduler.Update(deltaTime)
	s.cleanupProcessedCommands(deltaTime)
}

// processAnimationCommands 处理所有待执行的动画命令
//
// 错误处理：
//   - 记录错误日志但不中断处理流程
//   - 即使执行失败也标记 Processed = true（避免无限重试）
func (s *AnimationSystem) processAnimationCommands() {
	entities := ecs.GetEntitiesWith1[*components.AnimationCommandComponent](s.entityManager)

	processedCount := 0
	errorCount := 0

	for _, id := range entities {
		cmd, ok := ecs.GetComponent[*components.AnimationCommandComponent](s.entityManager, id)
		if !ok || cmd.Processed {
			continue
		}

		if err := s.execute(id, cmd); err != nil {
			log.Printf("[AnimationSystem] 命令执行失败: entity=%d, action=%s, combo=%s, clips=%v, err=%v",
				id, cmd.Action, cmd.ComboName, cmd.ClipNames, err)
			errorCount++
		} else {
			processedCount++
		}

		cmd.Processed = true
	}

	if processedCount > 0 || errorCount > 0 {
		log.Printf("[AnimationSystem] 命令处理完成: 成功=%d, 失败=%d", processedCount, errorCount)
	}
}

func (s *AnimationSystem) execute(id ecs.EntityID, cmd *components.AnimationCommandComponent) error {
	switch cmd.Action {
	case components.ActionPlay:
		_, err := s.play(id, cmd)
		return err
	case components.ActionStop:
		s.StopClips(id, cmd.ClipNames)
		return nil
	case components.ActionPause:
		s.PauseEntity(id)
		return nil
	case components.ActionResume:
		s.ResumeEntity(id)
		return nil
	case components.ActionSetWeight:
		if n := s.SetClipWeight(id, cmd.ClipNames, cmd.Weight); n == 0 {
			return fmt.Errorf("no playing animation matches clips %v", cmd.ClipNames)
		}
		return nil
	default:
		return fmt.Errorf("unknown action %d", cmd.Action)
	}
}

// play 按命令构建轨道并开始播放
func (s *AnimationSystem) play(id ecs.EntityID, cmd *components.AnimationCommandComponent) (*animation.Animatable, error) {
	clipNames := cmd.ClipNames
	opts := animation.PlayOptions{
		From:        cmd.From,
		To:          cmd.To,
		Loop:        cmd.Loop,
		SpeedRatio:  cmd.SpeedRatio,
		KeepOnEnd:   cmd.KeepOnEnd,
		Additive:    cmd.Additive,
		StopCurrent: cmd.StopCurrent,
	}
	rangeName := cmd.RangeName

	if cmd.ComboName != "" {
		combo, err := s.configManager.GetCombo(cmd.ComboName)
		if err != nil {
			return nil, err
		}
		clipNames = combo.Clips
		opts.Loop = opts.Loop || combo.Loop == nil || *combo.Loop
		if rangeName == "" {
			rangeName = combo.Range
		}
		if opts.SpeedRatio == 0 {
			opts.SpeedRatio = combo.Speed
		}
	}
	if len(clipNames) == 0 {
		return nil, fmt.Errorf("invalid command: no clips and no combo")
	}

	tracks, err := s.configManager.BuildTracks(clipNames, s.handlers)
	if err != nil {
		return nil, err
	}

	switch {
	case rangeName != "":
		r, ok := tracks[0].Range(rangeName)
		if !ok {
			return nil, fmt.Errorf("range '%s' not found on clip '%s'", rangeName, tracks[0].Name())
		}
		opts = opts.WithRange(r)
	case opts.From == 0 && opts.To == 0:
		opts.From, opts.To = fullRange(tracks)
	}

	t := target.NewEntity(s.entityManager, id)
	var a *animation.Animatable
	if cmd.Hierarchy {
		a = s.scheduler.BeginDirectHierarchyAnimation(t, false, tracks, opts)
	} else {
		a = s.scheduler.BeginDirectAnimation(t, tracks, opts)
	}
	if cmd.Weighted {
		a.SetWeight(cmd.Weight)
	}

	log.Printf("[AnimationSystem] 播放: entity=%d, clips=%v, frames=[%.1f, %.1f], loop=%v, weight=%.2f",
		id, clipNames, opts.From, opts.To, opts.Loop, a.Weight())
	return a, nil
}

// fullRange 所有轨道关键帧覆盖的区间
func fullRange(tracks []track.Track) (from, to float64) {
	for i, tr := range tracks {
		keys := tr.Keys()
		first, last := keys[0].Frame, keys[len(keys)-1].Frame
		if i == 0 || first < from {
			from = first
		}
		if i == 0 || last > to {
			to = last
		}
	}
	return from, to
}

// PlayClips 直接播放片段（不经过命令组件）
func (s *AnimationSystem) PlayClips(id ecs.EntityID, clipNames []string, loop bool) (*animation.Animatable, error) {
	return s.play(id, &components.AnimationCommandComponent{ClipNames: clipNames, Loop: loop})
}

// AnimatablesFor 返回以实体为根目标的活动 Animatable
func (s *AnimationSystem) AnimatablesFor(id ecs.EntityID) []*animation.Animatable {
	return s.scheduler.AnimatablesForTarget(target.NewEntity(s.entityManager, id))
}

// StopClips 停止实体上的指定片段；names 为空时停止全部
func (s *AnimationSystem) StopClips(id ecs.EntityID, names []string) {
	t := target.NewEntity(s.entityManager, id)
	if len(names) == 0 {
		s.scheduler.StopAnimation(t, "", nil)
		return
	}
	for _, name := range names {
		s.scheduler.StopAnimation(t, name, nil)
	}
}

// PauseEntity 暂停实体上的全部动画
func (s *AnimationSystem) PauseEntity(id ecs.EntityID) {
	for _, a := range s.AnimatablesFor(id) {
		a.Pause()
	}
}

// ResumeEntity 恢复实体上被暂停的动画
func (s *AnimationSystem) ResumeEntity(id ecs.EntityID) {
	for _, a := range s.AnimatablesFor(id) {
		if a.IsPaused() {
			a.Restart()
		}
	}
}

// SetClipWeight 修改包含任一指定片段的 Animatable 的权重
// names 为空时作用于实体上的全部 Animatable
//
// 返回：
//   - 被修改的 Animatable 个数
func (s *AnimationSystem) SetClipWeight(id ecs.EntityID, names []string, weight float64) int {
	changed := 0
	for _, a := range s.AnimatablesFor(id) {
		if len(names) > 0 && !containsClip(a, names) {
			continue
		}
		a.SetWeight(weight)
		changed++
	}
	return changed
}

func containsClip(a *animation.Animatable, names []string) bool {
	for _, name := range names {
		if a.AnimationByName(name) != nil {
			return true
		}
	}
	return false
}

// stopOrphanedAnimations 停止根实体已被删除的动画
func (s *AnimationSystem) stopOrphanedAnimations() {
	for _, a := range s.scheduler.Active() {
		e, ok := a.Target().(target.Entity)
		if ok && !s.entityManager.Exists(e.ID()) {
			log.Printf("[AnimationSystem] 实体 %d 已删除，停止其动画", e.ID())
			a.Stop("", nil)
		}
	}
}

// cleanupProcessedCommands 按间隔移除已处理的命令组件
func (s *AnimationSystem) cleanupProcessedCommands(deltaTime float64) {
	if !s.enableCommandCleanup {
		return
	}

	s.cleanupTimer += deltaTime
	if s.cleanupTimer < s.cleanupInterval {
		return
	}
	s.cleanupTimer = 0

	entities := ecs.GetEntitiesWith1[*components.AnimationCommandComponent](s.entityManager)
	removedCount := 0
	for _, id := range entities {
		cmd, ok := ecs.GetComponent[*components.AnimationCommandComponent](s.entityManager, id)
		if ok && cmd.Processed {
			ecs.RemoveComponent[*components.AnimationCommandComponent](s.entityManager, id)
			removedCount++
		}
	}

	if removedCount > 0 {
		log.Printf("[AnimationSystem] 清理已处理命令: 移除=%d", removedCount)
	}
}
