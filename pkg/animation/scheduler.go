// Package animation 关键帧动画运行时
//
// 组成（由叶到根）：
//   - RuntimeAnimation: 一条轨道绑定一个目标，每帧推进帧游标并产生值
//   - Animatable: 一次播放请求，管理暂停/停止/循环/速度/权重/同步根
//   - Scheduler: 每帧驱动活动列表，tick 结束后统一提交迟绑定混合
//
// 数据流：Scheduler.Tick → Animatable.animate → RuntimeAnimation.animate
// → (直接写入 | 登记到迟绑定混合器) → Scheduler.FlushLateBindings → 属性写入
//
// 运行时是单线程的：Tick 和所有控制方法都必须在同一个 goroutine
// （通常是 ebiten 的 Update）中调用。
package animation

import (
	"log"
	"slices"

	"github.com/decker502/animrt/pkg/target"
	"github.com/decker502/animrt/pkg/track"
)

// Verbose 开启逐帧调试日志
var Verbose = false

// Config 调度器配置
type Config struct {
	// FixedStep 为 true 时忽略实际间隔，每次 tick 固定推进 FixedDeltaMs
	FixedStep    bool
	FixedDeltaMs float64
	// TimeScale 全局时间缩放
	TimeScale float64
	// MatrixDecompose 矩阵按缩放/旋转/平移分解后混合，否则逐元素混合
	MatrixDecompose bool
	// AnimationsEnabled 为 false 时 Tick 不做任何事
	AnimationsEnabled bool
}

// DefaultConfig 返回默认配置：实际间隔、1 倍速、分解矩阵
func DefaultConfig() Config {
	return Config{
		FixedDeltaMs:      16,
		TimeScale:         1,
		MatrixDecompose:   true,
		AnimationsEnabled: true,
	}
}

// Scheduler 动画调度器
//
// 持有有序的活动 Animatable 列表和迟绑定混合器。
// 列表顺序即推进顺序，同步根总是排在依赖它的动画之前。
type Scheduler struct {
	config       Config
	active       []*Animatable
	lateBindings *lateBindingResolver

	deltaTime     float64
	animationTime float64
	tickID        uint64
}

// NewScheduler 创建调度器
func NewScheduler(cfg Config) *Scheduler {
	if cfg.TimeScale == 0 {
		cfg.TimeScale = 1
	}
	if cfg.FixedDeltaMs <= 0 {
		cfg.FixedDeltaMs = 16
	}
	return &Scheduler{
		config:       cfg,
		lateBindings: newLateBindingResolver(cfg.MatrixDecompose),
	}
}

// Config 返回当前配置
func (s *Scheduler) Config() Config { return s.config }

// SetTimeScale 修改全局时间缩放
func (s *Scheduler) SetTimeScale(scale float64) { s.config.TimeScale = scale }

// SetFixedStep 切换固定步长模式
func (s *Scheduler) SetFixedStep(fixed bool) { s.config.FixedStep = fixed }

// SetAnimationsEnabled 开关动画
func (s *Scheduler) SetAnimationsEnabled(enabled bool) { s.config.AnimationsEnabled = enabled }

// DeltaTime 最近一次 tick 的推进量（毫秒）
func (s *Scheduler) DeltaTime() float64 { return s.deltaTime }

// AnimationTime 累计时间轴（毫秒）
func (s *Scheduler) AnimationTime() float64 { return s.animationTime }

// Active 返回活动列表的副本
func (s *Scheduler) Active() []*Animatable {
	return append([]*Animatable(nil), s.active...)
}

// ============================================================================
// 活动列表
// ============================================================================

// Register 把 Animatable 加入活动列表末尾
// 它的本地时间轴从当前累计时间开始，下一次 Tick 推进的时长即播放时长
func (s *Scheduler) Register(a *Animatable) {
	if s.contains(a) {
		return
	}
	a.scheduler = s
	if !a.hasLocalDelayOffset {
		a.localDelayOffset = s.animationTime
		a.hasLocalDelayOffset = true
	}
	s.active = append(s.active, a)
	if Verbose {
		log.Printf("[Scheduler] 注册动画: %d 条轨道, 帧 %.1f → %.1f, 活动数 %d",
			len(a.runtimeAnimations), a.FromFrame, a.ToFrame, len(s.active))
	}
}

// Remove 从活动列表移除，返回是否存在
func (s *Scheduler) Remove(a *Animatable) bool {
	for i, cur := range s.active {
		if cur == a {
			s.active = slices.Delete(s.active, i, i+1)
			if Verbose {
				log.Printf("[Scheduler] 移除动画, 活动数 %d", len(s.active))
			}
			return true
		}
	}
	return false
}

func (s *Scheduler) contains(a *Animatable) bool {
	for _, cur := range s.active {
		if cur == a {
			return true
		}
	}
	return false
}

func (s *Scheduler) moveToEnd(a *Animatable) {
	if s.Remove(a) {
		s.active = append(s.active, a)
	}
}

// ============================================================================
// 每帧驱动
// ============================================================================

// Update 以秒为单位的帧间隔推进（ebiten 的 Update 使用）
func (s *Scheduler) Update(deltaTime float64) {
	s.Tick(deltaTime * 1000)
}

// Tick 推进一帧
//
// 参数：
//   - elapsedMs: 距上一帧的实际间隔（毫秒），固定步长模式下忽略
//
// 按列表顺序推进所有 Animatable，推进过程中移除当前项不会跳过下一项；
// 全部推进完成后提交一次迟绑定混合。
func (s *Scheduler) Tick(elapsedMs float64) {
	if !s.config.AnimationsEnabled {
		return
	}

	delta := elapsedMs
	if s.config.FixedStep {
		delta = s.config.FixedDeltaMs
	}
	delta *= s.config.TimeScale
	s.deltaTime = delta
	s.animationTime += delta
	s.tickID++

	for i := 0; i < len(s.active); {
		a := s.active[i]
		if a.lastTick != s.tickID {
			a.lastTick = s.tickID
			a.animate(s.animationTime)
		}
		if i < len(s.active) && s.active[i] == a {
			i++
		}
	}

	s.FlushLateBindings()
}

// FlushLateBindings 提交本帧登记的加权写入
func (s *Scheduler) FlushLateBindings() {
	s.lateBindings.matrixDecompose = s.config.MatrixDecompose
	s.lateBindings.flush()
}

// PendingLateBindings 等待提交的属性数
func (s *Scheduler) PendingLateBindings() int {
	return s.lateBindings.pending()
}

// Dispose 停止所有动画并清空调度器
func (s *Scheduler) Dispose() {
	for _, a := range slices.Backward(s.Active()) {
		a.Stop("", nil)
	}
	s.lateBindings.flush()
	s.active = nil
}

// ============================================================================
// 播放入口
// ============================================================================

// BeginDirectAnimation 在目标上直接播放一组轨道（不参与权重混合）
func (s *Scheduler) BeginDirectAnimation(t target.Target, tracks []track.Track, opts PlayOptions) *Animatable {
	if opts.StopCurrent {
		s.StopAnimation(t, "", nil)
	}
	return NewAnimatable(s, t, tracks, opts)
}

// BeginWeightedAnimation 以指定权重播放，同一属性上的多个加权动画在帧末混合
func (s *Scheduler) BeginWeightedAnimation(t target.Target, tracks []track.Track, weight float64, opts PlayOptions) *Animatable {
	a := s.BeginDirectAnimation(t, tracks, opts)
	a.SetWeight(weight)
	return a
}

// BeginDirectHierarchyAnimation 在目标自身及其后代节点上播放同一组轨道
// 不具备对应属性的节点上的轨道会被静默停止
func (s *Scheduler) BeginDirectHierarchyAnimation(t target.Target, directDescendantsOnly bool, tracks []track.Track, opts PlayOptions) *Animatable {
	if opts.StopCurrent {
		s.StopAnimation(t, "", nil)
	}
	a := NewAnimatable(s, t, tracks, opts)
	for _, child := range target.Descendants(t, directDescendantsOnly) {
		a.AppendAnimations(child, tracks)
	}
	return a
}

// AnimatablesForTarget 返回以 t 为根目标的活动 Animatable
func (s *Scheduler) AnimatablesForTarget(t target.Target) []*Animatable {
	var out []*Animatable
	for _, a := range s.active {
		if a.target == t {
			out = append(out, a)
		}
	}
	return out
}

// StopAnimation 停止目标上的动画，name 和 mask 的含义同 Animatable.Stop
func (s *Scheduler) StopAnimation(t target.Target, name string, mask func(target.Target) bool) {
	for _, a := range s.AnimatablesForTarget(t) {
		a.Stop(name, mask)
	}
}
