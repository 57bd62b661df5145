package animation

import (
	"log"

	"github.com/decker502/animrt/pkg/target"
	"github.com/decker502/animrt/pkg/track"
)

// Animatable 一次播放请求
//
// 管理同一个目标（及其层级）上的一组 RuntimeAnimation，
// 负责暂停、停止、循环、速度、权重和同步根等共享状态。
//
// 状态机：Created → Running ⇄ Paused → Ended（释放）或 Stopped
type Animatable struct {
	scheduler *Scheduler
	target    target.Target

	// 帧窗口和循环设置，在两次 tick 之间可直接修改
	FromFrame    float64
	ToFrame      float64
	Loop         bool
	DisposeOnEnd bool

	runtimeAnimations []*RuntimeAnimation
	speedRatio        float64
	weight            float64
	isAdditive        bool
	syncRoot          *Animatable
	paused            bool
	started           bool
	endRaised         bool

	// 时间记录（毫秒，调度器时间轴）
	localDelayOffset    float64
	hasLocalDelayOffset bool
	pausedDelay         float64
	hasPausedDelay      bool
	manualJumpDelay     float64
	hasManualJump       bool
	frameToSyncFromJump float64
	hasFrameToSync      bool

	// 同一次 tick 内只推进一次
	lastTick uint64

	OnAnimationEnd  *Observable[*Animatable]
	OnAnimationLoop *Observable[*Animatable]
}

// PlayOptions 播放参数
type PlayOptions struct {
	From float64
	To   float64
	Loop bool
	// SpeedRatio 为 0 时按 1 处理；需要冻结时在创建后调用 SetSpeedRatio(0)
	SpeedRatio float64
	// KeepOnEnd 为 true 时结束后保留在调度器中（可 Reset 后重播）
	KeepOnEnd bool
	Additive  bool
	// StopCurrent 为 true 时先停止目标上已有的动画
	StopCurrent bool
}

// WithRange 用命名区间设置起止帧
func (o PlayOptions) WithRange(r track.Range) PlayOptions {
	o.From, o.To = r.From, r.To
	return o
}

// NewAnimatable 创建播放请求并注册到调度器
//
// 参数：
//   - s: 调度器
//   - t: 目标
//   - tracks: 作用于 t 的轨道，可为空（之后用 AppendAnimations 添加）
//   - opts: 播放参数
//
// 返回：
//   - 已注册的 Animatable，权重为 -1（直接写入）
func NewAnimatable(s *Scheduler, t target.Target, tracks []track.Track, opts PlayOptions) *Animatable {
	speed := opts.SpeedRatio
	if speed == 0 {
		speed = 1
	}
	// 起点大于终点表示倒放
	if opts.From > opts.To && speed > 0 {
		speed = -speed
	}
	a := &Animatable{
		scheduler:       s,
		target:          t,
		FromFrame:       opts.From,
		ToFrame:         opts.To,
		Loop:            opts.Loop,
		DisposeOnEnd:    !opts.KeepOnEnd,
		speedRatio:      speed,
		weight:          -1,
		isAdditive:      opts.Additive,
		OnAnimationEnd:  NewObservable[*Animatable](),
		OnAnimationLoop: NewObservable[*Animatable](),
	}
	if len(tracks) > 0 {
		a.AppendAnimations(t, tracks)
	}
	s.Register(a)
	return a
}

// ============================================================================
// 访问器
// ============================================================================

// Target 返回请求的根目标
func (a *Animatable) Target() target.Target { return a.target }

// RuntimeAnimations 返回拥有的运行时动画（调用方不得修改切片）
func (a *Animatable) RuntimeAnimations() []*RuntimeAnimation { return a.runtimeAnimations }

// SpeedRatio 播放速度倍率
func (a *Animatable) SpeedRatio() float64 { return a.speedRatio }

// Weight 权重，-1 表示不参与混合直接写入
func (a *Animatable) Weight() float64 { return a.weight }

// IsAdditive 是否为叠加动画
func (a *Animatable) IsAdditive() bool { return a.isAdditive }

// IsPaused 是否暂停
func (a *Animatable) IsPaused() bool { return a.paused }

// IsStarted 最近一次 tick 是否仍有运行中的动画
func (a *Animatable) IsStarted() bool { return a.started }

// SyncRoot 同步根，nil 表示独立时间轴
func (a *Animatable) SyncRoot() *Animatable { return a.syncRoot }

// MasterFrame 主帧：第一个运行时动画的当前帧
func (a *Animatable) MasterFrame() float64 {
	if len(a.runtimeAnimations) == 0 {
		return 0
	}
	return a.runtimeAnimations[0].CurrentFrame()
}

// AnimationByName 按轨道名查找运行时动画
func (a *Animatable) AnimationByName(name string) *RuntimeAnimation {
	for _, ra := range a.runtimeAnimations {
		if ra.track.Name() == name {
			return ra
		}
	}
	return nil
}

// AnimationByTargetProperty 按属性路径查找运行时动画
func (a *Animatable) AnimationByTargetProperty(path string) *RuntimeAnimation {
	for _, ra := range a.runtimeAnimations {
		if ra.track.TargetProperty() == path {
			return ra
		}
	}
	return nil
}

// ============================================================================
// 配置
// ============================================================================

// AppendAnimations 为目标 t 添加轨道（层级动画中 t 可以是子节点）
func (a *Animatable) AppendAnimations(t target.Target, tracks []track.Track) {
	for _, tr := range tracks {
		a.runtimeAnimations = append(a.runtimeAnimations, newRuntimeAnimation(t, tr, a))
	}
}

// SyncWith 将本动画的时间轴同步到 root
//
// 同时把自己移到活动列表末尾，保证同一次 tick 中 root 先于本动画推进。
// root 为 nil 时解除同步。
func (a *Animatable) SyncWith(root *Animatable) *Animatable {
	a.syncRoot = root
	if root != nil && a.scheduler != nil {
		a.scheduler.moveToEnd(a)
	}
	return a
}

// SetWeight 设置权重，限制在 [0,1]，-1 表示直接写入
func (a *Animatable) SetWeight(weight float64) {
	switch {
	case weight == -1:
	case weight < 0:
		weight = 0
	case weight > 1:
		weight = 1
	}
	a.weight = weight
}

// SetSpeedRatio 设置播放速度，已在播放的动画保持帧连续
func (a *Animatable) SetSpeedRatio(ratio float64) {
	for _, ra := range a.runtimeAnimations {
		ra.prepareForSpeedRatioChange(ratio)
	}
	a.speedRatio = ratio
}

// EnableBlending 为所有运行时动画开启混合窗口
func (a *Animatable) EnableBlending(speed float64) {
	for _, ra := range a.runtimeAnimations {
		b := ra.track.Blending()
		b.Enabled = true
		b.Speed = speed
		ra.blendingOverride = &b
	}
}

// DisableBlending 关闭所有运行时动画的混合窗口
func (a *Animatable) DisableBlending() {
	for _, ra := range a.runtimeAnimations {
		ra.blendingOverride = &track.Blending{}
	}
}

// ============================================================================
// 控制
// ============================================================================

// Pause 暂停，暂停期间时间轴不前进
// 暂停时刻取调度器当前的累计时间
func (a *Animatable) Pause() {
	if a.paused {
		return
	}
	a.paused = true
	if a.scheduler != nil {
		a.pausedDelay = a.scheduler.animationTime
		a.hasPausedDelay = true
	}
}

// Restart 从暂停处恢复，暂停的时长从本地时间轴中扣除
func (a *Animatable) Restart() {
	if !a.paused {
		return
	}
	a.paused = false
	if a.scheduler == nil || !a.hasPausedDelay {
		return
	}
	if a.hasLocalDelayOffset {
		a.localDelayOffset += a.scheduler.animationTime - a.pausedDelay
	}
	a.hasPausedDelay = false
}

// Reset 回到起点
func (a *Animatable) Reset() {
	for _, ra := range a.runtimeAnimations {
		ra.Reset(true)
	}
	a.hasLocalDelayOffset = false
	a.hasPausedDelay = false
	a.hasManualJump = false
	a.hasFrameToSync = false
	a.endRaised = false
}

// GoToFrame 跳转到指定帧
//
// 立即把所有运行时动画写到该帧，并记录一次性的时间修正，
// 使下一次 tick 从该帧继续推进。
func (a *Animatable) GoToFrame(frame float64) {
	if len(a.runtimeAnimations) > 0 {
		first := a.runtimeAnimations[0]
		if !a.hasFrameToSync {
			a.frameToSyncFromJump = first.CurrentFrame()
			a.hasFrameToSync = true
		}
		delay := 0.0
		if a.speedRatio != 0 {
			delay = (frame - a.frameToSyncFromJump) / first.track.FramePerSecond() * 1000 / a.speedRatio
		}
		a.manualJumpDelay = -delay
		a.hasManualJump = true
	}
	for _, ra := range a.runtimeAnimations {
		ra.GoToFrame(frame)
	}
}

// Stop 停止动画
//
// name 和 mask 都为空时停止整个请求；否则只移除轨道名等于 name
// 且目标满足 mask 的运行时动画，全部移除后整个请求结束。
func (a *Animatable) Stop(name string, mask func(target.Target) bool) {
	if a.scheduler == nil || !a.scheduler.contains(a) {
		return
	}

	if name == "" && mask == nil {
		a.scheduler.Remove(a)
		a.disposeAnimations()
		a.raiseEnd()
		a.clearObservers()
		return
	}

	kept := make([]*RuntimeAnimation, 0, len(a.runtimeAnimations))
	for _, ra := range a.runtimeAnimations {
		if (name != "" && ra.track.Name() != name) || (mask != nil && !mask(ra.target)) {
			kept = append(kept, ra)
			continue
		}
		ra.Dispose()
	}
	a.runtimeAnimations = kept

	if len(kept) == 0 {
		a.scheduler.Remove(a)
		a.raiseEnd()
		a.clearObservers()
	}
}

// ============================================================================
// 推进
// ============================================================================

// animate 推进到调度器时间轴上的 delay（毫秒）
// 返回是否仍在播放
func (a *Animatable) animate(delay float64) bool {
	if a.paused {
		a.started = false
		if !a.hasPausedDelay {
			a.pausedDelay = delay
			a.hasPausedDelay = true
		}
		return true
	}

	switch {
	case !a.hasLocalDelayOffset:
		a.localDelayOffset = delay
		a.hasLocalDelayOffset = true
		a.hasPausedDelay = false
	case a.hasPausedDelay:
		a.localDelayOffset += delay - a.pausedDelay
		a.hasPausedDelay = false
	}

	if a.hasManualJump {
		a.localDelayOffset += a.manualJumpDelay
		a.hasManualJump = false
		a.hasFrameToSync = false
	}

	if a.weight == 0 {
		return true
	}

	// Stop 会替换切片而不是原地修改，遍历旧切片是安全的
	anims := a.runtimeAnimations
	running := false
	for _, ra := range anims {
		if ra.animate(delay-a.localDelayOffset, a.FromFrame, a.ToFrame, a.Loop, a.speedRatio, a.weight) {
			running = true
		}
	}
	a.started = running

	if !running {
		a.finish()
	}
	return running
}

// finish 所有运行时动画都已结束
func (a *Animatable) finish() {
	if !a.DisposeOnEnd {
		if !a.endRaised {
			a.raiseEnd()
		}
		return
	}
	if a.scheduler != nil && !a.scheduler.Remove(a) {
		// 回调中已被 Stop
		return
	}
	a.disposeAnimations()
	a.raiseEnd()
	a.clearObservers()
}

func (a *Animatable) raiseEnd() {
	a.endRaised = true
	if Verbose {
		log.Printf("[Animatable] 动画结束: %d 条轨道", len(a.runtimeAnimations))
	}
	a.OnAnimationEnd.Notify(a)
}

func (a *Animatable) disposeAnimations() {
	for _, ra := range a.runtimeAnimations {
		ra.Dispose()
	}
}

func (a *Animatable) clearObservers() {
	a.OnAnimationEnd.Clear()
	a.OnAnimationLoop.Clear()
}
