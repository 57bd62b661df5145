package animation

import (
	"log"
	"math"

	"github.com/decker502/animrt/pkg/target"
	"github.com/decker502/animrt/pkg/track"
	"github.com/decker502/animrt/pkg/value"
)

// frameRange 偏移缓存的键
type frameRange struct {
	from, to float64
}

// runtimeEvent 事件的逐实例副本
type runtimeEvent struct {
	track.Event
	isDone bool
}

// RuntimeAnimation 将一条轨道绑定到一个具体目标上的播放游标
//
// 每次 tick 由所属 Animatable 调用 animate()，推进当前帧、计算值，
// 然后直接写入目标属性（weight == -1）或交给迟绑定混合器。
type RuntimeAnimation struct {
	track  track.Track
	target target.Target
	host   *Animatable

	property   target.Property
	targetPath string
	keys       []track.Key
	minFrame   float64
	maxFrame   float64
	minValue   value.Value
	maxValue   value.Value

	currentFrame  float64
	currentValue  value.Value
	originalValue value.Value
	weight        float64
	stopped       bool
	// 是否已产生过帧，首帧不做循环检测
	started bool

	state           track.State
	offsetsCache    map[frameRange]value.Value
	highLimitsCache map[frameRange]value.Value

	// 混合窗口
	blendingFactor   float64
	blendOrigin      value.Value
	blendingOverride *track.Blending

	events []*runtimeEvent

	// 速度变化时保持帧连续
	ratioOffset           float64
	previousElapsed       float64
	previousAbsoluteFrame float64
}

func newRuntimeAnimation(t target.Target, tr track.Track, host *Animatable) *RuntimeAnimation {
	ra := &RuntimeAnimation{
		track:           tr,
		target:          t,
		host:            host,
		keys:            tr.Keys(),
		weight:          -1,
		offsetsCache:    make(map[frameRange]value.Value),
		highLimitsCache: make(map[frameRange]value.Value),
	}
	ra.cloneEvents()

	if len(ra.keys) > 0 {
		first, last := ra.keys[0], ra.keys[len(ra.keys)-1]
		ra.minFrame, ra.minValue = first.Frame, first.Value
		ra.maxFrame, ra.maxValue = last.Frame, last.Value
	}

	path := tr.TargetProperty()
	p, ok := t.Property(path)
	if ok {
		if cur := p.Get(); cur == nil || cur.Kind() != tr.DataType() {
			ok = false
		}
	}
	if !ok || len(ra.keys) == 0 {
		if Verbose {
			log.Printf("[RuntimeAnimation] 轨道 %q 无法解析属性 %q，已停止", tr.Name(), path)
		}
		ra.stopped = true
		return ra
	}

	ra.property = p
	ra.targetPath = path
	ra.originalValue = p.Get()
	if rp, ok := t.(target.RestPoser); ok {
		if rest, ok := rp.RestPose(path); ok && rest != nil && rest.Kind() == tr.DataType() {
			ra.originalValue = rest
		}
	}
	ra.state.LoopMode = ra.loopMode()
	return ra
}

func (ra *RuntimeAnimation) cloneEvents() {
	src := ra.track.Events()
	ra.events = make([]*runtimeEvent, 0, len(src))
	for _, ev := range src {
		ra.events = append(ra.events, &runtimeEvent{Event: ev})
	}
}

// ============================================================================
// 访问器
// ============================================================================

// Track 返回绑定的轨道
func (ra *RuntimeAnimation) Track() track.Track { return ra.track }

// Target 返回绑定的目标（释放后为 nil）
func (ra *RuntimeAnimation) Target() target.Target { return ra.target }

// TargetPath 返回解析成功的属性路径，解析失败时为空
func (ra *RuntimeAnimation) TargetPath() string { return ra.targetPath }

// CurrentFrame 当前帧
func (ra *RuntimeAnimation) CurrentFrame() float64 { return ra.currentFrame }

// CurrentValue 最近一次计算出的值（混合窗口已应用）
func (ra *RuntimeAnimation) CurrentValue() value.Value { return ra.currentValue }

// OriginalValue 创建时捕获的原始值（静止姿态优先）
func (ra *RuntimeAnimation) OriginalValue() value.Value { return ra.originalValue }

// Weight 最近一次写入使用的权重，-1 表示直接写入
func (ra *RuntimeAnimation) Weight() float64 { return ra.weight }

// IsStopped 是否已停止（播放结束、被释放或属性无法解析）
func (ra *RuntimeAnimation) IsStopped() bool { return ra.stopped }

// IsAdditive 是否为叠加动画
func (ra *RuntimeAnimation) IsAdditive() bool {
	return ra.host != nil && ra.host.isAdditive
}

// ============================================================================
// 生命周期
// ============================================================================

// Reset 重置播放状态
// restoreOriginal 为 true 时把原始值写回目标
func (ra *RuntimeAnimation) Reset(restoreOriginal bool) {
	if restoreOriginal && ra.property != nil && ra.originalValue != nil {
		ra.property.Set(ra.originalValue)
		ra.markDirty()
	}

	clear(ra.offsetsCache)
	clear(ra.highLimitsCache)
	ra.currentFrame = 0
	ra.started = false
	ra.blendingFactor = 0
	ra.blendOrigin = nil
	ra.ratioOffset = 0
	ra.previousElapsed = 0
	ra.previousAbsoluteFrame = 0
	ra.state = track.State{LoopMode: ra.loopMode()}
	for _, ev := range ra.events {
		ev.isDone = false
	}
	if ra.property != nil {
		ra.stopped = false
	}
}

// Dispose 释放对目标、轨道事件和宿主的引用
func (ra *RuntimeAnimation) Dispose() {
	ra.stopped = true
	ra.events = nil
	ra.offsetsCache = nil
	ra.highLimitsCache = nil
	ra.property = nil
	ra.blendOrigin = nil
	ra.target = nil
	ra.host = nil
}

// ============================================================================
// 设置与覆盖
// ============================================================================

func (ra *RuntimeAnimation) properties() *track.Properties {
	if pp, ok := ra.target.(target.PropertiesProvider); ok {
		return pp.AnimationProperties()
	}
	return nil
}

// loopMode 目标覆盖优先于轨道设置
func (ra *RuntimeAnimation) loopMode() track.LoopMode {
	if p := ra.properties(); p != nil && p.LoopMode != nil {
		return *p.LoopMode
	}
	return ra.track.LoopMode()
}

// blending 优先级：目标覆盖 > Animatable.EnableBlending > 轨道
func (ra *RuntimeAnimation) blending() track.Blending {
	if p := ra.properties(); p != nil && p.Blending != nil {
		return *p.Blending
	}
	if ra.blendingOverride != nil {
		return *ra.blendingOverride
	}
	return ra.track.Blending()
}

func (ra *RuntimeAnimation) matrixDecompose() bool {
	if ra.host == nil || ra.host.scheduler == nil {
		return true
	}
	return ra.host.scheduler.config.MatrixDecompose
}

// rangeOffsets 返回 (from, to) 区间的每圈偏移和终点值，按区间缓存
// 计算时临时使用 Cycle 模式和 0 重复次数，避免递归叠加
func (ra *RuntimeAnimation) rangeOffsets(from, to float64) (offset, highLimit value.Value) {
	key := frameRange{from, to}
	if off, ok := ra.offsetsCache[key]; ok {
		return off, ra.highLimitsCache[key]
	}

	scratch := track.State{LoopMode: track.LoopCycle}
	fromValue := ra.track.Interpolate(from, &scratch)
	toValue := ra.track.Interpolate(to, &scratch)

	offset = value.Sub(toValue, fromValue)
	highLimit = toValue
	ra.offsetsCache[key] = offset
	ra.highLimitsCache[key] = highLimit
	return offset, highLimit
}

// prepareForSpeedRatioChange 速度变化前调整 ratioOffset，使下一帧的位置连续
func (ra *RuntimeAnimation) prepareForSpeedRatioChange(newSpeedRatio float64) {
	newRatio := ra.previousElapsed * (ra.track.FramePerSecond() * newSpeedRatio) / 1000
	ra.ratioOffset = ra.previousAbsoluteFrame - newRatio
}

// ============================================================================
// 播放
// ============================================================================

// animate 推进到 elapsed（毫秒，相对 Animatable 起点）并写出值
// 返回动画是否仍在播放
func (ra *RuntimeAnimation) animate(elapsed, from, to float64, loop bool, speedRatio, weight float64) bool {
	if ra.property == nil {
		ra.stopped = true
		return false
	}

	running := true
	if from < ra.minFrame || from > ra.maxFrame {
		from = ra.minFrame
	}
	if to < ra.minFrame || to > ra.maxFrame {
		to = ra.maxFrame
	}
	span := to - from

	ratio := elapsed*(ra.track.FramePerSecond()*speedRatio)/1000 + ra.ratioOffset
	ra.previousElapsed = elapsed
	ra.previousAbsoluteFrame = ratio

	loopMode := ra.loopMode()
	var offset, highLimit value.Value
	switch {
	case !loop && to >= from && ((ratio >= span && speedRatio > 0) || (ratio <= -span && speedRatio < 0)):
		running = false
		highLimit = ra.maxValue
	case !loop && from >= to && ((ratio <= span && speedRatio < 0) || (ratio >= -span && speedRatio > 0)):
		running = false
		highLimit = ra.minValue
	case loopMode != track.LoopCycle:
		offset, highLimit = ra.rangeOffsets(from, to)
	}
	if offset == nil {
		offset = value.Zero(ra.track.DataType())
	}

	repeatCount := 0
	if span != 0 {
		repeatCount = int(ratio / span)
	}

	var currentFrame float64
	if root := ra.syncRoot(); root != nil {
		norm := 0.0
		if rootSpan := root.ToFrame - root.FromFrame; rootSpan != 0 {
			norm = (root.MasterFrame() - root.FromFrame) / rootSpan
		}
		currentFrame = from + span*norm
	} else {
		reverse := (ratio > 0 && from > to) || (ratio < 0 && from < to)
		switch {
		case reverse && running && span != 0:
			currentFrame = to + math.Mod(ratio, span)
		case reverse:
			currentFrame = from
		case running && span != 0:
			currentFrame = from + math.Mod(ratio, span)
		default:
			currentFrame = to
		}
		if loopMode == track.LoopYoyo && running && repeatCount%2 != 0 {
			currentFrame = from + to - currentFrame
		}
	}

	var wrapped bool
	switch {
	case !ra.started:
	case loopMode == track.LoopYoyo:
		wrapped = running && repeatCount != ra.state.RepeatCount
	default:
		wrapped = (speedRatio > 0 && ra.currentFrame > currentFrame) ||
			(speedRatio < 0 && ra.currentFrame < currentFrame)
	}
	if wrapped {
		ra.onLoop()
		for _, ev := range ra.events {
			if !ev.OnlyOnce {
				ev.isDone = false
			}
		}
		ra.state.Key = 0
		if speedRatio < 0 {
			ra.state.Key = len(ra.keys) - 1
		}
	}

	ra.started = true
	ra.currentFrame = currentFrame
	ra.state.RepeatCount = repeatCount
	ra.state.LoopMode = loopMode
	ra.state.Offset = offset
	ra.state.HighLimit = highLimit

	v := ra.track.Interpolate(currentFrame, &ra.state)
	ra.setValue(v, weight)

	ra.fireEvents(currentFrame, from, span)

	if !running {
		ra.stopped = true
	}
	return running
}

func (ra *RuntimeAnimation) syncRoot() *Animatable {
	if ra.host == nil {
		return nil
	}
	return ra.host.syncRoot
}

func (ra *RuntimeAnimation) onLoop() {
	if ra.host != nil {
		ra.host.OnAnimationLoop.Notify(ra.host)
	}
}

// fireEvents 触发当前帧已越过的事件
// 一次性事件触发后从列表中移除，其余事件标记为已完成直到下一次循环
func (ra *RuntimeAnimation) fireEvents(currentFrame, from, span float64) {
	if len(ra.events) == 0 {
		return
	}
	var fired []*runtimeEvent
	removeOnce := false
	for _, ev := range ra.events {
		hit := (span >= 0 && currentFrame >= ev.Frame && ev.Frame >= from) ||
			(span < 0 && currentFrame <= ev.Frame && ev.Frame <= from)
		if hit && !ev.isDone {
			ev.isDone = true
			fired = append(fired, ev)
			removeOnce = removeOnce || ev.OnlyOnce
		}
	}
	if removeOnce {
		kept := make([]*runtimeEvent, 0, len(ra.events))
		for _, ev := range ra.events {
			if !(ev.OnlyOnce && ev.isDone) {
				kept = append(kept, ev)
			}
		}
		ra.events = kept
	}
	for _, ev := range fired {
		if ev.Action != nil {
			ev.Action(currentFrame)
		}
	}
}

// GoToFrame 跳转到指定帧并立即直接写入（不经过权重混合和混合窗口）
func (ra *RuntimeAnimation) GoToFrame(frame float64) {
	if ra.property == nil {
		return
	}
	if frame < ra.minFrame {
		frame = ra.minFrame
	} else if frame > ra.maxFrame {
		frame = ra.maxFrame
	}

	for _, ev := range ra.events {
		if !ev.OnlyOnce {
			ev.isDone = ev.Frame < frame
		}
	}

	ra.started = true
	ra.currentFrame = frame
	ra.weight = -1
	ra.currentValue = ra.track.Interpolate(frame, &ra.state)
	ra.property.Set(ra.currentValue)
	ra.markDirty()
}

// setValue 应用混合窗口，然后直接写入或登记到迟绑定混合器
func (ra *RuntimeAnimation) setValue(v value.Value, weight float64) {
	ra.weight = weight

	b := ra.blending()
	if b.Enabled && ra.blendingFactor <= 1 {
		if ra.blendOrigin == nil {
			ra.blendOrigin = ra.property.Get()
		}
		ra.currentValue = ra.blend(ra.blendOrigin, v, b)
		ra.blendingFactor += b.Speed
	} else {
		ra.currentValue = v
	}

	if weight != -1 {
		if ra.host != nil && ra.host.scheduler != nil {
			ra.host.scheduler.lateBindings.register(ra)
		}
		return
	}
	ra.property.Set(ra.currentValue)
	ra.markDirty()
}

func (ra *RuntimeAnimation) blend(origin, v value.Value, b track.Blending) value.Value {
	if origin == nil || origin.Kind() != v.Kind() {
		return v
	}
	t := ra.blendingFactor
	if t > 1 {
		t = 1
	}
	if b.Easing != nil {
		t = b.Easing(t)
	}
	if m, ok := v.(value.Matrix); ok && ra.matrixDecompose() {
		return value.DecomposeLerp(origin.(value.Matrix), m, t)
	}
	return value.Lerp(origin, v, t)
}

func (ra *RuntimeAnimation) markDirty() {
	if dm, ok := ra.target.(target.DirtyMarker); ok {
		dm.MarkAsDirty(ra.targetPath)
	}
}
