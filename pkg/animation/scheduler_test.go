package animation

import (
	"testing"

	"github.com/decker502/animrt/pkg/track"
)

// TestScheduler_FixedStepAndTimeScale 固定步长和时间缩放
func TestScheduler_FixedStepAndTimeScale(t *testing.T) {
	tests := []struct {
		name      string
		fixed     bool
		scale     float64
		elapsed   float64
		wantDelta float64
	}{
		{"measured", false, 1, 33, 33},
		{"fixed step ignores elapsed", true, 1, 1000, 16},
		{"time scale", false, 2, 100, 200},
		{"fixed step with time scale", true, 0.5, 1000, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.FixedStep = tt.fixed
			cfg.TimeScale = tt.scale
			s := NewScheduler(cfg)

			s.Tick(tt.elapsed)
			s.Tick(tt.elapsed)

			if s.DeltaTime() != tt.wantDelta {
				t.Errorf("Expected delta %v, got %v", tt.wantDelta, s.DeltaTime())
			}
			if s.AnimationTime() != 2*tt.wantDelta {
				t.Errorf("Expected timeline %v, got %v", 2*tt.wantDelta, s.AnimationTime())
			}
		})
	}
}

// TestScheduler_UpdateSeconds Update 以秒为单位
func TestScheduler_UpdateSeconds(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	a := s.BeginDirectAnimation(newBag(0), []track.Track{linearTrack(t, "move", "x")}, PlayOptions{From: 0, To: 100})

	s.Update(0.25)

	if !approx(a.MasterFrame(), 25) {
		t.Errorf("Expected frame 25, got %v", a.MasterFrame())
	}
}

// TestScheduler_AnimationsDisabled 关闭动画时 Tick 不做任何事
func TestScheduler_AnimationsDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AnimationsEnabled = false
	s := NewScheduler(cfg)
	bag := newBag(3)
	s.BeginDirectAnimation(bag, []track.Track{linearTrack(t, "move", "x")}, PlayOptions{From: 0, To: 100})

	s.Tick(500)

	if s.AnimationTime() != 0 {
		t.Errorf("Expected timeline unchanged, got %v", s.AnimationTime())
	}
	if got := floatOf(t, bag.Get("x")); got != 3 {
		t.Errorf("Expected x untouched, got %v", got)
	}

	s.SetAnimationsEnabled(true)
	s.Tick(500)
	if got := floatOf(t, bag.Get("x")); !approx(got, 5) {
		t.Errorf("Expected x = 5 after enabling, got %v", got)
	}
}

// TestScheduler_RegisterMidTimeline 中途注册的动画从注册时刻开始计时
func TestScheduler_RegisterMidTimeline(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	s.Tick(1000)

	a := s.BeginDirectAnimation(newBag(0), []track.Track{linearTrack(t, "move", "x")}, PlayOptions{From: 0, To: 100})
	s.Tick(500)

	if !approx(a.MasterFrame(), 50) {
		t.Errorf("Expected frame 50, got %v", a.MasterFrame())
	}
}

// TestScheduler_RemovalDuringIteration 推进中移除当前项不会跳过下一项
func TestScheduler_RemovalDuringIteration(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	opts := PlayOptions{From: 0, To: 100, Loop: true}

	// first 在第一帧就结束（区间为 0）
	first := s.BeginDirectAnimation(newBag(0), []track.Track{linearTrack(t, "first", "x")}, PlayOptions{From: 0, To: 0})
	second := s.BeginDirectAnimation(newBag(0), []track.Track{linearTrack(t, "second", "x")}, opts)
	third := s.BeginDirectAnimation(newBag(0), []track.Track{linearTrack(t, "third", "x")}, opts)

	// first 结束时顺带停止 second，third 仍要在同一帧推进
	first.OnAnimationEnd.Add(func(*Animatable) { second.Stop("", nil) })

	s.Tick(300)

	if got := len(s.Active()); got != 1 || s.Active()[0] != third {
		t.Fatalf("Expected only third to remain active, got %d", got)
	}
	if !approx(third.MasterFrame(), 30) {
		t.Errorf("Expected third ticked to frame 30 in the same pass, got %v", third.MasterFrame())
	}
}

// TestScheduler_EachAnimatableTickedOnce 同一帧内重新排序不会重复推进
func TestScheduler_EachAnimatableTickedOnce(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	opts := PlayOptions{From: 0, To: 100, Loop: true}
	a := s.BeginDirectAnimation(newBag(0), []track.Track{linearTrack(t, "a", "x")}, opts)
	b := s.BeginDirectAnimation(newBag(0), []track.Track{linearTrack(t, "b", "x")}, opts)

	ticks := 0
	tr := linearTrack(t, "probe", "x", track.WithEvents(track.Event{
		Name:  "resync",
		Frame: 0,
		Action: func(float64) {
			ticks++
			// 事件回调中把 a 移到末尾
			a.SyncWith(b)
		},
	}))
	a.AppendAnimations(newBag(0), []track.Track{tr})

	s.Tick(100)

	if ticks != 1 {
		t.Errorf("Expected probe event once, got %d", ticks)
	}
	if !approx(a.MasterFrame(), 10) || !approx(b.MasterFrame(), 10) {
		t.Errorf("Expected both at frame 10, got %v and %v", a.MasterFrame(), b.MasterFrame())
	}
}

// TestScheduler_AnimatablesForTargetAndStop 按目标查询和停止
func TestScheduler_AnimatablesForTargetAndStop(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	bag, other := newBag(0), newBag(0)
	opts := PlayOptions{From: 0, To: 100, Loop: true}
	s.BeginDirectAnimation(bag, []track.Track{linearTrack(t, "a", "x")}, opts)
	s.BeginDirectAnimation(bag, []track.Track{linearTrack(t, "b", "x")}, opts)
	s.BeginDirectAnimation(other, []track.Track{linearTrack(t, "c", "x")}, opts)

	if got := len(s.AnimatablesForTarget(bag)); got != 2 {
		t.Fatalf("Expected 2 animatables for target, got %d", got)
	}

	s.StopAnimation(bag, "a", nil)
	if got := len(s.AnimatablesForTarget(bag)); got != 1 {
		t.Errorf("Expected 1 animatable after stopping 'a', got %d", got)
	}

	s.BeginDirectAnimation(bag, []track.Track{linearTrack(t, "d", "x")}, PlayOptions{From: 0, To: 100, StopCurrent: true})
	if got := len(s.AnimatablesForTarget(bag)); got != 1 {
		t.Errorf("Expected StopCurrent to leave only the new animatable, got %d", got)
	}
	if got := len(s.AnimatablesForTarget(other)); got != 1 {
		t.Errorf("Expected other target untouched, got %d", got)
	}
}

// TestScheduler_FlushOncePerTick 每帧只提交一次，且 tick 之间不残留
func TestScheduler_FlushOncePerTick(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	bag := newBag(0)
	opts := PlayOptions{From: 0, To: 100, Loop: true}
	s.BeginWeightedAnimation(bag, []track.Track{linearTrack(t, "a", "x")}, 0.5, opts)
	s.BeginWeightedAnimation(bag, []track.Track{linearTrack(t, "b", "x")}, 0.5, opts)

	for i := 1; i <= 3; i++ {
		s.Tick(16)
		if bag.DirtyCount("x") != i {
			t.Errorf("tick %d: expected %d commits, got %d", i, i, bag.DirtyCount("x"))
		}
		if s.PendingLateBindings() != 0 {
			t.Errorf("tick %d: expected empty resolver after tick", i)
		}
	}
}

// TestScheduler_Dispose 释放调度器时停止所有动画
func TestScheduler_Dispose(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	opts := PlayOptions{From: 0, To: 100, Loop: true}
	ended := 0
	for i := 0; i < 3; i++ {
		a := s.BeginDirectAnimation(newBag(0), []track.Track{linearTrack(t, "move", "x")}, opts)
		a.OnAnimationEnd.Add(func(*Animatable) { ended++ })
	}

	s.Dispose()

	if ended != 3 {
		t.Errorf("Expected 3 end notifications, got %d", ended)
	}
	if len(s.Active()) != 0 {
		t.Error("Expected no active animatables after dispose")
	}
}
