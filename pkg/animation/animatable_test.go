package animation

import (
	"math"
	"testing"

	"github.com/decker502/animrt/pkg/target"
	"github.com/decker502/animrt/pkg/track"
	"github.com/decker502/animrt/pkg/value"
)

// TestAnimatable_SyncWithRoot 从属动画的帧由根动画的主帧线性映射得到
func TestAnimatable_SyncWithRoot(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	rootBag := newBag(0)
	slaveBag := newBag(0)

	root := s.BeginDirectAnimation(rootBag, []track.Track{linearTrack(t, "root", "x")}, PlayOptions{From: 20, To: 80, Loop: true})

	long, err := track.New("slave", "x", value.KindFloat, 30, []track.Key{
		{Frame: 0, Value: value.Float(0)},
		{Frame: 200, Value: value.Float(20)},
	})
	if err != nil {
		t.Fatalf("track.New failed: %v", err)
	}
	slave := s.BeginDirectAnimation(slaveBag, []track.Track{long}, PlayOptions{From: 0, To: 200, Loop: true})
	slave.SyncWith(root)

	for _, elapsed := range []float64{100, 170, 230} {
		s.Tick(elapsed)
		want := slave.FromFrame + (slave.ToFrame-slave.FromFrame)*
			((root.MasterFrame()-root.FromFrame)/(root.ToFrame-root.FromFrame))
		if got := slave.MasterFrame(); !approx(got, want) {
			t.Errorf("after %vms: expected slave frame %v, got %v", elapsed, want, got)
		}
	}
}

// TestAnimatable_SyncWithMovesToEnd SyncWith 把从属动画移到活动列表末尾
func TestAnimatable_SyncWithMovesToEnd(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	opts := PlayOptions{From: 0, To: 100, Loop: true}
	slave := s.BeginDirectAnimation(newBag(0), []track.Track{linearTrack(t, "slave", "x")}, opts)
	root := s.BeginDirectAnimation(newBag(0), []track.Track{linearTrack(t, "root", "x")}, opts)

	slave.SyncWith(root)

	active := s.Active()
	if len(active) != 2 || active[0] != root || active[1] != slave {
		t.Fatal("Expected root to precede its dependent in the active list")
	}

	s.Tick(250)
	if !approx(slave.MasterFrame(), root.MasterFrame()) {
		t.Errorf("Expected slave frame %v to follow root in the same tick, got %v",
			root.MasterFrame(), slave.MasterFrame())
	}
}

// TestAnimatable_PauseAndRestart 暂停期间时间轴不前进
func TestAnimatable_PauseAndRestart(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	bag := newBag(0)
	a := s.BeginDirectAnimation(bag, []track.Track{linearTrack(t, "move", "x")}, PlayOptions{From: 0, To: 100})

	s.Tick(200)
	a.Pause()
	s.Tick(150)
	s.Tick(150)

	if !a.IsPaused() {
		t.Fatal("Expected animatable to be paused")
	}
	if got := a.MasterFrame(); !approx(got, 20) {
		t.Errorf("Expected frame to hold at 20 while paused, got %v", got)
	}
	if len(s.Active()) != 1 {
		t.Error("Expected paused animatable to stay active")
	}

	a.Restart()
	s.Tick(100)
	if got := a.MasterFrame(); !approx(got, 30) {
		t.Errorf("Expected frame 30 after resuming, got %v", got)
	}
}

// TestAnimatable_ZeroWeightSuspends 权重为 0 时不推进也不写入
func TestAnimatable_ZeroWeightSuspends(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	bag := newBag(7)
	a := s.BeginWeightedAnimation(bag, []track.Track{linearTrack(t, "move", "x")}, 0, PlayOptions{From: 0, To: 100})

	s.Tick(500)

	if got := floatOf(t, bag.Get("x")); got != 7 {
		t.Errorf("Expected x untouched, got %v", got)
	}
	if a.MasterFrame() != 0 {
		t.Errorf("Expected no frame advance, got %v", a.MasterFrame())
	}
	if len(s.Active()) != 1 {
		t.Error("Expected suspended animatable to stay active")
	}
}

// TestAnimatable_SetWeightClamps 权重限制在 [0,1]，-1 保留
func TestAnimatable_SetWeightClamps(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	a := s.BeginDirectAnimation(newBag(0), nil, PlayOptions{})

	tests := []struct {
		in, want float64
	}{
		{0.5, 0.5},
		{1.5, 1},
		{-0.3, 0},
		{-1, -1},
		{0, 0},
	}
	for _, tt := range tests {
		a.SetWeight(tt.in)
		if a.Weight() != tt.want {
			t.Errorf("SetWeight(%v): expected %v, got %v", tt.in, tt.want, a.Weight())
		}
	}
}

// TestAnimatable_GoToFrameThenContinue 跳转后下一帧从目标帧继续推进
func TestAnimatable_GoToFrameThenContinue(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	bag := newBag(0)
	a := s.BeginDirectAnimation(bag, []track.Track{linearTrack(t, "move", "x")}, PlayOptions{From: 0, To: 100})

	s.Tick(100) // 第 10 帧
	a.GoToFrame(60)
	if got := floatOf(t, bag.Get("x")); !approx(got, 6) {
		t.Errorf("Expected immediate write of frame 60, got %v", got)
	}

	s.Tick(100)
	if got := a.MasterFrame(); !approx(got, 70) {
		t.Errorf("Expected frame 70 after jump, got %v", got)
	}
}

// TestAnimatable_GoToFrameTwiceBeforeTick 两次跳转以第一次跳转前的帧为基准
func TestAnimatable_GoToFrameTwiceBeforeTick(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	a := s.BeginDirectAnimation(newBag(0), []track.Track{linearTrack(t, "move", "x")}, PlayOptions{From: 0, To: 100})

	s.Tick(100)
	a.GoToFrame(60)
	a.GoToFrame(40)
	s.Tick(100)

	if got := a.MasterFrame(); !approx(got, 50) {
		t.Errorf("Expected frame 50, got %v", got)
	}
}

// TestAnimatable_GoToFrameZeroSpeed 速度为 0 时跳转不计算时间修正
func TestAnimatable_GoToFrameZeroSpeed(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	a := s.BeginDirectAnimation(newBag(0), []track.Track{linearTrack(t, "move", "x")}, PlayOptions{From: 0, To: 100, Loop: true})
	a.SetSpeedRatio(0)

	a.GoToFrame(40)
	if got := a.MasterFrame(); got != 40 {
		t.Errorf("Expected frame 40, got %v", got)
	}
	s.Tick(100)
	if got := a.MasterFrame(); math.IsNaN(got) || math.IsInf(got, 0) {
		t.Errorf("Expected a finite frame with zero speed, got %v", got)
	}
}

// TestAnimatable_StopByName 按名称停止，全部移除后整个请求结束
func TestAnimatable_StopByName(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	bag := target.NewBag(map[string]value.Value{"x": value.Float(0), "y": value.Float(0)})
	a := s.BeginDirectAnimation(bag, []track.Track{
		linearTrack(t, "walk", "x"),
		linearTrack(t, "bob", "y"),
	}, PlayOptions{From: 0, To: 100, Loop: true})

	ended := 0
	a.OnAnimationEnd.Add(func(*Animatable) { ended++ })

	a.Stop("walk", nil)
	if len(a.RuntimeAnimations()) != 1 || a.AnimationByName("bob") == nil {
		t.Fatal("Expected only the 'bob' runtime animation to remain")
	}
	if ended != 0 || len(s.Active()) != 1 {
		t.Error("Expected animatable to stay active after partial stop")
	}

	a.Stop("bob", nil)
	if ended != 1 {
		t.Errorf("Expected end notification once, got %d", ended)
	}
	if len(s.Active()) != 0 {
		t.Error("Expected animatable removed when no runtime animations remain")
	}
	if a.OnAnimationEnd.HasObservers() {
		t.Error("Expected observers to be cleared after stop")
	}
}

// TestAnimatable_StopByMask 按目标过滤停止层级动画
func TestAnimatable_StopByMask(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	root := newBag(0)
	left, right := newBag(0), newBag(0)
	root.AddChild(left)
	root.AddChild(right)

	a := s.BeginDirectHierarchyAnimation(root, true, []track.Track{linearTrack(t, "move", "x")}, PlayOptions{From: 0, To: 100, Loop: true})
	if len(a.RuntimeAnimations()) != 3 {
		t.Fatalf("Expected one runtime animation for the root and each child, got %d", len(a.RuntimeAnimations()))
	}

	a.Stop("", func(tg target.Target) bool { return tg == target.Target(left) })
	s.Tick(500)

	if got := floatOf(t, left.Get("x")); got != 0 {
		t.Errorf("Expected left child untouched after stop, got %v", got)
	}
	if got := floatOf(t, right.Get("x")); !approx(got, 5) {
		t.Errorf("Expected right child animated to 5, got %v", got)
	}
	if got := floatOf(t, root.Get("x")); !approx(got, 5) {
		t.Errorf("Expected root animated to 5, got %v", got)
	}
}

// TestAnimatable_StopAll 不带参数停止整个请求
func TestAnimatable_StopAll(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	a := s.BeginDirectAnimation(newBag(0), []track.Track{linearTrack(t, "move", "x")}, PlayOptions{From: 0, To: 100, Loop: true})
	ra := a.RuntimeAnimations()[0]

	ended := 0
	a.OnAnimationEnd.Add(func(*Animatable) { ended++ })
	a.Stop("", nil)
	a.Stop("", nil)

	if ended != 1 {
		t.Errorf("Expected a single end notification, got %d", ended)
	}
	if ra.Target() != nil {
		t.Error("Expected runtime animations disposed")
	}
}

// TestAnimatable_KeepOnEnd 不随结束释放时只通知一次，Reset 后可重播
func TestAnimatable_KeepOnEnd(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	bag := newBag(0)
	a := s.BeginDirectAnimation(bag, []track.Track{linearTrack(t, "move", "x")}, PlayOptions{From: 0, To: 100, KeepOnEnd: true})

	ended := 0
	a.OnAnimationEnd.Add(func(*Animatable) { ended++ })

	s.Tick(1000)
	s.Tick(100)
	if ended != 1 {
		t.Errorf("Expected one end notification, got %d", ended)
	}
	if len(s.Active()) != 1 {
		t.Error("Expected animatable kept in the active list")
	}

	a.Reset()
	s.Tick(100)
	s.Tick(500)
	if got := a.MasterFrame(); !approx(got, 50) {
		t.Errorf("Expected replay at frame 50, got %v", got)
	}
}

// TestAnimatable_DisposeOnEndClearsObservers 结束释放后清空订阅者
func TestAnimatable_DisposeOnEndClearsObservers(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	a := s.BeginDirectAnimation(newBag(0), []track.Track{linearTrack(t, "move", "x")}, PlayOptions{From: 0, To: 100})

	ended := 0
	a.OnAnimationEnd.Add(func(*Animatable) { ended++ })
	a.OnAnimationLoop.Add(func(*Animatable) {})

	s.Tick(2000)

	if ended != 1 {
		t.Errorf("Expected end notification, got %d", ended)
	}
	if a.OnAnimationEnd.HasObservers() || a.OnAnimationLoop.HasObservers() {
		t.Error("Expected observers cleared after disposal")
	}
	if len(s.Active()) != 0 {
		t.Error("Expected animatable removed from scheduler")
	}
}

// TestAnimatable_EnableBlending 运行中开启混合窗口
func TestAnimatable_EnableBlending(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	bag := newBag(100)
	a := s.BeginDirectAnimation(bag, []track.Track{constantTrack(t, "hold", "x", value.Float(0))}, PlayOptions{From: 0, To: 100, Loop: true})
	a.EnableBlending(0.5)

	s.Tick(10)
	s.Tick(10)
	if got := floatOf(t, bag.Get("x")); !approx(got, 50) {
		t.Errorf("Expected half-way blend 50, got %v", got)
	}

	a.DisableBlending()
	s.Tick(10)
	if got := floatOf(t, bag.Get("x")); got != 0 {
		t.Errorf("Expected raw value after disabling blending, got %v", got)
	}
}

// TestAnimatable_Lookup 按名称和属性查找运行时动画
func TestAnimatable_Lookup(t *testing.T) {
	s := NewScheduler(DefaultConfig())
	bag := target.NewBag(map[string]value.Value{"x": value.Float(0), "y": value.Float(0)})
	a := s.BeginDirectAnimation(bag, []track.Track{
		linearTrack(t, "walk", "x"),
		linearTrack(t, "bob", "y"),
	}, PlayOptions{From: 0, To: 100, Additive: true})

	if ra := a.AnimationByTargetProperty("y"); ra == nil || ra.Track().Name() != "bob" {
		t.Error("Expected to find 'bob' by property y")
	}
	if a.AnimationByName("missing") != nil {
		t.Error("Expected nil for unknown name")
	}
	if !a.IsAdditive() || !a.RuntimeAnimations()[0].IsAdditive() {
		t.Error("Expected additive flag to propagate")
	}
}
