// cmd/blend_showcase/main.go
// 加权混合演示程序
//
// 用法：
//
//	go run ./cmd/blend_showcase --clips=slide,bob
//	go run ./cmd/blend_showcase --config=data/animations   # 修改 YAML 后自动重载
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/decker502/animrt"
	"github.com/decker502/animrt/pkg/animation"
	"github.com/decker502/animrt/pkg/components"
	"github.com/decker502/animrt/pkg/config"
	"github.com/decker502/animrt/pkg/ecs"
	"github.com/decker502/animrt/pkg/embedded"
	"github.com/decker502/animrt/pkg/settings"
	"github.com/decker502/animrt/pkg/systems"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"
)

var (
	configDir = flag.String("config", "", "磁盘上的配置目录（设置后监听文件变化并热重载）")
	clipsFlag = flag.String("clips", "slide,bob", "参与混合的片段（逗号分隔）")
	verbose   = flag.Bool("verbose", false, "详细日志")
)

const (
	screenWidth  = 800
	screenHeight = 600
	spriteSize   = 48
	weightStep   = 0.05
	speedStep    = 0.25
)

// Game 主游戏结构
type Game struct {
	em         *ecs.EntityManager
	animSystem *systems.AnimationSystem
	configMgr  *config.AnimationConfigManager
	settings   *settings.SettingsManager
	watcher    *config.Watcher

	entity   ecs.EntityID
	clips    []string
	selected int
	paused   bool
	showHelp bool
	status   string

	// 由监听 goroutine 设置，在 Update 中消费
	reloaded atomic.Bool

	sprite *ebiten.Image
	drawOp ebiten.DrawImageOptions
}

// NewGame 创建演示实例
func NewGame() (*Game, error) {
	cm, err := loadConfig()
	if err != nil {
		return nil, err
	}

	gm, err := gdata.Open(gdata.Config{AppName: "animrt_blend_showcase"})
	if err != nil {
		log.Printf("[blend_showcase] 警告: 无法打开存储: %v (设置不会保存)", err)
		gm = nil
	}
	sm := settings.NewSettingsManager(gm)

	scheduler := animation.NewScheduler(cm.SchedulerConfig().ToAnimationConfig())
	sm.Apply(scheduler)

	em := ecs.NewEntityManager()
	g := &Game{
		em:         em,
		animSystem: systems.NewAnimationSystem(em, scheduler, cm),
		configMgr:  cm,
		settings:   sm,
		clips:      splitList(*clipsFlag),
		showHelp:   true,
		sprite:     ebiten.NewImage(spriteSize, spriteSize),
	}
	g.sprite.Fill(color.White)
	g.animSystem.EnableCommandCleanup(1)
	g.animSystem.SetEventHandlers(config.EventHandlers{
		"half_turn": func(frame float64) { g.setStatus(fmt.Sprintf("事件 half_turn @ %.0f", frame)) },
		"faded":     func(frame float64) { g.setStatus(fmt.Sprintf("事件 faded @ %.0f", frame)) },
	})

	g.entity = em.CreateEntity()
	em.AddComponent(g.entity, components.NewTransformComponent())
	em.AddComponent(g.entity, components.NewTintComponent())

	if *configDir != "" {
		cm.OnReload(func() { g.reloaded.Store(true) })
		if g.watcher, err = cm.Watch(*configDir); err != nil {
			log.Printf("[blend_showcase] 警告: 无法监听配置目录: %v", err)
		}
	}

	if err := g.restart(); err != nil {
		return nil, err
	}
	return g, nil
}

func loadConfig() (*config.AnimationConfigManager, error) {
	if *configDir != "" {
		return config.NewAnimationConfigManager(os.DirFS(*configDir), ".")
	}
	embedded.Init(animrt.DataFS)
	fsys, err := embedded.Sub("data/animations")
	if err != nil {
		return nil, err
	}
	return config.NewAnimationConfigManager(fsys, ".")
}

// restart 停止实体上的动画，并按保存的权重重新播放每个片段
func (g *Game) restart() error {
	g.animSystem.StopClips(g.entity, nil)
	for _, clip := range g.clips {
		g.em.AddComponent(g.entity, &components.AnimationCommandComponent{
			ClipNames: []string{clip},
			Loop:      true,
			Weighted:  true,
			Weight:    g.settings.ClipWeight(clip, 1/float64(len(g.clips))),
		})
		// 命令组件每个实体只有一个，逐个处理
		g.animSystem.Update(0)
	}
	if len(g.animSystem.AnimatablesFor(g.entity)) != len(g.clips) {
		return fmt.Errorf("部分片段未能播放: %v", g.clips)
	}
	g.paused = false
	return nil
}

// playCombo 直接播放组合（不加权），并记录到设置中
func (g *Game) playCombo(name string) {
	g.em.AddComponent(g.entity, &components.AnimationCommandComponent{
		ComboName:   name,
		StopCurrent: true,
	})
	g.settings.SetLastCombo(name)
	g.setStatus("播放组合 " + name)
}

func (g *Game) setStatus(s string) {
	g.status = s
	if *verbose {
		log.Printf("[blend_showcase] %s", s)
	}
}

// Update 更新游戏状态
func (g *Game) Update() error {
	if g.reloaded.Swap(false) {
		if err := g.restart(); err != nil {
			g.setStatus("重载后播放失败: " + err.Error())
		} else {
			g.setStatus("配置已重载")
		}
	}

	g.handleInput()
	g.animSystem.Update(1 / float64(ebiten.TPS()))

	if w := g.watcher; w != nil {
		select {
		case err := <-w.Errors:
			g.setStatus("重载失败: " + err.Error())
		default:
		}
	}
	return nil
}

func (g *Game) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHelp = !g.showHelp
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) && len(g.clips) > 0 {
		g.selected = (g.selected + 1) % len(g.clips)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		g.adjustWeight(weightStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		g.adjustWeight(-weightStep)
	}

	st := g.settings.GetSettings()
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.settings.SetTimeScale(st.TimeScale + speedStep)
		g.settings.Apply(g.animSystem.Scheduler())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		g.settings.SetTimeScale(st.TimeScale - speedStep)
		g.settings.Apply(g.animSystem.Scheduler())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		g.settings.SetFixedStep(!st.FixedStep)
		g.settings.Apply(g.animSystem.Scheduler())
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if g.paused {
			g.animSystem.ResumeEntity(g.entity)
		} else {
			g.animSystem.PauseEntity(g.entity)
		}
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.restart(); err != nil {
			g.setStatus(err.Error())
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		name := st.LastCombo
		if name == "" {
			name = "patrol"
		}
		g.playCombo(name)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if err := g.settings.Save(); err != nil {
			g.setStatus("保存失败: " + err.Error())
		} else {
			g.setStatus("设置已保存")
		}
	}
}

func (g *Game) adjustWeight(delta float64) {
	if len(g.clips) == 0 {
		return
	}
	clip := g.clips[g.selected]
	w := g.settings.ClipWeight(clip, 1/float64(len(g.clips))) + delta
	g.settings.SetClipWeight(clip, w)
	g.animSystem.SetClipWeight(g.entity, []string{clip}, g.settings.ClipWeight(clip, w))
}

// Draw 绘制精灵和状态面板
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 30, G: 34, B: 40, A: 255})

	tc, ok := ecs.GetComponent[*components.TransformComponent](g.em, g.entity)
	if !ok {
		return
	}
	tint, _ := ecs.GetComponent[*components.TintComponent](g.em, g.entity)

	g.drawOp.GeoM.Reset()
	g.drawOp.ColorScale.Reset()
	g.drawOp.GeoM.Translate(-spriteSize/2, -spriteSize/2)
	g.drawOp.GeoM.Scale(tc.Scaling[0], tc.Scaling[1])
	g.drawOp.GeoM.Skew(degToRad(tc.Skew[0]), degToRad(tc.Skew[1]))
	g.drawOp.GeoM.Rotate(rotationZ(tc))
	g.drawOp.GeoM.Translate(screenWidth/2+tc.Position[0], screenHeight/2+tc.Position[1])
	if tint != nil {
		a := float32(tint.Alpha)
		g.drawOp.ColorScale.Scale(float32(tint.Color.R)*a, float32(tint.Color.G)*a, float32(tint.Color.B)*a, a)
	}
	screen.DrawImage(g.sprite, &g.drawOp)

	ebitenutil.DebugPrintAt(screen, g.statusText(tc), 10, 10)
	if g.showHelp {
		ebitenutil.DebugPrintAt(screen, helpText, 10, screenHeight-120)
	}
}

func (g *Game) statusText(tc *components.TransformComponent) string {
	var b strings.Builder
	st := g.settings.GetSettings()
	fmt.Fprintf(&b, "TPS %.0f  time scale %.2f  fixed %v  paused %v\n", ebiten.ActualTPS(), st.TimeScale, st.FixedStep, g.paused)
	for i, clip := range g.clips {
		marker := " "
		if i == g.selected {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %-12s weight %.2f\n", marker, clip, g.settings.ClipWeight(clip, 1/float64(len(g.clips))))
	}
	fmt.Fprintf(&b, "position %.1f %.1f  version %d\n", tc.Position[0], tc.Position[1], tc.Version)
	fmt.Fprintf(&b, "active %d\n", len(g.animSystem.AnimatablesFor(g.entity)))
	if g.status != "" {
		b.WriteString(g.status)
	}
	return b.String()
}

const helpText = `Tab  选择片段     Up/Down  调整权重
+/-  时间缩放     F  固定步长
Space 暂停/恢复   R  重新播放
C    播放组合     S  保存设置
H    显示/隐藏帮助`

// Layout 返回逻辑屏幕尺寸
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	flag.Parse()

	game, err := NewGame()
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}
	defer func() {
		if game.watcher != nil {
			game.watcher.Close()
		}
	}()

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("animrt - 加权混合演示")
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
