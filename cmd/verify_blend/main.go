// verify_blend - 加权混合验证程序（无窗口）
//
// 在一个 ECS 实体上播放若干片段，按指定权重混合，逐帧打印属性值。
//
// 用法：
//
//	go run ./cmd/verify_blend --clips=slide,bob --weights=0.7,0.3 --frames=120
//	go run ./cmd/verify_blend --config=data/animations --combo=patrol
package main

import (
	"flag"
	"fmt"
	"math"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/decker502/animrt"
	"github.com/decker502/animrt/pkg/animation"
	"github.com/decker502/animrt/pkg/components"
	"github.com/decker502/animrt/pkg/config"
	"github.com/decker502/animrt/pkg/ecs"
	"github.com/decker502/animrt/pkg/embedded"
	"github.com/decker502/animrt/pkg/systems"
	"github.com/decker502/animrt/pkg/value"
)

var (
	configDir = flag.String("config", "", "磁盘上的配置目录（为空时使用内置 data/animations）")
	clipsFlag = flag.String("clips", "slide,bob", "逗号分隔的片段名称")
	weights   = flag.String("weights", "", "逗号分隔的权重，与 --clips 一一对应；为空时直接播放")
	comboName = flag.String("combo", "", "播放组合（覆盖 --clips）")
	frames    = flag.Int("frames", 120, "推进的帧数")
	stepMs    = flag.Float64("step", 1000.0/60, "每帧推进的毫秒数")
	every     = flag.Int("every", 10, "每隔多少帧打印一次")
	verbose   = flag.Bool("verbose", false, "详细日志")
)

func main() {
	flag.Parse()

	cm, err := loadConfig()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	schedCfg := cm.SchedulerConfig().ToAnimationConfig()
	schedCfg.FixedStep = true
	schedCfg.FixedDeltaMs = *stepMs
	scheduler := animation.NewScheduler(schedCfg)

	em := ecs.NewEntityManager()
	animSystem := systems.NewAnimationSystem(em, scheduler, cm)
	animSystem.SetEventHandlers(eventLogger(cm))

	id := em.CreateEntity()
	em.AddComponent(id, components.NewTransformComponent())
	em.AddComponent(id, components.NewTintComponent())

	if err := startPlayback(em, animSystem, id); err != nil {
		log.Fatalf("播放失败: %v", err)
	}

	fmt.Printf("%6s  %-26s  %-26s  %-22s  %-20s  %s\n", "frame", "position", "scaling", "rotation(deg z)", "color", "alpha")
	for f := 0; f <= *frames; f++ {
		if f > 0 {
			animSystem.Update(*stepMs / 1000)
		}
		if f%*every == 0 || f == *frames {
			printState(em, id, f)
		}
	}

	active := animSystem.AnimatablesFor(id)
	log.Printf("[verify_blend] 完成 %d 帧，剩余 %d 个活动 Animatable", *frames, len(active))
}

// loadConfig 从磁盘目录或内置数据加载片段
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

// eventLogger 为所有片段中出现的事件名注册日志输出
func eventLogger(cm *config.AnimationConfigManager) config.EventHandlers {
	handlers := config.EventHandlers{}
	for _, name := range cm.ListClips() {
		clip, err := cm.GetClip(name)
		if err != nil {
			continue
		}
		for _, ev := range clip.Events {
			evName := ev.Name
			handlers[evName] = func(frame float64) {
				log.Printf("[verify_blend] 事件 %s @ frame %.1f", evName, frame)
			}
		}
	}
	return handlers
}

// startPlayback 通过命令组件播放组合，或通过 API 逐个播放带权重的片段
func startPlayback(em *ecs.EntityManager, s *systems.AnimationSystem, id ecs.EntityID) error {
	if *comboName != "" {
		em.AddComponent(id, &components.AnimationCommandComponent{ComboName: *comboName, Loop: true})
		s.Update(0)
		if len(s.AnimatablesFor(id)) == 0 {
			return fmt.Errorf("组合 '%s' 未能播放", *comboName)
		}
		return nil
	}

	clips := splitList(*clipsFlag)
	if len(clips) == 0 {
		return fmt.Errorf("未指定片段")
	}
	if *weights == "" {
		_, err := s.PlayClips(id, clips, true)
		return err
	}

	ws, err := parseWeights(*weights, len(clips))
	if err != nil {
		return err
	}
	for i, clip := range clips {
		if _, err := s.PlayClips(id, []string{clip}, true); err != nil {
			return err
		}
		s.SetClipWeight(id, []string{clip}, ws[i])
		if *verbose {
			log.Printf("[verify_blend] 片段 %s 权重 %.2f", clip, ws[i])
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseWeights(s string, n int) ([]float64, error) {
	parts := splitList(s)
	if len(parts) != n {
		return nil, fmt.Errorf("权重个数 %d 与片段个数 %d 不一致", len(parts), n)
	}
	ws := make([]float64, n)
	for i, p := range parts {
		w, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("无效的权重 %q: %w", p, err)
		}
		ws[i] = w
	}
	return ws, nil
}

func printState(em *ecs.EntityManager, id ecs.EntityID, frame int) {
	tc, _ := ecs.GetComponent[*components.TransformComponent](em, id)
	tint, _ := ecs.GetComponent[*components.TintComponent](em, id)
	fmt.Printf("%6d  %-26s  %-26s  %-22s  %-20s  %.3f\n",
		frame,
		formatValue(tc.Position),
		formatValue(tc.Scaling),
		fmt.Sprintf("%.2f", value.RotationZ(tc.Rotation)*180/math.Pi),
		formatValue(tint.Color),
		tint.Alpha,
	)
}

func formatValue(v value.Value) string {
	fs := value.Floats(v)
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = strconv.FormatFloat(f, 'f', 2, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
