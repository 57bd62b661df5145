// verify_reanim - Reanim 转换验证程序
//
// 解析 .reanim 文件，列出命名区间，把每个部件转换为关键帧轨道，
// 然后在调度器上播放指定区间并逐帧检查输出。
//
// 用法：
//
//	go run ./cmd/verify_reanim                       # 内置示例
//	go run ./cmd/verify_reanim --sample=Sample       # 内置数据中的其他文件
//	go run ./cmd/verify_reanim --file=Foo.reanim --range=anim_idle
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/decker502/animrt"
	"github.com/decker502/animrt/internal/reanim"
	"github.com/decker502/animrt/pkg/animation"
	"github.com/decker502/animrt/pkg/embedded"
	"github.com/decker502/animrt/pkg/target"
	"github.com/decker502/animrt/pkg/track"
	"github.com/decker502/animrt/pkg/value"
)

var (
	filePath  = flag.String("file", "", "磁盘上的 .reanim 文件（为空时使用内置数据）")
	sample    = flag.String("sample", "Sample", "内置 data/reanim 下的文件名（不含扩展名）")
	rangeName = flag.String("range", "", "播放的区间（为空时使用第一个区间）")
	loops     = flag.Int("loops", 2, "播放的循环次数")
)

// ========== 验证报告 ==========

type ValidationReport struct {
	TestName string
	Passed   bool
	Message  string
}

var validationReports []ValidationReport

func addReport(testName string, passed bool, message string) {
	validationReports = append(validationReports, ValidationReport{
		TestName: testName,
		Passed:   passed,
		Message:  message,
	})
	status := "✗ FAIL"
	if passed {
		status = "✓ PASS"
	}
	log.Printf("%s | %-30s | %s", status, testName, message)
}

func main() {
	flag.Parse()

	r, err := load()
	if err != nil {
		log.Fatalf("解析失败: %v", err)
	}
	log.Printf("FPS: %d, 轨道: %d", r.FPS, len(r.Tracks))

	ranges := r.Ranges()
	addReport("命名区间", len(ranges) > 0, fmt.Sprintf("%d 个区间", len(ranges)))
	for _, rg := range ranges {
		log.Printf("  %-20s %3.0f - %3.0f", rg.Name, rg.From, rg.To)
	}
	if len(ranges) == 0 {
		summary()
		return
	}

	parts, err := r.BuildPartTracks(track.WithLoopMode(track.LoopCycle))
	addReport("部件轨道转换", err == nil, errString(err, fmt.Sprintf("%d 个部件", len(parts))))
	if err != nil {
		summary()
		return
	}
	for _, p := range parts {
		log.Printf("  %-20s %d 条轨道", p.Part, len(p.Tracks()))
	}

	selected := ranges[0]
	if *rangeName != "" {
		found := false
		for _, rg := range ranges {
			if rg.Name == *rangeName {
				selected, found = rg, true
			}
		}
		addReport("选择区间", found, *rangeName)
		if !found {
			summary()
			return
		}
	}

	play(r, parts, selected)
	summary()
}

func load() (*reanim.ReanimXML, error) {
	if *filePath != "" {
		return reanim.ParseReanimFile(*filePath)
	}

	embedded.Init(animrt.DataFS)
	path := "data/reanim/" + *sample + ".reanim"
	if !embedded.Exists(path) {
		available, _ := embedded.Glob("data/reanim/*.reanim")
		return nil, fmt.Errorf("内置数据中没有 %s，可用: %v", path, available)
	}
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return reanim.Parse(data)
}

// play 在固定步长调度器上播放区间，每个部件一个 Bag 目标
func play(r *reanim.ReanimXML, parts []reanim.PartTracks, rg track.Range) {
	cfg := animation.DefaultConfig()
	cfg.FixedStep = true
	cfg.FixedDeltaMs = 1000 / float64(r.FPS)
	s := animation.NewScheduler(cfg)

	root := target.NewBag(nil)
	bags := make(map[string]*target.Bag, len(parts))
	for _, p := range parts {
		bag := target.NewBag(map[string]value.Value{
			"position": value.Vector3{},
			"scaling":  value.Vector3{1, 1, 1},
			"skew":     value.Vector2{},
		})
		bags[p.Part] = bag
		root.AddChild(bag)
		if tracks := p.Tracks(); len(tracks) > 0 {
			s.BeginDirectAnimation(bag, tracks, animation.PlayOptions{Loop: true}.WithRange(rg))
		}
	}

	span := int(rg.To-rg.From) + 1
	total := span * *loops
	log.Printf("播放 %s：%d 帧 x %d 次循环", rg.Name, span, *loops)

	var first map[string]value.Value
	moved := false
	for f := 1; f <= total; f++ {
		s.Tick(0)
		current := snapshot(parts, bags)
		if first == nil {
			first = current
		} else if !equalSnapshots(first, current) {
			moved = true
		}
		for _, p := range parts {
			if p.Position == nil {
				continue
			}
			fmt.Printf("%4d  %-12s position=%v\n", f, p.Part, current[p.Part])
		}
	}

	addReport("部件运动", moved, fmt.Sprintf("%d 个部件", len(parts)))
	addReport("调度器活动", len(s.Active()) > 0, fmt.Sprintf("%d 个 Animatable", len(s.Active())))
}

func snapshot(parts []reanim.PartTracks, bags map[string]*target.Bag) map[string]value.Value {
	out := make(map[string]value.Value, len(parts))
	for _, p := range parts {
		out[p.Part] = bags[p.Part].Get("position")
	}
	return out
}

func equalSnapshots(a, b map[string]value.Value) bool {
	for k, v := range a {
		if !value.ApproxEqual(v, b[k], 1e-6) {
			return false
		}
	}
	return true
}

func errString(err error, ok string) string {
	if err != nil {
		return err.Error()
	}
	return ok
}

func summary() {
	passed := 0
	for _, r := range validationReports {
		if r.Passed {
			passed++
		}
	}
	log.Printf("========== 验证完成：%d/%d 通过 ==========", passed, len(validationReports))
	if passed != len(validationReports) {
		os.Exit(1)
	}
}
