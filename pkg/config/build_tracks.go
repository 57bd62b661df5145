package config

import (
	"fmt"

	"github.com/decker502/animrt/pkg/track"
	"github.com/decker502/animrt/pkg/utils"
	"github.com/decker502/animrt/pkg/value"
)

// EventHandlers 事件名 -> 处理函数
// 没有处理函数的事件仍然会被触发和消费，只是不执行任何动作
type EventHandlers map[string]func(frame float64)

// BuildTracks 将配置中的所有片段构建为关键帧轨道
//
// 参数：
//   - handlers: 按事件名绑定的处理函数（可为 nil）
//
// 返回：
//   - map[string]track.Track: 片段名 -> 轨道
//   - error: 任一片段构建失败时返回错误
func (c *AnimationConfig) BuildTracks(handlers EventHandlers) (map[string]track.Track, error) {
	tracks := make(map[string]track.Track, len(c.Clips))
	for i := range c.Clips {
		tr, err := BuildClip(&c.Clips[i], c.Scheduler, handlers)
		if err != nil {
			return nil, err
		}
		tracks[c.Clips[i].Name] = tr
	}
	return tracks, nil
}

// BuildClip 构建单个片段
// sched 提供矩阵插值选项，可为 nil
func BuildClip(clip *ClipConfig, sched *SchedulerConfig, handlers EventHandlers) (*track.Keyframes, error) {
	kind, err := value.ParseKind(clip.Type)
	if err != nil {
		return nil, fmt.Errorf("片段 '%s': %w", clip.Name, err)
	}
	loopMode, err := track.ParseLoopMode(clip.LoopMode)
	if err != nil {
		return nil, fmt.Errorf("片段 '%s': %w", clip.Name, err)
	}

	keys := make([]track.Key, 0, len(clip.Keys))
	for i, kc := range clip.Keys {
		v, err := value.FromFloats(kind, kc.Value)
		if err != nil {
			return nil, fmt.Errorf("片段 '%s' 关键帧 #%d: %w", clip.Name, i, err)
		}
		keys = append(keys, track.Key{Frame: kc.Frame, Value: v})
	}

	opts := []track.Option{track.WithLoopMode(loopMode)}

	if b := clip.Blending; b != nil {
		easing, err := utils.EasingByName(b.Easing)
		if err != nil {
			return nil, fmt.Errorf("片段 '%s': %w", clip.Name, err)
		}
		blending := track.Blending{Enabled: b.Enabled, Speed: b.Speed}
		if easing != nil {
			blending.Easing = easing
		}
		opts = append(opts, track.WithBlending(blending))
	}

	for _, ec := range clip.Events {
		opts = append(opts, track.WithEvents(track.Event{
			Name:     ec.Name,
			Frame:    ec.Frame,
			OnlyOnce: ec.OnlyOnce,
			Action:   handlers[ec.Name],
		}))
	}

	for _, rc := range clip.Ranges {
		opts = append(opts, track.WithRanges(track.Range{Name: rc.Name, From: rc.From, To: rc.To}))
	}

	if kind == value.KindMatrix {
		opts = append(opts, track.WithMatrixInterpolation(sched.matrixInterpolation()))
	}

	fps := clip.FPS
	if fps == 0 {
		fps = 60
	}
	return track.New(clip.Name, clip.Property, kind, fps, keys, opts...)
}
