package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/decker502/animrt/pkg/animation"
	"github.com/decker502/animrt/pkg/track"
	"github.com/decker502/animrt/pkg/value"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig 配置验证失败，可用 errors.Is 判断
var ErrInvalidConfig = errors.New("invalid animation config")

// AnimationConfig 动画配置文件的顶层结构
//
// 示例：
//
//	scheduler:
//	  fixed_step: true
//	  time_scale: 1
//	clips:
//	  - name: walk
//	    property: position
//	    type: vector3
//	    fps: 60
//	    keys:
//	      - { frame: 0, value: [0, 0, 0] }
//	      - { frame: 60, value: [100, 0, 0] }
//	combos:
//	  - name: hero_walk
//	    clips: [walk, sway]
type AnimationConfig struct {
	// Scheduler 调度器设置（可选，目录模式下只允许一个文件提供）
	Scheduler *SchedulerConfig `yaml:"scheduler,omitempty"`

	// Clips 片段（轨道）定义
	Clips []ClipConfig `yaml:"clips"`

	// Combos 片段组合：一起播放、共享时间线的片段列表
	Combos []ComboConfig `yaml:"combos,omitempty"`
}

// SchedulerConfig 调度器设置
// 指针字段为 nil 时使用默认值（true）
type SchedulerConfig struct {
	// FixedStep 固定步长模式：每次 Tick 使用 FixedDeltaMs，忽略实际耗时
	FixedStep bool `yaml:"fixed_step"`

	// FixedDeltaMs 固定步长（毫秒），默认 16
	FixedDeltaMs float64 `yaml:"fixed_delta_ms,omitempty"`

	// TimeScale 时间缩放，默认 1
	TimeScale float64 `yaml:"time_scale,omitempty"`

	// MatrixInterpolation 矩阵轨道是否插值（false 时逐帧跳变）
	MatrixInterpolation *bool `yaml:"matrix_interpolation,omitempty"`

	// MatrixDecompose 矩阵插值与混合是否分解为缩放/旋转/平移
	MatrixDecompose *bool `yaml:"matrix_decompose,omitempty"`

	// AnimationsEnabled 全局动画开关
	AnimationsEnabled *bool `yaml:"animations_enabled,omitempty"`
}

// ClipConfig 声明式轨道定义
type ClipConfig struct {
	// Name 片段名称（全局唯一）
	Name string `yaml:"name"`

	// Property 目标属性路径（如 "position"、"position.x"、"alpha"）
	Property string `yaml:"property"`

	// Type 值类型（float / vector2 / vector3 / quaternion / color3 / size / matrix）
	Type string `yaml:"type"`

	// FPS 帧率，默认 60
	FPS float64 `yaml:"fps,omitempty"`

	// LoopMode 循环模式（cycle / relative / constant / yoyo），默认 cycle
	LoopMode string `yaml:"loop_mode,omitempty"`

	// Blending 混合窗口（可选）
	Blending *BlendingConfig `yaml:"blending,omitempty"`

	Keys   []KeyConfig   `yaml:"keys"`
	Events []EventConfig `yaml:"events,omitempty"`
	Ranges []RangeConfig `yaml:"ranges,omitempty"`
}

// BlendingConfig 混合窗口设置
type BlendingConfig struct {
	Enabled bool    `yaml:"enabled"`
	Speed   float64 `yaml:"speed"`
	// Easing 缓动名称，见 utils.EasingByName；为空表示线性
	Easing string `yaml:"easing,omitempty"`
}

// KeyConfig 关键帧：value 的分量个数由片段类型决定
type KeyConfig struct {
	Frame float64   `yaml:"frame"`
	Value []float64 `yaml:"value"`
}

// EventConfig 帧事件，Name 用于绑定 BuildTracks 的处理函数
type EventConfig struct {
	Frame    float64 `yaml:"frame"`
	Name     string  `yaml:"name"`
	OnlyOnce bool    `yaml:"only_once,omitempty"`
}

// RangeConfig 命名帧区间
type RangeConfig struct {
	Name string  `yaml:"name"`
	From float64 `yaml:"from"`
	To   float64 `yaml:"to"`
}

// ComboConfig 片段组合
type ComboConfig struct {
	Name string `yaml:"name"`

	// Clips 组合包含的片段名称
	Clips []string `yaml:"clips"`

	// Loop 是否循环播放（默认 true）
	Loop *bool `yaml:"loop,omitempty"`

	// Range 命名帧区间（在第一个片段上查找，可选）
	Range string `yaml:"range,omitempty"`

	// Speed 速度倍率，默认 1
	Speed float64 `yaml:"speed,omitempty"`
}

// LoadAnimationConfig 从 YAML 文件加载动画配置
//
// 参数：
//   - path: 配置文件路径
//
// 返回：
//   - *AnimationConfig: 解析并验证后的配置
//   - error: 读取、解析或验证错误（验证错误包装 ErrInvalidConfig）
func LoadAnimationConfig(path string) (*AnimationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取配置文件 %s: %w", path, err)
	}
	cfg, err := ParseAnimationConfig(data)
	if err != nil {
		return nil, fmt.Errorf("配置文件 %s: %w", path, err)
	}
	return cfg, nil
}

// ParseAnimationConfig 解析并验证 YAML 内容
func ParseAnimationConfig(data []byte) (*AnimationConfig, error) {
	var cfg AnimationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("无法解析 YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 验证配置的完整性和正确性
func (c *AnimationConfig) Validate() error {
	clipNames := make(map[string]bool, len(c.Clips))
	for i := range c.Clips {
		clip := &c.Clips[i]
		if err := clip.validate(); err != nil {
			if clip.Name == "" {
				return fmt.Errorf("片段 #%d: %w", i, err)
			}
			return fmt.Errorf("片段 '%s': %w", clip.Name, err)
		}
		if clipNames[clip.Name] {
			return fmt.Errorf("%w: 重复的片段名称 '%s'", ErrInvalidConfig, clip.Name)
		}
		clipNames[clip.Name] = true
	}

	for i, combo := range c.Combos {
		if combo.Name == "" {
			return fmt.Errorf("%w: 组合 #%d 缺少 'name' 字段", ErrInvalidConfig, i)
		}
		if len(combo.Clips) == 0 {
			return fmt.Errorf("%w: 组合 '%s' 没有片段", ErrInvalidConfig, combo.Name)
		}
	}

	if s := c.Scheduler; s != nil && (s.FixedDeltaMs < 0 || s.TimeScale < 0) {
		return fmt.Errorf("%w: fixed_delta_ms 和 time_scale 不能为负数", ErrInvalidConfig)
	}
	return nil
}

func (c *ClipConfig) validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: 缺少 'name' 字段", ErrInvalidConfig)
	}
	if c.Property == "" {
		return fmt.Errorf("%w: 缺少 'property' 字段", ErrInvalidConfig)
	}
	kind, err := value.ParseKind(c.Type)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := track.ParseLoopMode(c.LoopMode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.FPS < 0 {
		return fmt.Errorf("%w: fps 不能为负数", ErrInvalidConfig)
	}
	if len(c.Keys) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, track.ErrNoKeys)
	}
	for i, key := range c.Keys {
		if len(key.Value) != kind.Components() {
			return fmt.Errorf("%w: 关键帧 #%d 需要 %d 个分量，实际 %d 个",
				ErrInvalidConfig, i, kind.Components(), len(key.Value))
		}
	}
	for _, r := range c.Ranges {
		if r.Name == "" {
			return fmt.Errorf("%w: 帧区间缺少 'name' 字段", ErrInvalidConfig)
		}
	}
	return nil
}

// ToAnimationConfig 转换为调度器配置，未设置的字段使用 animation.DefaultConfig
func (s *SchedulerConfig) ToAnimationConfig() animation.Config {
	cfg := animation.DefaultConfig()
	if s == nil {
		return cfg
	}
	cfg.FixedStep = s.FixedStep
	if s.FixedDeltaMs > 0 {
		cfg.FixedDeltaMs = s.FixedDeltaMs
	}
	if s.TimeScale > 0 {
		cfg.TimeScale = s.TimeScale
	}
	if s.MatrixDecompose != nil {
		cfg.MatrixDecompose = *s.MatrixDecompose
	}
	if s.AnimationsEnabled != nil {
		cfg.AnimationsEnabled = *s.AnimationsEnabled
	}
	return cfg
}

// matrixInterpolation 矩阵轨道选项：interpolate, decompose
func (s *SchedulerConfig) matrixInterpolation() (bool, bool) {
	interpolate, decompose := true, true
	if s != nil && s.MatrixInterpolation != nil {
		interpolate = *s.MatrixInterpolation
	}
	if s != nil && s.MatrixDecompose != nil {
		decompose = *s.MatrixDecompose
	}
	return interpolate, decompose
}
