// Package settings 持久化动画播放设置（时间缩放、开关、片段权重）
package settings

import (
	"fmt"
	"log"

	"github.com/decker502/animrt/pkg/animation"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// PlaybackSettings 全局播放设置
type PlaybackSettings struct {
	TimeScale         float64            `yaml:"timeScale"`         // 全局时间缩放 0.0 ~ 4.0
	AnimationsEnabled bool               `yaml:"animationsEnabled"` // 动画开关
	FixedStep         bool               `yaml:"fixedStep"`         // 固定步长
	ClipWeights       map[string]float64 `yaml:"clipWeights"`       // 片段名 -> 混合权重 0.0 ~ 1.0
	LastCombo         string             `yaml:"lastCombo,omitempty"`
}

// DefaultSettings 返回默认设置
func DefaultSettings() *PlaybackSettings {
	return &PlaybackSettings{
		TimeScale:         1,
		AnimationsEnabled: true,
		ClipWeights:       map[string]float64{},
	}
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "playback"

	maxTimeScale = 4.0
)

// SettingsManager 设置管理器
// 负责播放设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // 可为 nil（降级模式，仅内存设置）
	settings     *PlaybackSettings
}

// NewSettingsManager 创建设置管理器
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil
//
// 返回：
//   - *SettingsManager: 设置管理器实例（加载失败时使用默认设置）
func NewSettingsManager(gdataManager *gdata.Manager) *SettingsManager {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}
	if err := sm.Load(); err != nil {
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}
	return sm
}

// Load 从 gdata 加载设置
// gdataManager 为 nil 或数据不存在时使用默认设置
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil || !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if loaded.ClipWeights == nil {
		loaded.ClipWeights = map[string]float64{}
	}
	loaded.TimeScale = clamp(loaded.TimeScale, 0, maxTimeScale)

	sm.settings = loaded
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save 保存设置到 gdata
// gdataManager 为 nil 时不做任何事
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *PlaybackSettings {
	return sm.settings
}

// SetTimeScale 设置时间缩放（限制在 0.0 ~ 4.0）
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetTimeScale(scale float64) {
	sm.settings.TimeScale = clamp(scale, 0, maxTimeScale)
}

// SetAnimationsEnabled 设置动画开关
func (sm *SettingsManager) SetAnimationsEnabled(enabled bool) {
	sm.settings.AnimationsEnabled = enabled
}

// SetFixedStep 设置固定步长
func (sm *SettingsManager) SetFixedStep(enabled bool) {
	sm.settings.FixedStep = enabled
}

// SetClipWeight 记录片段的混合权重（限制在 0.0 ~ 1.0）
func (sm *SettingsManager) SetClipWeight(clip string, weight float64) {
	sm.settings.ClipWeights[clip] = clamp(weight, 0, 1)
}

// ClipWeight 返回片段的混合权重，未记录时返回 fallback
func (sm *SettingsManager) ClipWeight(clip string, fallback float64) float64 {
	if w, ok := sm.settings.ClipWeights[clip]; ok {
		return w
	}
	return fallback
}

// SetLastCombo 记录最后播放的组合
func (sm *SettingsManager) SetLastCombo(name string) {
	sm.settings.LastCombo = name
}

// Apply 把设置写入调度器
//
// 参数：
//   - s: 目标调度器
func (sm *SettingsManager) Apply(s *animation.Scheduler) {
	s.SetTimeScale(sm.settings.TimeScale)
	s.SetAnimationsEnabled(sm.settings.AnimationsEnabled)
	s.SetFixedStep(sm.settings.FixedStep)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
