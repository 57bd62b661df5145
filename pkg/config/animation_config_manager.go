package config

import (
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"sync"

	"github.com/decker502/animrt/pkg/track"
	"gopkg.in/yaml.v3"
)

// AnimationConfigManager 动画配置管理器
// 负责加载片段、组合和调度器设置，并支持热重载
type AnimationConfigManager struct {
	fsys     fs.FS
	root     string
	config   *AnimationConfig        // 合并后的全量配置
	clipMap  map[string]*ClipConfig  // 按名称索引的片段
	comboMap map[string]*ComboConfig // 按名称索引的组合
	mu       sync.RWMutex            // 读写锁（并发安全）
	onReload []func()
}

// NewAnimationConfigManager 创建配置管理器
//
// 参数：
//   - fsys: 配置所在的文件系统（磁盘使用 os.DirFS，内置配置使用 embedded.Sub("data/animations")）
//   - root: fsys 中的文件路径或目录路径
//   - 如果是文件路径（如 "animations.yaml"），则使用单文件模式
//   - 如果是目录路径（如 "data/animations"），则加载目录下所有 YAML 文件
//
// 返回：
//   - *AnimationConfigManager: 配置管理器实例
//   - error: 加载或解析错误
func NewAnimationConfigManager(fsys fs.FS, root string) (*AnimationConfigManager, error) {
	m := &AnimationConfigManager{fsys: fsys, root: root}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload 重新加载全部配置
// 加载失败时保留旧配置并返回错误
func (m *AnimationConfigManager) Reload() error {
	cfg, err := loadConfigTree(m.fsys, m.root)
	if err != nil {
		return err
	}

	clipMap := make(map[string]*ClipConfig, len(cfg.Clips))
	for i := range cfg.Clips {
		clipMap[cfg.Clips[i].Name] = &cfg.Clips[i]
	}
	comboMap := make(map[string]*ComboConfig, len(cfg.Combos))
	for i := range cfg.Combos {
		combo := &cfg.Combos[i]
		if _, exists := comboMap[combo.Name]; exists {
			return fmt.Errorf("%w: 重复的组合名称 '%s'", ErrInvalidConfig, combo.Name)
		}
		for _, name := range combo.Clips {
			if _, ok := clipMap[name]; !ok {
				return fmt.Errorf("%w: 组合 '%s' 引用了不存在的片段 '%s'", ErrInvalidConfig, combo.Name, name)
			}
		}
		comboMap[combo.Name] = combo
	}

	m.mu.Lock()
	m.config = cfg
	m.clipMap = clipMap
	m.comboMap = comboMap
	callbacks := append([]func(){}, m.onReload...)
	m.mu.Unlock()

	log.Printf("[AnimationConfigManager] Loaded %d clips, %d combos from %s", len(cfg.Clips), len(cfg.Combos), m.root)
	for _, cb := range callbacks {
		cb()
	}
	return nil
}

// OnReload 注册重载成功后的回调（在调用 Reload 的 goroutine 中执行）
func (m *AnimationConfigManager) OnReload(cb func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReload = append(m.onReload, cb)
}

// loadConfigTree 加载单个文件或目录下的所有 YAML 文件并合并
func loadConfigTree(fsys fs.FS, root string) (*AnimationConfig, error) {
	info, err := fs.Stat(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("无法访问路径 %s: %w", root, err)
	}
	if !info.IsDir() {
		return loadConfigFile(fsys, root)
	}

	files, err := yamlFiles(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("扫描目录 %s 失败: %w", root, err)
	}

	merged := &AnimationConfig{}
	var schedulerFile string
	for _, file := range files {
		cfg, err := loadConfigFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("加载文件 %s 失败: %w", file, err)
		}
		if cfg.Scheduler != nil {
			if merged.Scheduler != nil {
				return nil, fmt.Errorf("%w: 调度器设置同时出现在 %s 和 %s", ErrInvalidConfig, schedulerFile, file)
			}
			merged.Scheduler = cfg.Scheduler
			schedulerFile = file
		}
		merged.Clips = append(merged.Clips, cfg.Clips...)
		merged.Combos = append(merged.Combos, cfg.Combos...)
	}

	// 跨文件的重复名称
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

func loadConfigFile(fsys fs.FS, file string) (*AnimationConfig, error) {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("无法读取配置文件 %s: %w", file, err)
	}
	var cfg AnimationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("无法解析配置文件 %s: %w", file, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置文件 %s 验证失败: %w", file, err)
	}
	return &cfg, nil
}

// yamlFiles 按文件名排序返回目录下的 .yaml / .yml 文件
func yamlFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && isYAML(e.Name()) {
			files = append(files, path.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// GetClip 获取片段配置
//
// 参数：
//   - name: 片段名称
//
// 返回：
//   - *ClipConfig: 片段配置
//   - error: 片段不存在时返回错误
func (m *AnimationConfigManager) GetClip(name string) (*ClipConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	clip, exists := m.clipMap[name]
	if !exists {
		return nil, fmt.Errorf("片段 '%s' 不存在", name)
	}
	return clip, nil
}

// GetCombo 获取组合配置
func (m *AnimationConfigManager) GetCombo(name string) (*ComboConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	combo, exists := m.comboMap[name]
	if !exists {
		return nil, fmt.Errorf("组合 '%s' 不存在", name)
	}
	return combo, nil
}

// SchedulerConfig 获取调度器设置（未配置时为 nil）
func (m *AnimationConfigManager) SchedulerConfig() *SchedulerConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.Scheduler
}

// ListClips 按名称排序列出所有片段
func (m *AnimationConfigManager) ListClips() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.clipMap))
	for name := range m.clipMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildTracks 构建指定片段的轨道，顺序与 names 一致
func (m *AnimationConfigManager) BuildTracks(names []string, handlers EventHandlers) ([]track.Track, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tracks := make([]track.Track, 0, len(names))
	for _, name := range names {
		clip, ok := m.clipMap[name]
		if !ok {
			return nil, fmt.Errorf("片段 '%s' 不存在", name)
		}
		tr, err := BuildClip(clip, m.config.Scheduler, handlers)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, tr)
	}
	return tracks, nil
}
