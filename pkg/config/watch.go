package config

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce 同一文件的连续事件合并窗口（编辑器保存时常产生多个写事件）
const reloadDebounce = 100 * time.Millisecond

// Watcher 监听磁盘上的配置目录，文件变化时重新加载配置管理器
type Watcher struct {
	watcher *fsnotify.Watcher
	manager *AnimationConfigManager
	// Errors 重载失败和 fsnotify 错误（缓冲区满时丢弃）
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// Watch 监听 dir（磁盘路径）中的 YAML 文件，变化时调用 m.Reload
//
// dir 应与创建管理器时使用的 fsys 指向同一目录。
// 返回的 Watcher 必须 Close。
func (m *AnimationConfigManager) Watch(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监听失败: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("监听目录 %s 失败: %w", dir, err)
	}

	w := &Watcher{
		watcher: fw,
		manager: m,
		Errors:  make(chan error, 4),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	log.Printf("[AnimationConfigManager] Watching %s for changes", dir)
	return w, nil
}

// Close 停止监听并等待后台 goroutine 退出
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !isYAML(event.Name) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := w.manager.Reload(); err != nil {
				log.Printf("[AnimationConfigManager] Reload failed, keeping previous config: %v", err)
				w.report(err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.report(err)
		case <-w.closeCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) report(err error) {
	select {
	case w.Errors <- err:
	default:
	}
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
