package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher 监听配置文件变化，重新加载并回调。
// 监听的是所在目录，编辑器以 rename 方式保存时同样能收到事件。
type Watcher struct {
	Path     string
	Cooldown time.Duration // 两次重载之间的最小间隔
	OnUpdate func(AppConfig)
	OnError  func(error) // 解析或校验失败时回调，旧配置保持生效

	mu         sync.Mutex
	lastReload time.Time
}

// Start 阻塞直到 ctx 结束，返回 ctx.Err()。
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	target, err := filepath.Abs(w.Path)
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch config dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			// 只处理写入和创建事件
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.reload()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.fail(fmt.Errorf("watcher: %w", err))
		}
	}
}

// LastReload 返回最近一次成功重载的时间。
func (w *Watcher) LastReload() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastReload
}

func (w *Watcher) reload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.Cooldown > 0 && time.Since(w.lastReload) < w.Cooldown {
		return
	}
	cfg, err := LoadWithEnvOverrides(w.Path)
	if err != nil {
		w.fail(err)
		return
	}
	w.lastReload = time.Now()
	if w.OnUpdate != nil {
		w.OnUpdate(cfg)
	}
}

func (w *Watcher) fail(err error) {
	if w.OnError != nil {
		w.OnError(err)
	}
}
