package configwatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"interview_prep_backend/internal/config"
	"interview_prep_backend/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ConfigReloader 收到校验通过的新配置
type ConfigReloader func(cfg *config.Config)

const debounce = time.Second

// WatchConfig 监听配置文件，写入停止 1s 后重新加载并回调。
// 监听的是所在目录，编辑器先删后建的保存方式也能捕获。ctx 取消时返回。
func WatchConfig(ctx context.Context, configPath string, reloader ConfigReloader) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("watch config dir: %w", err)
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				// 防抖处理
				timer.Reset(debounce)
			}
		case <-timer.C:
			newCfg, err := config.LoadConfig(absPath)
			if err != nil {
				logger.L().Error("Failed to reload config", zap.String("path", absPath), zap.Error(err))
				continue
			}
			logger.L().Info("Config reloaded", zap.String("path", absPath))
			reloader(newCfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.L().Error("Config watcher error", zap.Error(err))
		}
	}
}
