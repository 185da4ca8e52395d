package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"order-skew/internal/container"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "配置文件路径（yaml 或 toml），留空使用默认参数")
	healthEvery := flag.Duration("healthInterval", 15*time.Second, "健康检查间隔")
	flag.Parse()

	c, err := container.New(*cfgPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if err := c.Build(); err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := c.Start(ctx); err != nil {
		log.Fatalf("启动失败: %v", err)
	}
	lg := c.Logger()
	notify(lg, daemon.SdNotifyReady)
	lg.Info("runner started", zap.String("api", c.APIAddr()), zap.String("metrics", c.MetricsAddr()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return superviseHealth(gctx, c, *healthEvery)
	})
	if interval, err := daemon.SdWatchdogEnabled(false); err == nil && interval > 0 {
		g.Go(func() error {
			return watchdog(gctx, c, interval/2)
		})
	}

	err = g.Wait()
	notify(lg, daemon.SdNotifyStopping)
	if err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("runner exiting on failure", zap.Error(err))
	}
	if stopErr := c.Stop(); stopErr != nil {
		os.Exit(1)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}

// superviseHealth 周期性检查组件，任一组件失败即退出。
func superviseHealth(ctx context.Context, c *container.Container, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.HealthCheck(); err != nil {
				return err
			}
		}
	}
}

// watchdog 只在组件健康时向 systemd 喂狗。
func watchdog(ctx context.Context, c *container.Container, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if c.HealthCheck() == nil {
				_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			}
		}
	}
}

func notify(lg *zap.Logger, state string) {
	// 非 systemd 环境下 sent=false，忽略
	if _, err := daemon.SdNotify(false, state); err != nil {
		lg.Warn("sd_notify failed", zap.String("state", state), zap.Error(err))
	}
}
