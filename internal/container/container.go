package container

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"order-skew/config"
	"order-skew/infrastructure/logger"
	"order-skew/internal/server"
	"order-skew/internal/store"
	"order-skew/metrics"
)

// Container 依赖注入容器，管理所有组件的生命周期
type Container struct {
	cfg        config.AppConfig
	configPath string

	logger *logger.Logger

	store    *store.Store
	hub      *server.Hub
	debounce *store.Debouncer

	apiServer     *httpServerComponent
	metricsServer *httpServerComponent

	lifecycle   *LifecycleManager
	unsubscribe func()
}

// New 读取配置创建 Container。configPath 为空时使用内置默认值，并关闭热更新。
func New(configPath string) (*Container, error) {
	cfg := config.Defaults()
	if configPath != "" {
		var err error
		cfg, err = config.LoadWithEnvOverrides(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config failed: %w", err)
		}
	}
	return NewWithConfig(cfg, configPath), nil
}

// NewWithConfig 使用已加载的配置。
func NewWithConfig(cfg config.AppConfig, configPath string) *Container {
	return &Container{
		cfg:        cfg,
		configPath: configPath,
		lifecycle:  NewLifecycleManager(),
	}
}

// WithLogger 注入日志器，Build 时不再按配置创建。
func (c *Container) WithLogger(l *logger.Logger) *Container {
	c.logger = l
	return c
}

// Build 构建所有组件
func (c *Container) Build() error {
	if err := c.buildInfrastructure(); err != nil {
		return fmt.Errorf("build infrastructure failed: %w", err)
	}
	if err := c.buildCoreServices(); err != nil {
		return fmt.Errorf("build core services failed: %w", err)
	}
	c.registerLifecycleComponents()
	c.logger.Info("container built successfully")
	return nil
}

func (c *Container) buildInfrastructure() error {
	if c.logger != nil {
		return nil
	}
	var err error
	c.logger, err = logger.New(c.cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger failed: %w", err)
	}
	return nil
}

func (c *Container) buildCoreServices() error {
	c.store = store.New(c.logger.LogPlan)
	if _, warnings, err := c.store.Apply(c.cfg.Plan); err != nil {
		return fmt.Errorf("initial plan: %w", err)
	} else if len(warnings) > 0 {
		c.logger.LogConfig("plan_warnings", map[string]interface{}{"warnings": warnings})
	}

	c.hub = server.NewHub(c.store.Plan, c.logger)
	c.unsubscribe = c.store.Subscribe(c.hub.Publish)
	c.debounce = store.NewDebouncer(time.Duration(c.cfg.Server.DebounceMs) * time.Millisecond)
	return nil
}

func (c *Container) registerLifecycleComponents() {
	shutdown := time.Duration(c.cfg.Server.ShutdownSeconds) * time.Second

	c.lifecycle.Register(&loopComponent{name: "ws_hub", run: c.hub.Run})

	api := server.NewAPI(c.store, c.logger)
	c.apiServer = &httpServerComponent{
		name:     "api_server",
		handler:  server.NewHandler(api, c.hub, c.logger),
		addr:     c.cfg.Server.Addr,
		logger:   c.logger,
		shutdown: shutdown,
	}
	c.lifecycle.Register(c.apiServer)

	if c.cfg.Server.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		c.metricsServer = &httpServerComponent{
			name:     "metrics_server",
			handler:  mux,
			addr:     c.cfg.Server.MetricsAddr,
			logger:   c.logger,
			shutdown: shutdown,
		}
		c.lifecycle.Register(c.metricsServer)
	}

	if c.configPath != "" {
		w := &config.Watcher{
			Path:     c.configPath,
			Cooldown: time.Duration(c.cfg.Server.ReloadCooldownMs) * time.Millisecond,
			OnUpdate: c.ApplyConfig,
			OnError: func(err error) {
				metrics.ConfigReloads.WithLabelValues("error").Inc()
				c.logger.LogConfig("config_reload", map[string]interface{}{
					"path":   c.configPath,
					"status": "error",
					"error":  err.Error(),
				})
			},
		}
		c.lifecycle.Register(&loopComponent{name: "config_watcher", run: w.Start})
	}
}

// ApplyConfig 热更新入口：只有计划参数会在运行中生效，防抖后重算。
func (c *Container) ApplyConfig(cfg config.AppConfig) {
	c.debounce.Trigger(func() {
		status := "ok"
		fields := map[string]interface{}{"path": c.configPath}
		if _, warnings, err := c.store.Apply(cfg.Plan); err != nil {
			status = "rejected"
			fields["error"] = err.Error()
		} else if len(warnings) > 0 {
			fields["warnings"] = warnings
		}
		fields["status"] = status
		metrics.ConfigReloads.WithLabelValues(status).Inc()
		c.logger.LogConfig("config_reload", fields)
	})
}

func (c *Container) Start(ctx context.Context) error {
	c.logger.Info("starting container...")
	if err := c.lifecycle.StartAll(ctx); err != nil {
		return fmt.Errorf("start failed: %w", err)
	}
	c.logger.Info("container started")
	return nil
}

func (c *Container) Stop() error {
	c.logger.Info("stopping container...")
	c.debounce.Stop()
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	err := c.lifecycle.StopAll()
	if err != nil {
		c.logger.LogError(err, map[string]interface{}{"action": "stop"})
	}
	_ = c.logger.Close()
	return err
}

func (c *Container) HealthCheck() error {
	return c.lifecycle.CheckHealth()
}

// Logger 返回底层 zap 日志器。
func (c *Container) Logger() *zap.Logger { return c.logger.Logger }

// Store 供命令行与测试读取当前计划。
func (c *Container) Store() *store.Store { return c.store }

// APIAddr 返回 API 服务实际监听地址。
func (c *Container) APIAddr() string {
	if c.apiServer == nil {
		return ""
	}
	return c.apiServer.Addr()
}

// MetricsAddr 返回指标服务实际监听地址，未启用时为空。
func (c *Container) MetricsAddr() string {
	if c.metricsServer == nil {
		return ""
	}
	return c.metricsServer.Addr()
}
