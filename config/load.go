package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"order-skew/infrastructure/logger"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env    string        `yaml:"env" toml:"env"`
	Log    logger.Config `yaml:"log" toml:"log"`
	Server ServerConfig  `yaml:"server" toml:"server"`
	Plan   PlanConfig    `yaml:"plan" toml:"plan"`
}

type ServerConfig struct {
	Addr             string `yaml:"addr" toml:"addr"`
	MetricsAddr      string `yaml:"metricsAddr" toml:"metricsAddr"`           // 留空则关闭
	DebounceMs       int    `yaml:"debounceMs" toml:"debounceMs"`             // 热更新触发重算的防抖时间
	ReloadCooldownMs int    `yaml:"reloadCooldownMs" toml:"reloadCooldownMs"` // 两次热更新的最小间隔
	ShutdownSeconds  int    `yaml:"shutdownSeconds" toml:"shutdownSeconds"`
}

// Defaults 返回内置默认值，文件中的字段覆盖其上。
func Defaults() AppConfig {
	return AppConfig{
		Env: "dev",
		Log: logger.DefaultConfig(),
		Server: ServerConfig{
			Addr:             ":8080",
			MetricsAddr:      ":9100",
			DebounceMs:       50,
			ReloadCooldownMs: 500,
			ShutdownSeconds:  5,
		},
		Plan: DefaultPlan(),
	}
}

// Load reads YAML (or TOML, by extension) config from path and applies basic validation.
func Load(path string) (AppConfig, error) {
	cfg, err := decode(path)
	if err != nil {
		return cfg, err
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config, reads .env if present, then overrides fields from ORDERSKEW_* env vars.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := decode(path)
	if err != nil {
		return cfg, err
	}
	_ = godotenv.Load()
	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	return cfg, Validate(cfg)
}

func decode(path string) (AppConfig, error) {
	cfg := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(raw), &cfg); err != nil {
			return cfg, fmt.Errorf("parse toml: %w", err)
		}
	default:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse yaml: %w", err)
		}
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *AppConfig) error {
	setStr(&cfg.Env, "ORDERSKEW_ENV")
	setStr(&cfg.Log.Level, "ORDERSKEW_LOG_LEVEL")
	setStr(&cfg.Server.Addr, "ORDERSKEW_ADDR")
	setStr(&cfg.Server.MetricsAddr, "ORDERSKEW_METRICS_ADDR")
	setStr(&cfg.Plan.Mode, "ORDERSKEW_MODE")
	if err := setFloat(&cfg.Plan.Capital, "ORDERSKEW_CAPITAL"); err != nil {
		return err
	}
	if err := setFloat(&cfg.Plan.Price, "ORDERSKEW_PRICE"); err != nil {
		return err
	}
	if err := setFloat(&cfg.Plan.ExistingQuantity, "ORDERSKEW_EXISTING_QUANTITY"); err != nil {
		return err
	}
	return setFloat(&cfg.Plan.ExistingAvgPrice, "ORDERSKEW_EXISTING_AVG_PRICE")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setFloat 接受带千分位逗号的数字，例如 "10,000"。
func setFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	if err != nil {
		return fmt.Errorf("env %s: %w", key, err)
	}
	*dst = f
	return nil
}
