// Package config 加载服务配置：内置默认值 -> YAML 配置文件 -> TASTEKIT_ 环境变量，逐层覆盖。
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/tastekit/feature"
	"github.com/rushteam/tastekit/logging"
	"github.com/rushteam/tastekit/recall"
)

const (
	// EnvPrefix 环境变量前缀
	EnvPrefix = "TASTEKIT_"
	// ConfigPathEnvVar 指定配置文件路径的环境变量
	ConfigPathEnvVar = "TASTEKIT_CONFIG"
)

// Config 服务配置。
type Config struct {
	Server  ServerConfig    `koanf:"server"`
	Catalog CatalogConfig   `koanf:"catalog"`
	Schema  SchemaConfig    `koanf:"schema"`
	Store   StoreConfig     `koanf:"store"`
	CF      recall.MFConfig `koanf:"cf"`
	Log     logging.Config  `koanf:"log"`
}

type ServerConfig struct {
	Addr           string        `koanf:"addr" validate:"required"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gt=0"`
}

type CatalogConfig struct {
	// Path 目录表格文件（.xlsx / .xls / .csv / .tsv）
	Path string `koanf:"path" validate:"required"`
	// Sheet 工作表名称，为空时读第一个
	Sheet string `koanf:"sheet"`
}

// SchemaConfig 对应 feature.RegistryConfig；Path 非空时从文件加载，忽略其他字段。
type SchemaConfig struct {
	Path       string              `koanf:"path"`
	Default    string              `koanf:"default"`
	Versions   map[string][]string `koanf:"versions"`
	Categories map[string]string   `koanf:"categories"`
}

// Registry 构造 schema 注册表。
func (c SchemaConfig) Registry() (*feature.SchemaRegistry, error) {
	if c.Path != "" {
		return feature.LoadSchemaRegistry(c.Path)
	}
	return feature.RegistryConfig{
		Default:    c.Default,
		Versions:   c.Versions,
		Categories: c.Categories,
	}.Build()
}

type StoreConfig struct {
	// Driver 评分存储：memory 或 redis
	Driver    string      `koanf:"driver" validate:"oneof=memory redis"`
	KeyPrefix string      `koanf:"key_prefix" validate:"required"`
	Redis     RedisConfig `koanf:"redis"`
}

type RedisConfig struct {
	Addr string `koanf:"addr"`
	DB   int    `koanf:"db" validate:"gte=0,lte=15"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 10 * time.Second,
		},
		Catalog: CatalogConfig{
			Path: "restaurant_scores.xls",
		},
		Schema: SchemaConfig{
			Default: feature.SchemaV2.Version(),
		},
		Store: StoreConfig{
			Driver:    "memory",
			KeyPrefix: "tastekit",
			Redis:     RedisConfig{Addr: "localhost:6379"},
		},
		CF: recall.DefaultMFConfig(),
		Log: logging.Config{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load 按层加载配置：
//  1. 内置默认值
//  2. YAML 配置文件（path 为空时读取 TASTEKIT_CONFIG；都为空则跳过）
//  3. TASTEKIT_ 前缀的环境变量
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envTransformFunc 把环境变量名转换为配置路径：第一个下划线分隔段落，其余保留。
//
//	TASTEKIT_SERVER_REQUEST_TIMEOUT -> server.request_timeout
//	TASTEKIT_CF_LEARNING_RATE       -> cf.learning_rate
//	TASTEKIT_STORE_REDIS_ADDR       -> store.redis.addr
//
// TASTEKIT_CONFIG 不是配置项，返回空字符串跳过。
func envTransformFunc(key string) string {
	if key == ConfigPathEnvVar {
		return ""
	}
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "store_redis_"); ok {
		return "store.redis." + rest
	}
	section, rest, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	return section + "." + rest
}
