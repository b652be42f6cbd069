package feature

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// SchemaRegistry 管理多版本 schema，并把类别绑定到某个版本。
// 构造完成后只读，可被并发请求共享。
//
// 两代表格（5 属性 / 9 属性）通过配置区分，而不是代码分支：
//
//	schema:
//	  default: v2
//	  versions:
//	    v1: [taste, price, service, fresh, interior]
//	    v2: [taste, price, service, fresh, interior, quantity, group, special, clean]
//	  categories:
//	    legacy: v1
type SchemaRegistry struct {
	defaultVersion string
	versions       map[string]AttributeSchema
	categories     map[string]string
}

// RegistryConfig 是 SchemaRegistry 的配置结构（支持 YAML/JSON）。
type RegistryConfig struct {
	Default    string              `yaml:"default" json:"default" koanf:"default"`
	Versions   map[string][]string `yaml:"versions" json:"versions" koanf:"versions"`
	Categories map[string]string   `yaml:"categories" json:"categories" koanf:"categories"`
}

// DefaultSchemaRegistry 返回内置的 v1/v2 两个版本，默认 v2。
func DefaultSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{
		defaultVersion: SchemaV2.Version(),
		versions: map[string]AttributeSchema{
			SchemaV1.Version(): SchemaV1,
			SchemaV2.Version(): SchemaV2,
		},
		categories: map[string]string{},
	}
}

// Build 校验配置并构造 SchemaRegistry。
// Versions 为空时使用内置 v1/v2；Default 为空时取内置默认版本。
func (c RegistryConfig) Build() (*SchemaRegistry, error) {
	reg := DefaultSchemaRegistry()
	if len(c.Versions) > 0 {
		reg.versions = make(map[string]AttributeSchema, len(c.Versions))
		for version, names := range c.Versions {
			s, err := NewAttributeSchema(version, names...)
			if err != nil {
				return nil, err
			}
			reg.versions[version] = s
		}
	}
	if c.Default != "" {
		reg.defaultVersion = c.Default
	}
	if _, ok := reg.versions[reg.defaultVersion]; !ok {
		return nil, fmt.Errorf("schema registry: default version %q not defined", reg.defaultVersion)
	}
	for category, version := range c.Categories {
		if _, ok := reg.versions[version]; !ok {
			return nil, fmt.Errorf("schema registry: category %q bound to unknown version %q", category, version)
		}
		reg.categories[category] = version
	}
	return reg, nil
}

// LoadSchemaRegistry 从 YAML 或 JSON 文件加载 schema 配置（按扩展名判断）。
func LoadSchemaRegistry(path string) (*SchemaRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg RegistryConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}
	return cfg.Build()
}

// Resolve 返回类别绑定的 schema；未绑定的类别（包括空类别）使用默认版本。
func (r *SchemaRegistry) Resolve(category string) AttributeSchema {
	if version, ok := r.categories[category]; ok {
		return r.versions[version]
	}
	return r.versions[r.defaultVersion]
}

// Get 按版本号获取 schema。
func (r *SchemaRegistry) Get(version string) (AttributeSchema, bool) {
	s, ok := r.versions[version]
	return s, ok
}

// Default 返回默认 schema。
func (r *SchemaRegistry) Default() AttributeSchema {
	return r.versions[r.defaultVersion]
}

// Versions 返回所有版本号（排序后）。
func (r *SchemaRegistry) Versions() []string {
	out := make([]string, 0, len(r.versions))
	for v := range r.versions {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
