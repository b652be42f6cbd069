package feature

import (
	"fmt"
	"strings"
)

// AttributeSchema 是有序、非空、互不重复的属性名序列，附带版本号。
// 同一次请求中，用户偏好与所有目录物品都按同一个 schema、同一顺序向量化。
//
// 只能通过 NewAttributeSchema 构造，零值视为无效 schema。
type AttributeSchema struct {
	version string
	names   []string
	index   map[string]int
}

// NewAttributeSchema 校验并构造 schema。
// 属性名会去掉首尾空白；空名、重复名、空列表都会返回错误。
func NewAttributeSchema(version string, names ...string) (AttributeSchema, error) {
	if len(names) == 0 {
		return AttributeSchema{}, fmt.Errorf("schema %q: at least one attribute required", version)
	}
	s := AttributeSchema{
		version: version,
		names:   make([]string, 0, len(names)),
		index:   make(map[string]int, len(names)),
	}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return AttributeSchema{}, fmt.Errorf("schema %q: blank attribute name", version)
		}
		if _, dup := s.index[n]; dup {
			return AttributeSchema{}, fmt.Errorf("schema %q: duplicate attribute %q", version, n)
		}
		s.index[n] = len(s.names)
		s.names = append(s.names, n)
	}
	return s, nil
}

// MustAttributeSchema 与 NewAttributeSchema 相同，出错时 panic。仅用于内置常量 schema。
func MustAttributeSchema(version string, names ...string) AttributeSchema {
	s, err := NewAttributeSchema(version, names...)
	if err != nil {
		panic(err)
	}
	return s
}

// Version 返回 schema 版本号（如 "v1"）。
func (s AttributeSchema) Version() string { return s.version }

// Len 返回属性个数，即向量维度。
func (s AttributeSchema) Len() int { return len(s.names) }

// Names 返回属性名副本（按 schema 顺序）。
func (s AttributeSchema) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Contains 判断属性是否属于 schema。
func (s AttributeSchema) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// IsZero 判断是否为未初始化的 schema。
func (s AttributeSchema) IsZero() bool { return len(s.names) == 0 }

func (s AttributeSchema) String() string {
	return s.version + "[" + strings.Join(s.names, ",") + "]"
}

// 两代目录表格对应的内置 schema。
var (
	// SchemaV1 对应早期 5 属性表格
	SchemaV1 = MustAttributeSchema("v1", "taste", "price", "service", "fresh", "interior")

	// SchemaV2 增加了 quantity/group/special/clean，并配合 category 列使用
	SchemaV2 = MustAttributeSchema("v2",
		"taste", "price", "service", "fresh", "interior",
		"quantity", "group", "special", "clean",
	)
)
