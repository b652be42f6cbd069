// Package catalog 实现目录加载：把表格数据源（xlsx / xls / csv）解析为有序的物品集合。
//
// 每次 Load 都重新读取数据源，不做跨请求缓存，外部对文件的修改在下一次请求即可见。
// 返回的 Catalog 保持表格行序，排序阶段以此作为稳定的并列次序。
package catalog

import (
	"context"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/feature"
)

// 表头中的保留列名（统一转为小写后匹配）。
const (
	ColumnName     = "name"
	ColumnCategory = "category"
)

// Loader 是目录加载器的抽象。
// category 为空表示不过滤；否则只保留 category 列与之完全相等（区分大小写）的行。
// 过滤后没有任何行不是错误，返回空 Catalog。
type Loader interface {
	Load(ctx context.Context, schema feature.AttributeSchema, category string) (*Catalog, error)
}

// Catalog 是一次请求内的目录快照：按行序排列的物品 + 名称索引。
// 只在请求内使用，不跨请求共享。
type Catalog struct {
	Source string // 数据源（文件路径）
	Format string // 表格格式：xlsx / xls / csv / tsv

	items []*core.Item
	index map[string]*core.Item
}

func newCatalog(source, format string, capacity int) *Catalog {
	return &Catalog{
		Source: source,
		Format: format,
		items:  make([]*core.Item, 0, capacity),
		index:  make(map[string]*core.Item, capacity),
	}
}

// Items 返回按行序排列的物品（调用方不应修改切片本身）。
func (c *Catalog) Items() []*core.Item { return c.items }

// Len 返回物品数量。
func (c *Catalog) Len() int { return len(c.items) }

// Get 按名称查找物品。
func (c *Catalog) Get(name string) (*core.Item, bool) {
	it, ok := c.index[name]
	return it, ok
}

// Names 返回按行序排列的物品名称。
func (c *Catalog) Names() []string {
	out := make([]string, len(c.items))
	for i, it := range c.items {
		out[i] = it.ID
	}
	return out
}

func (c *Catalog) add(it *core.Item) {
	c.items = append(c.items, it)
	c.index[it.ID] = it
}
