// Package recall 生成候选集：从目录数据源取出物品，或基于评分数据训练的模型给物品打分。
package recall

import (
	"context"

	"github.com/rushteam/tastekit/catalog"
	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/feature"
	"github.com/rushteam/tastekit/pipeline"
	"github.com/rushteam/tastekit/pkg/utils"
)

// Source 表示一个可复用的召回源。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// CatalogSource 每次召回都通过 Loader 重新读取目录，返回目录中（按类别过滤后）的全部物品。
// 同时实现 pipeline.Node，作为 Pipeline 的第一个节点。
// - 写入 labels：recall_source
type CatalogSource struct {
	Loader catalog.Loader
	Schema feature.AttributeSchema
}

var (
	_ Source        = (*CatalogSource)(nil)
	_ pipeline.Node = (*CatalogSource)(nil)
)

func (s *CatalogSource) Name() string        { return "recall.catalog" }
func (s *CatalogSource) Kind() pipeline.Kind { return pipeline.KindRecall }

func (s *CatalogSource) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	category := ""
	if rctx != nil {
		category = rctx.Category
	}
	cat, err := s.Loader.Load(ctx, s.Schema, category)
	if err != nil {
		return nil, err
	}
	items := cat.Items()
	for _, it := range items {
		it.PutLabel("recall_source", utils.Label{Value: "catalog", Source: "recall"})
	}
	return items, nil
}

// Process 把召回结果追加到输入 items 之后。
func (s *CatalogSource) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	recalled, err := s.Recall(ctx, rctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return recalled, nil
	}
	return append(items, recalled...), nil
}
