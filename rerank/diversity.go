package rerank

import (
	"context"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/pipeline"
)

// Diversity 按类别限流：每个类别最多保留 MaxPerCategory 个物品（按已排好的顺序保留靠前的）。
// 没有类别的物品不受限制。MaxPerCategory <= 0 时不做处理。
// 对应请求的 per_category 参数，需显式开启。
type Diversity struct {
	MaxPerCategory int
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.MaxPerCategory <= 0 || len(items) == 0 {
		return items, nil
	}

	seen := make(map[string]int, 16)
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		if it.Category == "" {
			out = append(out, it)
			continue
		}
		if seen[it.Category] >= n.MaxPerCategory {
			continue
		}
		seen[it.Category]++
		out = append(out, it)
	}
	return out, nil
}
