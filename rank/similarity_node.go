package rank

import (
	"context"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/feature"
	"github.com/rushteam/tastekit/pipeline"
	"github.com/rushteam/tastekit/pkg/utils"
)

// SimilarityNode 用同一个 schema 向量化偏好与物品，按相似度排序。
// - 写入 labels：rank_metric
// - 更新 item.Score 并按分数降序返回（同分保持输入顺序）
type SimilarityNode struct {
	Schema feature.AttributeSchema
	Ranker Ranker
}

func (n *SimilarityNode) Name() string        { return "rank.similarity" }
func (n *SimilarityNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *SimilarityNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	var prefs map[string]float64
	if rctx != nil {
		prefs = rctx.Preferences
	}
	user, err := feature.Vectorize(prefs, n.Schema)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	entries := make([]Entry, 0, len(items))
	byID := make(map[string]*core.Item, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		vec, err := feature.Vectorize(it.Attributes, n.Schema)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{ID: it.ID, Vector: vec})
		byID[it.ID] = it
	}

	ranked, err := n.Ranker.Rank(user, entries)
	if err != nil {
		return nil, err
	}

	metric := n.Ranker.Metric
	if metric == "" {
		metric = MetricCosine
	}
	out := make([]*core.Item, 0, len(ranked))
	for _, s := range ranked {
		it := byID[s.ID]
		it.Score = s.Score
		it.PutLabel("rank_metric", utils.Label{Value: string(metric), Source: "rank"})
		out = append(out, it)
	}
	return out, nil
}
