package recommend

import (
	"context"

	"github.com/rushteam/tastekit/catalog"
	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/filter"
	"github.com/rushteam/tastekit/logging"
	"github.com/rushteam/tastekit/pipeline"
	"github.com/rushteam/tastekit/rank"
	"github.com/rushteam/tastekit/recall"
	"github.com/rushteam/tastekit/rerank"
)

// ContentBased 基于内容的推荐：
//
//	recall.catalog -> [filter.node] -> rank.similarity -> [rerank.diversity] -> [rerank.topn]
type ContentBased struct {
	Loader catalog.Loader
}

func (r *ContentBased) Name() string { return StrategyContent }

func (r *ContentBased) Recommend(ctx context.Context, rctx *core.RecommendContext, q Query) (rank.RankedResult, error) {
	nodes := []pipeline.Node{
		&recall.CatalogSource{Loader: r.Loader, Schema: q.Schema},
	}
	if q.Filter != nil {
		nodes = append(nodes, &filter.FilterNode{Filters: []filter.Filter{q.Filter}})
	}
	nodes = append(nodes, &rank.SimilarityNode{Schema: q.Schema, Ranker: rank.Ranker{Metric: q.Metric}})
	nodes = append(nodes, postRank(q)...)

	p := &pipeline.Pipeline{Nodes: nodes}
	logging.Ctx(ctx).Debug().Strs("nodes", p.Describe()).Msg("pipeline")
	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}
	return toRanked(items), nil
}

// postRank 返回排序之后的可选节点。
func postRank(q Query) []pipeline.Node {
	var nodes []pipeline.Node
	if q.PerCategory > 0 {
		nodes = append(nodes, &rerank.Diversity{MaxPerCategory: q.PerCategory})
	}
	if q.Limit > 0 {
		nodes = append(nodes, &rerank.TopNNode{N: q.Limit})
	}
	return nodes
}
