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
)

// CollaborativeFiltering 基于评分数据的推荐：
// 读取目录后按请求训练矩阵分解模型，用预测评分为目录物品排序。
//
//	recall.catalog -> (train mf) -> [filter.node] -> rank.model -> [rerank.diversity] -> [rerank.topn]
type CollaborativeFiltering struct {
	Loader  catalog.Loader
	Ratings recall.RatingsStore
	Config  recall.MFConfig
}

func (r *CollaborativeFiltering) Name() string { return StrategyCF }

func (r *CollaborativeFiltering) Recommend(ctx context.Context, rctx *core.RecommendContext, q Query) (rank.RankedResult, error) {
	if rctx.UserID == "" {
		de := core.InvalidPayloadError("user_id is required for the cf strategy")
		de.Attribute = "user_id"
		return nil, de
	}

	own, err := r.Ratings.GetUserRatings(ctx, rctx.UserID)
	if err != nil {
		return nil, err
	}
	if len(own) == 0 {
		return nil, ColdStartError(rctx.UserID)
	}

	src := &recall.CatalogSource{Loader: r.Loader, Schema: q.Schema}
	items, err := src.Recall(ctx, rctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return rank.RankedResult{}, nil
	}

	all, err := r.Ratings.GetAllRatings(ctx)
	if err != nil {
		return nil, err
	}
	mf := &recall.MatrixFactorization{Config: r.Config}
	model, err := mf.Train(ctx, all, items, q.Schema)
	if err != nil {
		return nil, err
	}
	// 用户的评分全部落在当前目录之外
	if !model.HasUser(rctx.UserID) {
		return nil, ColdStartError(rctx.UserID)
	}

	var filters []filter.Filter
	if q.ExcludeRated {
		filters = append(filters, &filter.RatedFilter{Store: r.Ratings})
	}
	if q.Filter != nil {
		filters = append(filters, q.Filter)
	}

	var nodes []pipeline.Node
	if len(filters) > 0 {
		nodes = append(nodes, &filter.FilterNode{Filters: filters})
	}
	nodes = append(nodes, &rank.ModelNode{Model: model.ForUser(rctx.UserID)})
	nodes = append(nodes, postRank(q)...)

	p := &pipeline.Pipeline{Nodes: nodes}
	logging.Ctx(ctx).Debug().Strs("nodes", p.Describe()).Msg("pipeline")
	ranked, err := p.Run(ctx, rctx, items)
	if err != nil {
		return nil, err
	}
	return toRanked(ranked), nil
}
