package filter

import (
	"context"

	"github.com/rushteam/tastekit/core"
)

// RatedStore 读取用户已评分的物品。
type RatedStore interface {
	GetUserRatings(ctx context.Context, userID string) (map[string]float64, error)
}

// RatedFilter 过滤掉当前用户已经评过分的物品（协同过滤场景下只推荐新物品）。
// 评分在首次调用时按请求读取一次。
type RatedFilter struct {
	Store RatedStore

	userID string
	rated  map[string]float64
}

func (f *RatedFilter) Name() string {
	return "filter.rated"
}

func (f *RatedFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Store == nil || rctx == nil || rctx.UserID == "" {
		return false, nil
	}
	if f.rated == nil || f.userID != rctx.UserID {
		rated, err := f.Store.GetUserRatings(ctx, rctx.UserID)
		if err != nil {
			return false, err
		}
		f.userID, f.rated = rctx.UserID, rated
	}
	_, ok := f.rated[item.ID]
	return ok, nil
}
