// Package recommend 是推荐服务入口：校验请求、解析 schema、选择策略并执行。
//
// 策略通过 Recommender 接口接入：
//   - ContentBased（content，默认）：偏好向量与物品属性向量的相似度排序
//   - CollaborativeFiltering（cf）：基于评分数据训练的矩阵分解模型打分
//
// 每个请求独立读取目录、构造向量与 Pipeline，不保存跨请求状态。
package recommend

import (
	"context"
	"fmt"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/feature"
	"github.com/rushteam/tastekit/filter"
	"github.com/rushteam/tastekit/rank"
)

// 策略名称
const (
	StrategyContent = "content"
	StrategyCF      = "cf"
)

// Request 是一次推荐请求（未校验）。
type Request struct {
	// Category 类别选择器，空字符串表示全部
	Category string
	// Preferences 原始偏好：属性名 -> JSON 数值
	Preferences map[string]any
	// Strategy 策略名，空字符串为 content
	Strategy string
	// Metric 相似度度量（content 策略），空字符串为 cosine
	Metric string
	// Filter CEL 过滤表达式，可选
	Filter string
	// Limit 返回数量上限，0 表示不限
	Limit int
	// PerCategory 每个类别最多返回的数量，0 表示不限
	PerCategory int
	// UserID 用户 ID（cf 策略必填）
	UserID string
	// ExcludeRated 排除用户已评分的物品（cf 策略）
	ExcludeRated bool
}

// Result 是推荐结果。
type Result struct {
	Strategy string
	Schema   string
	Items    rank.RankedResult
}

// Query 是校验后交给策略执行的参数。
type Query struct {
	Schema       feature.AttributeSchema
	Metric       rank.Metric
	Filter       *filter.ExprFilter
	Limit        int
	PerCategory  int
	ExcludeRated bool
}

// Recommender 是推荐策略的抽象。
// rctx 中的 Preferences 已校验为有限数值，Category/UserID 来自请求。
type Recommender interface {
	Name() string
	Recommend(ctx context.Context, rctx *core.RecommendContext, q Query) (rank.RankedResult, error)
}

// ColdStartError 表示用户没有任何评分，协同过滤无法给出推荐。
func ColdStartError(userID string) *core.DomainError {
	return core.NewDomainError(core.ModuleService, core.ErrorCodeNotFound,
		fmt.Sprintf("cold start: user %q has no ratings", userID))
}

// toRanked 把排好序的物品转为 RankedResult。
func toRanked(items []*core.Item) rank.RankedResult {
	out := make(rank.RankedResult, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, rank.Scored{ID: it.ID, Score: it.Score})
	}
	return out
}
