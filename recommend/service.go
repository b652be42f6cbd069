package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/feature"
	"github.com/rushteam/tastekit/filter"
	"github.com/rushteam/tastekit/logging"
	"github.com/rushteam/tastekit/metrics"
	"github.com/rushteam/tastekit/pkg/conv"
	"github.com/rushteam/tastekit/rank"
)

// Service 校验请求并分派给对应的 Recommender。
// 除只读的 Registry 与策略外不持有状态，可被并发请求共享。
type Service struct {
	Registry   *feature.SchemaRegistry
	strategies map[string]Recommender
}

// NewService 创建推荐服务；同名策略后注册的覆盖先注册的。
func NewService(registry *feature.SchemaRegistry, recommenders ...Recommender) *Service {
	s := &Service{
		Registry:   registry,
		strategies: make(map[string]Recommender, len(recommenders)),
	}
	for _, r := range recommenders {
		s.strategies[r.Name()] = r
	}
	return s
}

// Strategies 返回已注册的策略名（排序后）。
func (s *Service) Strategies() []string {
	out := make([]string, 0, len(s.strategies))
	for name := range s.strategies {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Recommend 执行一次推荐。任一步骤出错都返回错误，不返回部分结果。
//
// 校验顺序：
//  1. 策略、度量、limit、per_category
//  2. 偏好必须是有限数值（content 策略还要求非空）
//  3. 按类别解析 schema；content 策略要求偏好覆盖 schema 全部属性
//  4. 编译过滤表达式
func (s *Service) Recommend(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()
	strategy := req.Strategy
	if strategy == "" {
		strategy = StrategyContent
	}

	res, err := s.recommend(ctx, strategy, req)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		if de := core.GetDomainError(err); de != nil {
			outcome = de.Code
		}
	}
	metrics.RecordRecommendation(strategy, outcome)

	log := logging.Ctx(ctx)
	if err != nil {
		log.Warn().Err(err).
			Str("strategy", strategy).
			Str("category", req.Category).
			Str("outcome", outcome).
			Dur("duration", time.Since(start)).
			Msg("recommend failed")
		return nil, err
	}
	log.Info().
		Str("strategy", strategy).
		Str("category", req.Category).
		Str("schema", res.Schema).
		Int("count", len(res.Items)).
		Dur("duration", time.Since(start)).
		Msg("recommend")
	return res, nil
}

func (s *Service) recommend(ctx context.Context, strategy string, req *Request) (*Result, error) {
	rec, ok := s.strategies[strategy]
	if !ok {
		return nil, invalidField("strategy", fmt.Sprintf("unknown strategy %q", strategy))
	}
	metric, err := rank.ParseMetric(req.Metric)
	if err != nil {
		return nil, invalidField("metric", err.Error())
	}
	if req.Limit < 0 {
		return nil, invalidField("limit", "limit must be >= 0")
	}
	if req.PerCategory < 0 {
		return nil, invalidField("per_category", "per_category must be >= 0")
	}

	prefs, err := ParsePreferences(req.Preferences)
	if err != nil {
		return nil, err
	}
	if len(prefs) == 0 && strategy == StrategyContent {
		return nil, core.InvalidPayloadError("preferences must be a non-empty object")
	}

	schema := s.Registry.Resolve(req.Category)
	if strategy == StrategyContent {
		if missing := feature.MissingAttributes(prefs, schema); len(missing) > 0 {
			de := core.MissingAttributeError(missing[0])
			if len(missing) > 1 {
				de.Message = fmt.Sprintf("%s (schema %s also misses %v)", de.Message, schema.Version(), missing[1:])
			}
			return nil, de
		}
	}

	q := Query{
		Schema:       schema,
		Metric:       metric,
		Limit:        req.Limit,
		PerCategory:  req.PerCategory,
		ExcludeRated: req.ExcludeRated,
	}
	if req.Filter != "" {
		f, err := filter.NewExprFilter(req.Filter)
		if err != nil {
			return nil, err
		}
		q.Filter = f
	}

	rctx := &core.RecommendContext{
		UserID:      req.UserID,
		Category:    req.Category,
		Preferences: prefs,
	}
	items, err := rec.Recommend(ctx, rctx, q)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = rank.RankedResult{}
	}
	return &Result{Strategy: rec.Name(), Schema: schema.Version(), Items: items}, nil
}

// ParsePreferences 把原始偏好转为 属性名 -> 有限数值。
// 只接受 JSON 数值（整数或浮点）；布尔、字符串、null、嵌套结构与 NaN/Inf 均返回 InvalidPayloadError。
func ParsePreferences(raw map[string]any) (map[string]float64, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]float64, len(raw))
	for _, k := range keys {
		v := raw[k]
		if k == "" {
			return nil, core.InvalidPayloadError("preference names must not be empty")
		}
		f, ok := conv.ToNumber(v)
		if !ok {
			return nil, invalidField(k, fmt.Sprintf("preference %q must be a finite number, got %T", k, v))
		}
		out[k] = f
	}
	return out, nil
}

func invalidField(attribute, message string) *core.DomainError {
	de := core.InvalidPayloadError(message)
	de.Attribute = attribute
	return de
}
