package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/tastekit/core"
)

// Pipeline 把推荐逻辑拆成可组合的 Node 链：召回 -> 过滤 -> 排序 -> 重排。
// 每个请求构造自己的 Pipeline，Node 之间只通过 items 与 rctx 传递数据。
type Pipeline struct {
	Nodes []Node
}

// Run 依次执行各 Node；任一 Node 出错立即中止，不返回部分结果。
// 领域错误原样返回，便于上层按错误码映射。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			if core.IsDomainError(err) {
				return nil, err
			}
			return nil, fmt.Errorf("%s %s: %w", node.Kind(), node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}

// Describe 返回各 Node 名称，用于日志。
func (p *Pipeline) Describe() []string {
	out := make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		out[i] = n.Name()
	}
	return out
}
