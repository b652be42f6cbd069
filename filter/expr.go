package filter

import (
	"context"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/pkg/dsl"
)

// ExprFilter 保留表达式为 true 的物品，其余过滤掉。
type ExprFilter struct {
	prg *dsl.Program
}

// NewExprFilter 编译表达式；语法错误或非 bool 表达式返回 InvalidPayloadError。
func NewExprFilter(expr string) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, invalidExpr(err)
	}
	return &ExprFilter{prg: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

// Expr 返回原始表达式。
func (f *ExprFilter) Expr() string {
	return f.prg.String()
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	ok, err := f.prg.Match(item)
	if err != nil {
		return false, invalidExpr(err)
	}
	return !ok, nil
}

func invalidExpr(err error) error {
	de := core.InvalidPayloadError("filter: " + err.Error())
	de.Attribute = "filter"
	de.Err = err
	return de
}
