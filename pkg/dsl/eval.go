// Package dsl 提供基于 CEL (Common Expression Language) 的物品过滤表达式。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/tastekit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量类型
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("name", cel.StringType),
		cel.Variable("category", cel.StringType),
		cel.Variable("attr", cel.MapType(cel.StringType, cel.DoubleType)),
		cel.Variable("label", cel.MapType(cel.StringType, cel.StringType)),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Program 是编译后的过滤表达式，编译一次后可对任意多个物品求值，并发安全。
//
// 可用变量：
//   - name：物品名称（string）
//   - category：物品类别（string，可能为空）
//   - attr：属性分值（map(string, double)）
//   - label：物品标签值（map(string, string)）
//
// 示例：
//   - `attr.price <= 150.0 && category == "ko"`
//   - `name.startsWith("Cafe") || attr.taste > 4.0`
//   - `"special" in attr && attr.special >= 3.0`
//
// 访问不存在的 key 会在求值时报错，需要先用 `"key" in attr` 判断。
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式；表达式必须返回 bool。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression must return bool, got %s", ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式。
func (p *Program) String() string { return p.expr }

// Match 对单个物品求值。
func (p *Program) Match(item *core.Item) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(item))
	if err != nil {
		return false, fmt.Errorf("eval error on %q: %w", item.ID, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return bool, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(item *core.Item) map[string]any {
	attr := item.Attributes
	if attr == nil {
		attr = map[string]float64{}
	}
	labels := make(map[string]string, len(item.Labels))
	for k, v := range item.Labels {
		labels[k] = v.Value
	}
	return map[string]any{
		"name":     item.ID,
		"category": item.Category,
		"attr":     attr,
		"label":    labels,
	}
}
