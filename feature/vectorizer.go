package feature

import "github.com/rushteam/tastekit/core"

// Vectorize 按 schema 顺序把属性映射投影为向量。
//
// 规则：
//   - 输出长度等于 schema.Len()，第 i 个元素对应 schema 第 i 个属性
//   - 值原样透传，不做归一化/缩放（用户与物品的量纲一致性由调用方负责）
//   - 多余的属性被忽略
//   - 缺少任一 schema 属性返回 MissingAttributeError（按 schema 顺序报告第一个缺失项）
//
// 用法：
//
//	vec, err := feature.Vectorize(prefs, feature.SchemaV2)
//	if core.IsMissingAttribute(err) { ... }
func Vectorize(attrs map[string]float64, schema AttributeSchema) ([]float64, error) {
	vector := make([]float64, len(schema.names))
	for i, name := range schema.names {
		v, ok := attrs[name]
		if !ok {
			return nil, core.MissingAttributeError(name)
		}
		vector[i] = v
	}
	return vector, nil
}

// MissingAttributes 返回 attrs 中缺失的 schema 属性（按 schema 顺序）。
func MissingAttributes(attrs map[string]float64, schema AttributeSchema) []string {
	var missing []string
	for _, name := range schema.names {
		if _, ok := attrs[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
