package feature

// TotalAttribute 是目录表格中可选的总分列。
const TotalAttribute = "total"

// RatioFeatures 计算每个属性在总分中的占比（attr / total），按 schema 顺序返回。
//
// total 优先取 attrs["total"]，缺失或 <= 0 时退化为 schema 属性之和；
// 总分为 0 时返回全 0 向量。缺失的 schema 属性按 0 处理。
//
// 仅用于协同过滤策略构造物品侧特征，内容相似度链路不做任何归一化。
func RatioFeatures(attrs map[string]float64, schema AttributeSchema) []float64 {
	out := make([]float64, len(schema.names))
	total := attrs[TotalAttribute]
	if total <= 0 {
		total = 0
		for _, name := range schema.names {
			total += attrs[name]
		}
	}
	if total == 0 {
		return out
	}
	for i, name := range schema.names {
		out[i] = attrs[name] / total
	}
	return out
}
