package core

// RecommendContext 承载单次请求的上下文，贯穿整个 Pipeline 透传。
// 每个请求独立构造，不在请求之间共享。
type RecommendContext struct {
	// UserID 仅协同过滤策略需要
	UserID string

	// Category 是类别选择器，空字符串表示不过滤
	Category string

	// Preferences 是已校验的用户偏好（属性名 -> 权重/分值）
	Preferences map[string]float64
}
