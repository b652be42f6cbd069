package core

import "github.com/rushteam/tastekit/pkg/utils"

// Item 是推荐链路中的统一承载结构：一行目录数据对应一个 Item。
// ID 即展示名称（目录的 name 列，唯一）；Attributes 是属性名到非负分值的映射；
// Labels 用于解释与策略驱动；Score 用于排序决策。
type Item struct {
	ID         string
	Category   string
	Attributes map[string]float64
	Score      float64
	Meta       map[string]any
	Labels     map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:         id,
		Score:      0,
		Attributes: make(map[string]float64),
		Meta:       make(map[string]any),
		Labels:     make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
