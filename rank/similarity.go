// Package rank 实现相似度排序：把用户偏好向量与每个物品向量逐一比较并降序排列。
package rank

import (
	"fmt"
	"math"
	"sort"

	"github.com/rushteam/tastekit/core"
)

// Metric 相似度度量。
type Metric string

const (
	// MetricCosine 余弦相似度（默认）
	MetricCosine Metric = "cosine"
	// MetricDot 加权求和：偏好权重 × 属性分值
	MetricDot Metric = "dot"
)

// ParseMetric 解析度量名称，空字符串返回默认的 cosine。
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case "", MetricCosine:
		return MetricCosine, nil
	case MetricDot:
		return MetricDot, nil
	default:
		return "", fmt.Errorf("unknown metric %q", s)
	}
}

// Entry 是待排序的物品向量。
type Entry struct {
	ID     string
	Vector []float64
}

// Scored 是一个物品及其得分。
type Scored struct {
	ID    string
	Score float64
}

// RankedResult 按得分降序排列；同分保持输入顺序。
type RankedResult []Scored

// IDs 返回按排名排列的物品 ID。
func (r RankedResult) IDs() []string {
	out := make([]string, len(r))
	for i, s := range r {
		out[i] = s.ID
	}
	return out
}

// CosineSimilarity 计算 dot/(‖u‖·‖v‖)。
// 任一向量模长为 0 时返回 0.0：零偏好或全零物品不与任何向量相似。
// 两个向量先各自除以最大绝对值分量，极大或极小的有限值不会溢出。
// 调用方负责保证长度一致。
func CosineSimilarity(u, v []float64) float64 {
	su, sv := maxAbs(u), maxAbs(v)
	if su == 0 || sv == 0 {
		return 0
	}
	var dot, normU, normV float64
	for i := range u {
		a, b := u[i]/su, v[i]/sv
		dot += a * b
		normU += a * a
		normV += b * b
	}
	return dot / (math.Sqrt(normU) * math.Sqrt(normV))
}

func maxAbs(v []float64) float64 {
	var m float64
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

// Dot 计算内积。
func Dot(u, v []float64) float64 {
	var dot float64
	for i := range u {
		dot += u[i] * v[i]
	}
	return dot
}

// Ranker 对同一 schema 下的向量打分排序。零值使用 cosine。
type Ranker struct {
	Metric Metric
}

func (r Ranker) score(u, v []float64) float64 {
	if r.Metric == MetricDot {
		return Dot(u, v)
	}
	return CosineSimilarity(u, v)
}

// Rank 为每个 entry 打分并稳定降序排序。
// 任一 entry 长度与 user 不同返回 DimensionMismatchError，不做截断。
func (r Ranker) Rank(user []float64, entries []Entry) (RankedResult, error) {
	out := make(RankedResult, 0, len(entries))
	for _, e := range entries {
		if len(e.Vector) != len(user) {
			return nil, core.DimensionMismatchError(e.ID, len(user), len(e.Vector))
		}
		out = append(out, Scored{ID: e.ID, Score: r.score(user, e.Vector)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out, nil
}
