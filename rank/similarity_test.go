package rank

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/feature"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		u, v []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"zero user", []float64{0, 0}, []float64{3, 4}, 0},
		{"zero item", []float64{3, 4}, []float64{0, 0}, 0},
		{"both zero", []float64{0, 0}, []float64{0, 0}, 0},
		{"huge identical", []float64{1e200, 1e200}, []float64{1e200, 1e200}, 1},
		{"huge user", []float64{1e308, 1e308}, []float64{1, 0}, math.Sqrt2 / 2},
		{"tiny", []float64{1e-300, 0}, []float64{5e-301, 5e-301}, math.Sqrt2 / 2},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CosineSimilarity(tt.u, tt.v); !almostEqual(got, tt.want) {
				t.Errorf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineScaleInvariance(t *testing.T) {
	u := []float64{4, 2, 5, 1}
	v := []float64{3, 3, 1, 2}
	base := CosineSimilarity(u, v)
	for _, k := range []float64{1e-200, 0.001, 0.5, 2, 1000, 1e200} {
		scaled := make([]float64, len(v))
		for i := range v {
			scaled[i] = v[i] * k
		}
		if got := CosineSimilarity(u, scaled); !almostEqual(got, base) {
			t.Errorf("k=%v: got %v, want %v", k, got, base)
		}
	}
}

func TestRank(t *testing.T) {
	tests := []struct {
		name    string
		metric  Metric
		user    []float64
		entries []Entry
		want    RankedResult
	}{
		{
			name: "orthogonal items",
			user: []float64{1, 0},
			entries: []Entry{
				{ID: "B", Vector: []float64{0, 1}},
				{ID: "A", Vector: []float64{1, 0}},
			},
			want: RankedResult{{"A", 1}, {"B", 0}},
		},
		{
			name: "ties keep input order",
			user: []float64{1, 1},
			entries: []Entry{
				{ID: "X", Vector: []float64{2, 2}},
				{ID: "Y", Vector: []float64{0, 1}},
				{ID: "Z", Vector: []float64{2, 2}},
			},
			want: RankedResult{{"X", 1}, {"Z", 1}, {"Y", math.Sqrt2 / 2}},
		},
		{
			name: "huge components",
			user: []float64{1e308, 1e308},
			entries: []Entry{
				{ID: "A", Vector: []float64{1, 0}},
				{ID: "B", Vector: []float64{1e200, 1e200}},
			},
			want: RankedResult{{"B", 1}, {"A", math.Sqrt2 / 2}},
		},
		{
			name:   "dot metric",
			metric: MetricDot,
			user:   []float64{2, 1},
			entries: []Entry{
				{ID: "A", Vector: []float64{1, 1}},
				{ID: "B", Vector: []float64{3, 0}},
			},
			want: RankedResult{{"B", 6}, {"A", 3}},
		},
		{
			name:    "empty entries",
			user:    []float64{1},
			entries: nil,
			want:    RankedResult{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Ranker{Metric: tt.metric}.Rank(tt.user, tt.entries)
			if err != nil {
				t.Fatalf("Rank: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i].ID != tt.want[i].ID || !almostEqual(got[i].Score, tt.want[i].Score) {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestRankDimensionMismatch(t *testing.T) {
	_, err := Ranker{}.Rank([]float64{1, 2}, []Entry{{ID: "A", Vector: []float64{1}}})
	if !core.IsDimensionMismatch(err) {
		t.Fatalf("expected DIMENSION_MISMATCH, got %v", err)
	}
}

func TestRankDeterministic(t *testing.T) {
	entries := []Entry{
		{ID: "a", Vector: []float64{1, 2, 3}},
		{ID: "b", Vector: []float64{3, 2, 1}},
		{ID: "c", Vector: []float64{1, 2, 3}},
		{ID: "d", Vector: []float64{0, 0, 0}},
	}
	user := []float64{1, 1, 2}
	first, _ := Ranker{}.Rank(user, entries)
	for i := 0; i < 10; i++ {
		again, _ := Ranker{}.Rank(user, entries)
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("run %d differs: %v vs %v", i, first, again)
			}
		}
	}
	if first[len(first)-1].ID != "d" || first[len(first)-1].Score != 0 {
		t.Fatalf("zero vector should rank last with score 0: %v", first)
	}
}

func TestParseMetric(t *testing.T) {
	for in, want := range map[string]Metric{"": MetricCosine, "cosine": MetricCosine, "dot": MetricDot} {
		got, err := ParseMetric(in)
		if err != nil || got != want {
			t.Errorf("ParseMetric(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMetric("euclid"); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestSimilarityNode(t *testing.T) {
	schema := feature.MustAttributeSchema("t", "taste", "price")
	a := core.NewItem("A")
	a.Attributes = map[string]float64{"taste": 1, "price": 0}
	b := core.NewItem("B")
	b.Attributes = map[string]float64{"taste": 0, "price": 1}

	node := &SimilarityNode{Schema: schema}
	rctx := &core.RecommendContext{Preferences: map[string]float64{"taste": 1, "price": 0}}
	out, err := node.Process(context.Background(), rctx, []*core.Item{b, a})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 2 || out[0].ID != "A" || out[0].Score != 1 || out[1].ID != "B" || out[1].Score != 0 {
		t.Fatalf("unexpected order: %v, %v", out[0], out[1])
	}
	if lbl, ok := out[0].Labels["rank_metric"]; !ok || lbl.Value != "cosine" {
		t.Errorf("rank_metric label = %v", lbl)
	}
}

func TestSimilarityNodeMissingPreference(t *testing.T) {
	schema := feature.MustAttributeSchema("t", "taste", "price")
	node := &SimilarityNode{Schema: schema}
	rctx := &core.RecommendContext{Preferences: map[string]float64{"taste": 1}}
	_, err := node.Process(context.Background(), rctx, nil)
	if de := core.GetDomainError(err); de == nil || de.Attribute != "price" || !core.IsMissingAttribute(err) {
		t.Fatalf("expected missing price, got %v", err)
	}
}
