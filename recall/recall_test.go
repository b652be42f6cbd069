package recall

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/tastekit/catalog"
	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/feature"
	"github.com/rushteam/tastekit/store"
)

var testSchema = feature.MustAttributeSchema("t", "taste", "price")

func TestCatalogSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.csv")
	content := "name,category,taste,price\nA,cn,1,0\nB,jp,0,1\nC,cn,2,2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	src := &CatalogSource{Loader: catalog.NewFileLoader(path), Schema: testSchema}

	tests := []struct {
		category string
		want     []string
	}{
		{"", []string{"A", "B", "C"}},
		{"cn", []string{"A", "C"}},
		{"ko", nil},
	}
	for _, tt := range tests {
		items, err := src.Process(context.Background(), &core.RecommendContext{Category: tt.category}, nil)
		if err != nil {
			t.Fatalf("category %q: %v", tt.category, err)
		}
		if len(items) != len(tt.want) {
			t.Fatalf("category %q: got %d items, want %v", tt.category, len(items), tt.want)
		}
		for i, it := range items {
			if it.ID != tt.want[i] {
				t.Fatalf("category %q: position %d = %s", tt.category, i, it.ID)
			}
			if it.Labels["recall_source"].Value != "catalog" {
				t.Errorf("missing recall_source label on %s", it.ID)
			}
		}
	}

	_, err := (&CatalogSource{Loader: catalog.NewFileLoader(filepath.Join(t.TempDir(), "none.csv")), Schema: testSchema}).
		Recall(context.Background(), &core.RecommendContext{})
	if !core.IsDataSource(err) {
		t.Fatalf("expected DATA_SOURCE, got %v", err)
	}
}

func TestStoreRatingsAdapter(t *testing.T) {
	s := store.NewMemoryStore()
	defer s.Close()
	ctx := context.Background()
	a := NewStoreRatingsAdapter(s, "test")

	if got, err := a.GetUserRatings(ctx, "u1"); err != nil || len(got) != 0 {
		t.Fatalf("unknown user: %v, %v", got, err)
	}

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(a.AddRating(ctx, "u1", "A", 5))
	must(a.AddRating(ctx, "u1", "B", 2.5))
	must(a.AddRating(ctx, "u2", "A", 1))
	must(a.AddRating(ctx, "u1", "B", 3)) // 覆盖

	got, err := a.GetUserRatings(ctx, "u1")
	must(err)
	if len(got) != 2 || got["A"] != 5 || got["B"] != 3 {
		t.Fatalf("u1 ratings = %v", got)
	}

	all, err := a.GetAllRatings(ctx)
	must(err)
	if len(all) != 2 || all["u2"]["A"] != 1 {
		t.Fatalf("all ratings = %v", all)
	}
}

func mfItems() []*core.Item {
	mk := func(id string, taste, price float64) *core.Item {
		it := core.NewItem(id)
		it.Attributes = map[string]float64{"taste": taste, "price": price}
		return it
	}
	return []*core.Item{mk("A", 5, 1), mk("B", 1, 5), mk("C", 4, 2), mk("D", 2, 4)}
}

func mfRatings() map[string]map[string]float64 {
	return map[string]map[string]float64{
		"alice": {"A": 5, "B": 1, "C": 4},
		"bob":   {"A": 1, "B": 5, "D": 4},
		"carol": {"A": 5, "C": 5, "D": 1, "X": 3},
	}
}

func TestMatrixFactorizationDeterministic(t *testing.T) {
	mf := &MatrixFactorization{Config: DefaultMFConfig()}
	m1, err := mf.Train(context.Background(), mfRatings(), mfItems(), testSchema)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	m2, err := mf.Train(context.Background(), mfRatings(), mfItems(), testSchema)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	for _, u := range []string{"alice", "bob", "carol"} {
		for _, it := range mfItems() {
			s1, ok1 := m1.Predict(u, it.ID)
			s2, ok2 := m2.Predict(u, it.ID)
			if !ok1 || !ok2 || s1 != s2 {
				t.Fatalf("predict(%s,%s) not deterministic: %v/%v", u, it.ID, s1, s2)
			}
		}
	}
}

func TestMatrixFactorizationLearnsPreference(t *testing.T) {
	cfg := DefaultMFConfig()
	cfg.Epochs = 200
	mf := &MatrixFactorization{Config: cfg}
	m, err := mf.Train(context.Background(), mfRatings(), mfItems(), testSchema)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	a, _ := m.Predict("alice", "A")
	b, _ := m.Predict("alice", "B")
	if a <= b {
		t.Errorf("alice should prefer A over B: %v <= %v", a, b)
	}
	if m.HasUser("dave") {
		t.Error("dave has no ratings")
	}
	if _, ok := m.Predict("alice", "X"); ok {
		t.Error("X is not in the catalog")
	}
	if _, err := m.ForUser("dave").Predict(mfItems()[0]); !core.IsNotFound(err) {
		t.Errorf("expected NOT_FOUND for unknown user, got %v", err)
	}
}

func TestMatrixFactorizationInvalidConfig(t *testing.T) {
	mf := &MatrixFactorization{}
	if _, err := mf.Train(context.Background(), mfRatings(), mfItems(), testSchema); err == nil {
		t.Fatal("expected error for zero config")
	}
}

func TestMatrixFactorizationCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mf := &MatrixFactorization{Config: DefaultMFConfig()}
	if _, err := mf.Train(ctx, mfRatings(), mfItems(), testSchema); err == nil {
		t.Fatal("expected context error")
	}
}

func TestMatrixFactorizationLargeRatings(t *testing.T) {
	ratings := map[string]map[string]float64{
		"alice": {"A": 1e6, "B": 0},
		"bob":   {"A": 5, "C": 1e6},
	}
	mf := &MatrixFactorization{Config: DefaultMFConfig()}
	m, err := mf.Train(context.Background(), ratings, mfItems(), testSchema)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	for _, id := range []string{"A", "B", "C", "D"} {
		score, ok := m.Predict("alice", id)
		if !ok || math.IsNaN(score) || math.IsInf(score, 0) {
			t.Fatalf("predict(alice,%s) = %v, %v", id, score, ok)
		}
	}
	a, _ := m.Predict("alice", "A")
	b, _ := m.Predict("alice", "B")
	if a <= b {
		t.Errorf("alice should prefer A over B: %v <= %v", a, b)
	}
}

func TestMatrixFactorizationDiverged(t *testing.T) {
	cfg := DefaultMFConfig()
	cfg.LearningRate = 1e6
	mf := &MatrixFactorization{Config: cfg}
	if _, err := mf.Train(context.Background(), mfRatings(), mfItems(), testSchema); err == nil {
		t.Fatal("expected divergence error")
	}
}
