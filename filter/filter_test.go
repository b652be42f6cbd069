package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/tastekit/core"
)

func items(ids ...string) []*core.Item {
	out := make([]*core.Item, len(ids))
	for i, id := range ids {
		it := core.NewItem(id)
		it.Attributes = map[string]float64{"price": float64(100 * (i + 1))}
		out[i] = it
	}
	return out
}

func ids(items []*core.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type staticRatings map[string]map[string]float64

func (s staticRatings) GetUserRatings(_ context.Context, userID string) (map[string]float64, error) {
	if userID == "broken" {
		return nil, errors.New("store down")
	}
	return s[userID], nil
}

func TestFilterNode(t *testing.T) {
	expr, err := NewExprFilter(`attr.price <= 200.0`)
	if err != nil {
		t.Fatalf("NewExprFilter: %v", err)
	}
	ratings := staticRatings{"u1": {"A": 5}}

	tests := []struct {
		name    string
		filters []Filter
		userID  string
		want    []string
		wantErr bool
	}{
		{"no filters", nil, "", []string{"A", "B", "C"}, false},
		{"expression", []Filter{expr}, "", []string{"A", "B"}, false},
		{"rated", []Filter{&RatedFilter{Store: ratings}}, "u1", []string{"B", "C"}, false},
		{"rated without user", []Filter{&RatedFilter{Store: ratings}}, "", []string{"A", "B", "C"}, false},
		{"combined", []Filter{expr, &RatedFilter{Store: ratings}}, "u1", []string{"B"}, false},
		{"store error aborts", []Filter{&RatedFilter{Store: ratings}}, "broken", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &FilterNode{Filters: tt.filters}
			out, err := node.Process(context.Background(), &core.RecommendContext{UserID: tt.userID}, items("A", "B", "C"))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if got := ids(out); !equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExprFilterErrors(t *testing.T) {
	if _, err := NewExprFilter(`attr.price +`); !core.IsInvalidPayload(err) {
		t.Fatalf("compile error should be INVALID_PAYLOAD, got %v", err)
	}

	f, err := NewExprFilter(`attr.missing > 1.0`)
	if err != nil {
		t.Fatalf("NewExprFilter: %v", err)
	}
	_, err = (&FilterNode{Filters: []Filter{f}}).Process(context.Background(), &core.RecommendContext{}, items("A"))
	if !core.IsInvalidPayload(err) {
		t.Fatalf("eval error should be INVALID_PAYLOAD, got %v", err)
	}
	if de := core.GetDomainError(err); de.Attribute != "filter" {
		t.Errorf("attribute = %q, want filter", de.Attribute)
	}
}
