package rerank

import (
	"context"
	"testing"

	"github.com/rushteam/tastekit/core"
)

func TestDiversity(t *testing.T) {
	mk := func(id, cat string) *core.Item {
		it := core.NewItem(id)
		it.Category = cat
		return it
	}
	in := []*core.Item{mk("a", "cn"), mk("b", "cn"), mk("c", "jp"), mk("d", ""), mk("e", "cn"), mk("f", "jp")}

	tests := []struct {
		max  int
		want string
	}{
		{0, "abcdef"},
		{1, "acd"},
		{2, "abcdf"},
	}
	for _, tt := range tests {
		out, err := (&Diversity{MaxPerCategory: tt.max}).Process(context.Background(), nil, in)
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		got := ""
		for _, it := range out {
			got += it.ID
		}
		if got != tt.want {
			t.Errorf("max=%d: got %s, want %s", tt.max, got, tt.want)
		}
	}
}
