package rerank

import (
	"context"
	"testing"

	"github.com/rushteam/tastekit/core"
)

func TestTopNNode(t *testing.T) {
	mk := func(n int) []*core.Item {
		out := make([]*core.Item, n)
		for i := range out {
			out[i] = core.NewItem(string(rune('a' + i)))
		}
		return out
	}
	tests := []struct {
		name  string
		n     int
		input int
		want  int
	}{
		{"no limit", 0, 5, 5},
		{"negative means no limit", -1, 5, 5},
		{"truncate", 2, 5, 2},
		{"limit above size", 10, 3, 3},
		{"empty", 3, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := mk(tt.input)
			out, err := (&TopNNode{N: tt.n}).Process(context.Background(), nil, in)
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if len(out) != tt.want {
				t.Fatalf("len = %d, want %d", len(out), tt.want)
			}
			for i := range out {
				if out[i] != in[i] {
					t.Fatalf("order changed at %d", i)
				}
			}
		})
	}
}
