package feature

import (
	"reflect"
	"testing"

	"github.com/rushteam/tastekit/core"
)

func TestNewAttributeSchema(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		wantErr bool
	}{
		{name: "valid", names: []string{"taste", "price"}},
		{name: "trims names", names: []string{" taste ", "price"}},
		{name: "empty", names: nil, wantErr: true},
		{name: "blank name", names: []string{"taste", "  "}, wantErr: true},
		{name: "duplicate", names: []string{"taste", "price", "taste"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewAttributeSchema("t", tt.names...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewAttributeSchema() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && s.Len() != len(tt.names) {
				t.Errorf("Len() = %d, want %d", s.Len(), len(tt.names))
			}
		})
	}
}

func TestBuiltinSchemas(t *testing.T) {
	if SchemaV1.Len() != 5 || SchemaV2.Len() != 9 {
		t.Fatalf("builtin schema sizes = %d/%d", SchemaV1.Len(), SchemaV2.Len())
	}
	// v2 是 v1 的扩展，前 5 个属性顺序保持一致
	if !reflect.DeepEqual(SchemaV2.Names()[:5], SchemaV1.Names()) {
		t.Errorf("v2 prefix = %v, want %v", SchemaV2.Names()[:5], SchemaV1.Names())
	}
}

func TestVectorize(t *testing.T) {
	schema := MustAttributeSchema("t", "taste", "price", "service")

	tests := []struct {
		name        string
		attrs       map[string]float64
		want        []float64
		wantMissing string
	}{
		{
			name:  "schema order regardless of map order",
			attrs: map[string]float64{"service": 3, "taste": 1, "price": 2},
			want:  []float64{1, 2, 3},
		},
		{
			name:  "extra attributes ignored",
			attrs: map[string]float64{"taste": 1, "price": 2, "service": 3, "clean": 9},
			want:  []float64{1, 2, 3},
		},
		{
			name:  "values passed through unscaled",
			attrs: map[string]float64{"taste": 375, "price": 147, "service": 100},
			want:  []float64{375, 147, 100},
		},
		{
			name:        "missing attribute",
			attrs:       map[string]float64{"taste": 1, "service": 3},
			wantMissing: "price",
		},
		{
			name:        "first missing in schema order",
			attrs:       map[string]float64{},
			wantMissing: "taste",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Vectorize(tt.attrs, schema)
			if tt.wantMissing != "" {
				if !core.IsMissingAttribute(err) {
					t.Fatalf("Vectorize() error = %v, want MISSING_ATTRIBUTE", err)
				}
				if attr := core.GetDomainError(err).Attribute; attr != tt.wantMissing {
					t.Errorf("missing attribute = %q, want %q", attr, tt.wantMissing)
				}
				return
			}
			if err != nil {
				t.Fatalf("Vectorize() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Vectorize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVectorize_MissingServiceAgainstV2(t *testing.T) {
	prefs := map[string]float64{
		"taste": 1, "price": 1, "fresh": 1, "interior": 1,
		"quantity": 1, "group": 1, "special": 1, "clean": 1,
	}
	_, err := Vectorize(prefs, SchemaV2)
	if !core.IsMissingAttribute(err) {
		t.Fatalf("error = %v, want MISSING_ATTRIBUTE", err)
	}
	if got := core.GetDomainError(err).Attribute; got != "service" {
		t.Errorf("attribute = %q, want service", got)
	}
}

func TestMissingAttributes(t *testing.T) {
	got := MissingAttributes(map[string]float64{"price": 1}, SchemaV1)
	want := []string{"taste", "service", "fresh", "interior"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MissingAttributes() = %v, want %v", got, want)
	}
}

func TestRatioFeatures(t *testing.T) {
	schema := MustAttributeSchema("t", "taste", "price")
	tests := []struct {
		name  string
		attrs map[string]float64
		want  []float64
	}{
		{name: "uses total column", attrs: map[string]float64{"taste": 2, "price": 3, "total": 10}, want: []float64{0.2, 0.3}},
		{name: "falls back to sum", attrs: map[string]float64{"taste": 1, "price": 3}, want: []float64{0.25, 0.75}},
		{name: "zero total", attrs: map[string]float64{"taste": 0, "price": 0}, want: []float64{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RatioFeatures(tt.attrs, schema); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RatioFeatures() = %v, want %v", got, tt.want)
			}
		})
	}
}
