package localDB

import (
	"math"
	"reflect"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"Identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"Scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"Orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"Opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"Zero_Vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"Length_Mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"Empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosine = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArgsortDesc_TiesKeepInsertionOrder(t *testing.T) {
	got := argsortDesc([]float64{0.2, 0.9, 0.5, 0.9, 0.2})
	want := []int{1, 3, 2, 0, 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("argsortDesc = %v, want %v", got, want)
	}
}
