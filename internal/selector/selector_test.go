package selector

import (
	"reflect"
	"testing"

	"github.com/robert-malhotra/go-cubeaccess/cubeaccess"
	"github.com/robert-malhotra/go-cubeaccess/internal/dtype"
)

func TestRead(t *testing.T) {
	data := []int32{
		0, 1, 2,
		3, 4, 5,
	}
	arr, err := Read(data, []int{2, 3}, []cubeaccess.Slice{{Start: 1, Stop: 2}, {Start: 0, Stop: 3, Step: 2}})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if arr.DType != dtype.Int32 {
		t.Errorf("expected int32, got %v", arr.DType)
	}
	if !reflect.DeepEqual(arr.Shape, []int{1, 2}) {
		t.Errorf("expected shape [1 2], got %v", arr.Shape)
	}
	if !reflect.DeepEqual(arr.Data, []int32{3, 5}) {
		t.Errorf("unexpected data %v", arr.Data)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		sel  []cubeaccess.Slice
	}{
		{"rank", []cubeaccess.Slice{{Start: 0, Stop: 1}}},
		{"past end", []cubeaccess.Slice{{Start: 0, Stop: 3}, {Start: 0, Stop: 4}}},
		{"negative start", []cubeaccess.Slice{{Start: -1, Stop: 1}, {Start: 0, Stop: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(tt.sel, []int{2, 3}); err == nil {
				t.Error("expected error")
			}
		})
	}

	hs, err := Build([]cubeaccess.Slice{{Start: 2, Stop: 2}, {Start: 0, Stop: 3}}, []int{2, 3})
	if err != nil {
		t.Fatalf("empty selection should be valid: %v", err)
	}
	if hs.NumElements() != 0 {
		t.Errorf("expected 0 elements, got %d", hs.NumElements())
	}
}
