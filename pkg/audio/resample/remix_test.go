// ABOUTME: Tests for channel remixing
// ABOUTME: Covers mono/stereo up and down mixes
package resample

import (
	"reflect"
	"testing"
)

func TestRemix(t *testing.T) {
	tests := []struct {
		name     string
		input    []int32
		from, to int
		expected []int32
	}{
		{"same layout", []int32{1, 2, 3}, 1, 1, []int32{1, 2, 3}},
		{"mono to stereo", []int32{1, 2}, 1, 2, []int32{1, 1, 2, 2}},
		{"stereo to mono", []int32{10, 20, -4, 4}, 2, 1, []int32{15, 0}},
		{"partial frame dropped", []int32{10, 20, 30}, 2, 1, []int32{15}},
		{"stereo to quad", []int32{10, 20}, 2, 4, []int32{10, 20, 15, 15}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Remix(tt.input, tt.from, tt.to)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
