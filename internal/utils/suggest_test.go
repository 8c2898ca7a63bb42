package utils

import (
	"reflect"
	"testing"
)

func TestClosestMatches(t *testing.T) {
	candidates := []string{"preserve", "nothrow", "variadic", "receivers", "traced"}

	tests := []struct {
		name  string
		word  string
		limit int
		want  []string
	}{
		{"subsequence", "trcd", 3, []string{"traced"}},
		{"transposition", "tarced", 3, []string{"traced"}},
		{"exact excluded", "traced", 3, nil},
		{"nothing close", "zzzzzz", 3, nil},
		{"zero limit", "trcd", 0, nil},
		{"empty word", "", 3, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClosestMatches(tt.word, candidates, tt.limit)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ClosestMatches(%q) = %v, want %v", tt.word, got, tt.want)
			}
		})
	}
}
