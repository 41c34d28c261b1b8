package util

import "testing"

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name       string
		totalItems int64
		pageSize   uint
		want       int
	}{
		{"Exact fit", 40, 20, 2},
		{"Partial last page", 41, 20, 3},
		{"Less than one page", 5, 20, 1},
		{"No items", 0, 20, 1},
		{"Zero page size falls back to default", 30, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateTotalPage(tt.totalItems, tt.pageSize); got != tt.want {
				t.Errorf("CalculateTotalPage(%d, %d) = %d, want %d", tt.totalItems, tt.pageSize, got, tt.want)
			}
		})
	}
}
