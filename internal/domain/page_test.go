package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageWindow(t *testing.T) {
	ids := []int64{10, 20, 30, 40, 50}

	tests := []struct {
		name   string
		page   Page
		total  int64
		window []int64
	}{
		{"middle window", Page{Offset: 2, Limit: 2}, 5, []int64{30, 40}},
		{"from start", Page{Offset: 0, Limit: 3}, 5, []int64{10, 20, 30}},
		{"window past end is clipped", Page{Offset: 3, Limit: 10}, 5, []int64{40, 50}},
		{"offset past end", Page{Offset: 10, Limit: 2}, 5, []int64{}},
		{"offset at end", Page{Offset: 5, Limit: 2}, 5, []int64{}},
		{"zero limit", Page{Offset: 0, Limit: 0}, 5, []int64{}},
		{"whole list", Page{Offset: 0, Limit: 100}, 5, []int64{10, 20, 30, 40, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, window := tt.page.Window(ids)
			assert.Equal(t, tt.total, total)
			assert.Equal(t, tt.window, window)
		})
	}
}

func TestPageWindowEmptyList(t *testing.T) {
	total, window := Page{Offset: 0, Limit: 10}.Window(nil)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, window)
}

func TestPageWindowDoesNotAliasSource(t *testing.T) {
	ids := []int64{1, 2, 3}
	_, window := Page{Offset: 0, Limit: 3}.Window(ids)

	window[0] = 99
	assert.Equal(t, int64(1), ids[0])
}
