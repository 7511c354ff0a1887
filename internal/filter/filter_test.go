package filter

import (
	"testing"

	"github.com/orgball2608/fb-repost-bot/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestIsRelevant(t *testing.T) {
	f := New([]int64{111, 333})

	tests := []struct {
		name   string
		source int64
		want   bool
	}{
		{"first allowed source", 111, true},
		{"second allowed source", 333, true},
		{"unknown source", 999, false},
		{"unset source", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := domain.SourceRecord{Post: domain.Post{ID: "p"}, SourcePageID: tt.source}
			assert.Equal(t, tt.want, f.IsRelevant(rec))
		})
	}
}

func TestEmptyFilterRejectsEverything(t *testing.T) {
	f := New(nil)
	assert.False(t, f.IsRelevant(domain.SourceRecord{SourcePageID: 111}))
	assert.Empty(t, f.Sources())
}

func TestSourcesSorted(t *testing.T) {
	assert.Equal(t, []int64{1, 5, 9}, New([]int64{9, 1, 5, 1}).Sources())
}
