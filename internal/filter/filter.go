package filter

import (
	"slices"

	"github.com/orgball2608/fb-repost-bot/internal/domain"
	"github.com/samber/lo"
)

// Filter decides whether a target page relays posts from a source page.
type Filter struct {
	allowed map[int64]struct{}
}

func New(allowedSources []int64) *Filter {
	return &Filter{
		allowed: lo.SliceToMap(allowedSources, func(id int64) (int64, struct{}) {
			return id, struct{}{}
		}),
	}
}

// IsRelevant reports whether rec came from one of the allowed source pages.
func (f *Filter) IsRelevant(rec domain.SourceRecord) bool {
	_, ok := f.allowed[rec.SourcePageID]
	return ok
}

// Sources returns the allowed source page ids in ascending order.
func (f *Filter) Sources() []int64 {
	ids := lo.Keys(f.allowed)
	slices.Sort(ids)
	return ids
}
