// Package merge combines a page from the config store with legacy index hits.
package merge

import (
	"context"
	"sort"
)

// Page is one page of results. Total counts matches across all pages.
type Page[T any] struct {
	Total int
	Items []T
}

// SecondaryFunc fetches up to size items from the legacy index.
type SecondaryFunc[T any] func(ctx context.Context, size int) (Page[T], error)

// Merger fills the free slots of a primary page with secondary results.
type Merger[T any] struct {
	// Resort orders the merged items with Less. Without it secondary items
	// come first, followed by the primary ones.
	Resort bool
	Less   func(a, b T) bool
	// OnSecondaryError is told about a failed secondary lookup. The primary page
	// is returned unchanged in that case.
	OnSecondaryError func(err error)
}

// Merge returns primary extended with secondary results, at most size items.
// The secondary lookup only runs when primary leaves free slots out of size.
func (m Merger[T]) Merge(ctx context.Context, primary Page[T], size int, secondary SecondaryFunc[T]) Page[T] {
	remaining := size - len(primary.Items)
	if remaining <= 0 || secondary == nil {
		return primary
	}

	sec, err := secondary(ctx, remaining)
	if err != nil {
		if m.OnSecondaryError != nil {
			m.OnSecondaryError(err)
		}
		return primary
	}

	items := make([]T, 0, len(sec.Items)+len(primary.Items))
	items = append(items, sec.Items...)
	items = append(items, primary.Items...)
	if m.Resort && m.Less != nil {
		sort.SliceStable(items, func(i, j int) bool { return m.Less(items[i], items[j]) })
	}
	if len(items) > size {
		items = items[:size]
	}
	return Page[T]{Total: primary.Total + sec.Total, Items: items}
}
