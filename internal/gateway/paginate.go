package gateway

import "context"

// PageSize is the number of records requested per page.
const PageSize = 100

// pageFunc returns the items of the given 1-based page. An empty result marks
// the end of the collection.
type pageFunc func(ctx context.Context, page int) ([]string, error)

// collect walks pages until one comes back empty or, when limit > 0, until
// limit items have been gathered. The result never exceeds limit items and no
// page is requested after the limit has been reached.
func collect(ctx context.Context, limit int, next pageFunc) ([]string, error) {
	var items []string
	for page := 1; ; page++ {
		batch, err := next(ctx, page)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			return items, nil
		}
		items = append(items, batch...)
		if limit > 0 && len(items) >= limit {
			return items[:limit], nil
		}
	}
}
