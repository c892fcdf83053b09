package run

import (
	"context"
	"log/slog"

	"github.com/anatolykoptev/go-twint/internal/config"
)

// pageFunc fetches the page at cursor and returns its items and the next
// cursor.
type pageFunc[T any] func(ctx context.Context, cursor string) ([]T, string, error)

// paginate walks pages, handing items to emit until limit items were kept,
// the cursor runs out or repeats, or a page comes back empty. limit <= 0
// means no limit. emit reports whether the item counted.
func paginate[T any](ctx context.Context, limit int, fetch pageFunc[T], emit func(T) (bool, error)) (int, error) {
	n := 0
	cursor := ""
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		items, next, err := fetch(ctx, cursor)
		if err != nil {
			return n, err
		}
		slog.Debug("page", slog.Int("page", page), slog.Int("items", len(items)), slog.Bool("more", next != ""))

		for _, it := range items {
			kept, err := emit(it)
			if err != nil {
				return n, err
			}
			if kept {
				n++
			}
			if limit > 0 && n >= limit {
				return n, nil
			}
		}
		if len(items) == 0 || next == "" || next == cursor {
			return n, nil
		}
		cursor = next
	}
}

// remaining is the item budget left once collected items were written.
// Zero means unlimited.
func remaining(cfg config.Config, collected int) int {
	limit, ok := cfg.Limit.Get()
	if !ok || limit <= 0 {
		return 0
	}
	return limit - collected
}

func limitReached(cfg config.Config, collected int) bool {
	limit, ok := cfg.Limit.Get()
	return ok && limit > 0 && collected >= limit
}
