package collection

import (
	"context"
	"iter"
	"log/slog"
	"net/url"

	"wunderkammer/internal/domain"
	"wunderkammer/internal/metrics"
	"wunderkammer/internal/repository"
)

// unitCursor is an open summary cursor and the unit it belongs to
type unitCursor struct {
	unit   string
	cursor repository.SummaryCursor
}

// Iterator walks the summaries of every unit database, one unit after
// another in registry order. It is forward-only: once Next reports false
// it keeps doing so. Not safe for concurrent use.
type Iterator struct {
	cursors []unitCursor
	current int
	logger  *slog.Logger
}

// Iterate opens one summary cursor per unit. A unit whose cursor cannot
// be opened is logged and left out of the enumeration.
func (c *Collection) Iterate(ctx context.Context) *Iterator {
	it := &Iterator{logger: c.logger}

	for _, unit := range c.registry.Units() {
		store, _ := c.registry.Get(unit)

		metrics.QueriesTotal.WithLabelValues(unit, "summaries").Inc()
		cursor, err := store.Summaries(ctx)
		if err != nil {
			metrics.IteratorSkippedTotal.WithLabelValues(unit).Inc()
			c.logger.Warn("iterator_unit_skipped", "unit", unit, "err", err)
			continue
		}
		it.cursors = append(it.cursors, unitCursor{unit: unit, cursor: cursor})
	}

	return it
}

// Next returns the next summary. ok is false once every cursor is drained.
func (it *Iterator) Next() (domain.Summary, bool) {
	for it.current < len(it.cursors) {
		uc := it.cursors[it.current]

		for uc.cursor.Next() {
			s, err := uc.cursor.Summary()
			if err != nil {
				it.logger.Warn("iterator_row_skipped", "unit", uc.unit, "err", err)
				continue
			}
			if _, err := url.Parse(s.URL); err != nil {
				it.logger.Warn("iterator_row_skipped", "unit", uc.unit, "url", s.URL, "err", err)
				continue
			}
			return s, true
		}

		if err := uc.cursor.Err(); err != nil {
			it.logger.Warn("iterator_cursor_failed", "unit", uc.unit, "err", err)
		}
		uc.cursor.Close()
		it.current++
	}

	return domain.Summary{}, false
}

// All adapts the iterator for range loops. Breaking out early leaves the
// remaining rows for later Next calls; call Close to release them.
func (it *Iterator) All() iter.Seq[domain.Summary] {
	return func(yield func(domain.Summary) bool) {
		for {
			s, ok := it.Next()
			if !ok || !yield(s) {
				return
			}
		}
	}
}

// Close releases every cursor not yet drained
func (it *Iterator) Close() error {
	var first error
	for ; it.current < len(it.cursors); it.current++ {
		if err := it.cursors[it.current].cursor.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
