package workflow

import (
	"log/slog"

	"github.com/Aman-CERP/wfkit/internal/settings"
	"github.com/Aman-CERP/wfkit/pkg/filter"
)

// FoldDiacritics reports whether keys are folded to ASCII. The user's
// workflow:foldingon/foldingoff choice wins over wfkit.yaml.
func (w *Workflow) FoldDiacritics() bool {
	fold := w.cfg.Filter.FoldDiacriticsEnabled()
	s, err := w.Settings()
	if err != nil {
		slog.Warn("cannot read settings", slog.String("error", err.Error()))
		return fold
	}
	return s.GetBool(settings.KeyDiacriticFolding, fold)
}

// FilterOptions returns the configured filter options: match rules,
// diacritic folding, score and result limits, and the workflow's
// pattern cache.
func (w *Workflow) FilterOptions() []filter.Option {
	opts, err := w.cfg.Filter.Options(w.FoldDiacritics())
	if err != nil {
		// Load validated match_on, so only a hand-built Config gets here
		slog.Warn("invalid filter configuration", slog.String("error", err.Error()))
		opts = []filter.Option{filter.WithFoldDiacritics(w.FoldDiacritics())}
	}
	return append(opts, filter.WithMatcher(w.matcher))
}

// Filter ranks items against query with the workflow's filter settings.
// opts are applied after the configured ones and override them.
func Filter[T any](w *Workflow, query string, items []T, key filter.KeyFunc[T], opts ...filter.Option) []T {
	return filter.Filter(query, items, key, append(w.FilterOptions(), opts...)...)
}

// FilterScored is Filter returning scores and matched rules.
func FilterScored[T any](w *Workflow, query string, items []T, key filter.KeyFunc[T], opts ...filter.Option) []filter.Result[T] {
	return filter.FilterScored(query, items, key, append(w.FilterOptions(), opts...)...)
}
