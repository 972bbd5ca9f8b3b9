package catalog

import (
	"sort"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"tvshelf/internal/textutil"
)

// selection is the outcome of choosing among search hits.
type selection struct {
	match      ShowSummary
	matched    bool
	candidates []ShowSummary
}

// selectShow picks a hit for query. An exact normalized name match wins,
// otherwise a lone hit wins; several hits without an exact match are
// ambiguous and returned ranked by similarity to the query.
func selectShow(query string, results []ShowSummary) selection {
	for _, r := range results {
		if textutil.QueryString(r.Name) == query {
			return selection{match: r, matched: true}
		}
	}
	if len(results) == 1 {
		return selection{match: results[0], matched: true}
	}
	return selection{candidates: rankCandidates(query, results)}
}

func rankCandidates(query string, results []ShowSummary) []ShowSummary {
	metric := &metrics.JaroWinkler{CaseSensitive: false}
	type scored struct {
		summary ShowSummary
		score   float64
	}
	ranked := make([]scored, 0, len(results))
	for _, r := range results {
		ranked = append(ranked, scored{summary: r, score: strutil.Similarity(query, textutil.QueryString(r.Name), metric)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	out := make([]ShowSummary, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.summary)
	}
	return out
}
