package explain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bookfinder/recommender/internal/models"
	"github.com/bookfinder/recommender/internal/observability"
)

// matchThreshold is the minimum channel score for a channel to contribute a
// matching-feature clause to the deterministic summary.
const matchThreshold = 0.1

// maxFeatureKeywords caps how many common description keywords one clause names.
const maxFeatureKeywords = 3

const unknownAuthor = "Unknown Author"

// Summary tier names for metrics.
const (
	tierGenerative    = "generative"
	tierDeterministic = "deterministic"
)

// Generative is the optional language-model tier. Implementations issue one
// bounded completion call; any failure is treated as "tier unavailable".
type Generative interface {
	GenerateSummary(ctx context.Context, query string, book models.Book) (string, error)
}

// SummaryGenerator produces explanation prose using a two-tier strategy:
// a best-effort generative call first, then a deterministic template that is
// always available. The deterministic tier is a pure function of its inputs
// and is the correctness backstop; the generative tier never propagates
// errors to the caller.
type SummaryGenerator struct {
	generative Generative // nil when no provider is configured
	metrics    observability.ExplainMetrics
	logger     *slog.Logger
}

// NewSummaryGenerator creates a SummaryGenerator. Generative may be nil
// (deterministic tier only); metrics may be nil; logger may be nil.
func NewSummaryGenerator(generative Generative, metrics observability.ExplainMetrics, logger *slog.Logger) *SummaryGenerator {
	if logger == nil {
		logger = slog.Default()
	}

	return &SummaryGenerator{generative: generative, metrics: metrics, logger: logger}
}

// Summarize returns the explanation prose and the matching-feature clauses.
// The clauses always come from the deterministic builder, regardless of which
// tier supplied the prose, so UIs can render feature chips either way.
func (g *SummaryGenerator) Summarize(
	ctx context.Context, query string, book models.Book, scores models.ContributionScores,
) (string, []string) {
	summary, features := DeterministicSummary(query, book, scores)

	if g.generative != nil {
		text, err := g.generative.GenerateSummary(ctx, query, book)
		if err == nil && strings.TrimSpace(text) != "" {
			if g.metrics != nil {
				g.metrics.RecordSummaryTier(ctx, tierGenerative)
			}

			return strings.TrimSpace(text), features
		}

		if err != nil {
			g.logger.Warn("generative summary unavailable, using deterministic fallback",
				"error", err, "book_id", book.ID)
		}
	}

	if g.metrics != nil {
		g.metrics.RecordSummaryTier(ctx, tierDeterministic)
	}

	return summary, features
}

// DeterministicSummary builds the templated summary sentence and the list of
// matching-feature clauses from whichever channels exceed the threshold, in
// the fixed order genres, description keywords, authors. It is a pure
// function: identical inputs always produce identical output.
func DeterministicSummary(query string, book models.Book, scores models.ContributionScores) (string, []string) {
	summary := fmt.Sprintf("Recommended because it's a good match for your interest in '%s'. ", query)

	features := make([]string, 0, 3)

	if scores.Genres > matchThreshold && len(book.Genres) > 0 {
		features = append(features, "shares genres like "+strings.Join(book.Genres, ", "))
	}

	if scores.DescriptionKeywords > matchThreshold && book.Description != "" {
		if common := commonKeywords(query, book.Description); len(common) > 0 {
			features = append(features,
				fmt.Sprintf("has keywords in description like '%s'", strings.Join(common, ", ")))
		}
	}

	if scores.Authors > matchThreshold && len(book.Authors) > 0 && !isUnknownAuthor(book.Authors) {
		features = append(features, "is by author(s) "+strings.Join(book.Authors, ", "))
	}

	if len(features) > 0 {
		summary += "Specifically, it " + strings.Join(features, ", and ") + "."
	} else {
		summary += "Its content aligns well with your query."
	}

	return summary, features
}

// commonKeywords returns up to maxFeatureKeywords words shared by the query
// and the description, in query word order so the clause is deterministic.
func commonKeywords(query, description string) []string {
	descriptionWords := tokenSet(description)
	seen := make(map[string]struct{})
	common := make([]string, 0, maxFeatureKeywords)

	for _, word := range strings.Fields(strings.ToLower(query)) {
		if _, ok := descriptionWords[word]; !ok {
			continue
		}

		if _, dup := seen[word]; dup {
			continue
		}

		seen[word] = struct{}{}

		common = append(common, word)
		if len(common) == maxFeatureKeywords {
			break
		}
	}

	return common
}

func isUnknownAuthor(authors models.StringList) bool {
	return len(authors) == 1 && authors[0] == unknownAuthor
}
