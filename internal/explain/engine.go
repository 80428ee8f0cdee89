package explain

import (
	"context"
	"log/slog"
	"math"

	"github.com/bookfinder/recommender/internal/models"
)

// Similarity thresholds for the base confidence tier.
const (
	mediumSimilarity = 0.5
	highSimilarity   = 0.7
)

// Contribution-sum thresholds for confidence escalation. Strong multi-signal
// evidence compensates for a mediocre raw similarity score.
const (
	veryHighContributionSum = 0.6
	mediumContributionSum   = 0.3
)

// Engine composes contribution scoring and summary generation into the final
// explanation object for one recommendation.
type Engine struct {
	summaries *SummaryGenerator
	logger    *slog.Logger
}

// NewEngine creates an explanation Engine. Logger may be nil.
func NewEngine(summaries *SummaryGenerator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{summaries: summaries, logger: logger}
}

// Explain builds the explanation for recommending book against query with the
// given similarity score in [0, 1]. Always succeeds: every failure path below
// the generative tier degrades to deterministic output.
func (e *Engine) Explain(ctx context.Context, query string, book models.Book, similarity float64) models.Explanation {
	e.logger.Debug("generating explanation", "book_id", book.ID, "title", book.Title)

	scores := Score(query, book)
	summary, features := e.summaries.Summarize(ctx, query, book, scores)

	return models.Explanation{
		MatchScore:       roundPercent(similarity),
		Confidence:       Confidence(similarity, scores),
		Summary:          summary,
		MatchingFeatures: features,
		Details: models.ExplanationDetails{
			GenresContribution:              roundPercent(scores.Genres),
			DescriptionKeywordsContribution: roundPercent(scores.DescriptionKeywords),
			AuthorsContribution:             roundPercent(scores.Authors),
		},
	}
}

// Confidence derives the confidence tier: a base tier from similarity, then a
// two-stage override from the contribution sum. A sum above 0.6 forces VERY
// HIGH regardless of similarity; a sum above 0.3 lifts LOW to MEDIUM.
func Confidence(similarity float64, scores models.ContributionScores) models.Confidence {
	confidence := models.ConfidenceLow
	if similarity > mediumSimilarity {
		confidence = models.ConfidenceMedium
	}

	if similarity > highSimilarity {
		confidence = models.ConfidenceHigh
	}

	sum := scores.Sum()

	switch {
	case sum > veryHighContributionSum:
		confidence = models.ConfidenceVeryHigh
	case sum > mediumContributionSum && confidence == models.ConfidenceLow:
		confidence = models.ConfidenceMedium
	}

	return confidence
}

func roundPercent(v float64) int {
	return int(math.Round(v * 100))
}
