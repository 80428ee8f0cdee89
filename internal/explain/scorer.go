// Package explain produces per-recommendation explanations: rule-based
// contribution scores per evidence channel, a natural-language summary with a
// generative tier and a deterministic fallback, and a confidence tier.
package explain

import (
	"strings"

	"github.com/bookfinder/recommender/internal/models"
)

// Channel weights. The three channels are independent and sum to at most 1.
const (
	genreWeight   = 0.5
	keywordWeight = 0.3
	authorWeight  = 0.2

	// keywordCap is the overlap count at which the keyword channel saturates.
	keywordCap = 5
)

// Score computes the normalized contribution score per evidence channel for
// one (query, book) pair. All channels are order-insensitive and
// case-insensitive; a missing or empty field on either side scores 0. Never
// returns a score outside [0, 1] and never fails.
func Score(query string, book models.Book) models.ContributionScores {
	var scores models.ContributionScores

	queryGenres := tokenSet(query, "genre", "genres")
	bookGenres := wordSet(book.Genres)

	if len(queryGenres) > 0 && len(bookGenres) > 0 {
		if overlap := intersectionSize(queryGenres, bookGenres); overlap > 0 {
			scores.Genres = float64(overlap) / float64(max(len(queryGenres), len(bookGenres))) * genreWeight
		}
	}

	queryWords := tokenSet(query)
	descriptionWords := tokenSet(book.Description)

	if len(queryWords) > 0 && len(descriptionWords) > 0 {
		if overlap := intersectionSize(queryWords, descriptionWords); overlap > 0 {
			ratio := float64(overlap) / keywordCap
			if ratio > 1 {
				ratio = 1
			}

			scores.DescriptionKeywords = ratio * keywordWeight
		}
	}

	queryAuthors := tokenSet(query, "by")
	bookAuthors := listSet(book.Authors)

	if len(queryAuthors) > 0 && len(bookAuthors) > 0 {
		if overlap := intersectionSize(queryAuthors, bookAuthors); overlap > 0 {
			scores.Authors = float64(overlap) / float64(max(len(queryAuthors), len(bookAuthors))) * authorWeight
		}
	}

	return scores
}

// tokenSet splits s into lowercase whitespace-separated words, dropping any
// word listed in strip.
func tokenSet(s string, strip ...string) map[string]struct{} {
	out := make(map[string]struct{})

	for _, word := range strings.Fields(strings.ToLower(s)) {
		stripped := false

		for _, skip := range strip {
			if word == skip {
				stripped = true

				break
			}
		}

		if !stripped {
			out[word] = struct{}{}
		}
	}

	return out
}

// wordSet splits every list element into lowercase words and unions them.
// A multi-word genre like "Science Fiction" contributes each word, so a
// query mentioning "fiction" still overlaps it.
func wordSet(list models.StringList) map[string]struct{} {
	out := make(map[string]struct{})

	for _, item := range list {
		for _, word := range strings.Fields(strings.ToLower(item)) {
			out[word] = struct{}{}
		}
	}

	return out
}

// listSet lowercases and trims each list element into a set. Each element is
// one token: multi-word authors match as whole values.
func listSet(list models.StringList) map[string]struct{} {
	out := make(map[string]struct{}, len(list))

	for _, item := range list {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			out[item] = struct{}{}
		}
	}

	return out
}

func intersectionSize(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}

	count := 0

	for item := range a {
		if _, ok := b[item]; ok {
			count++
		}
	}

	return count
}
