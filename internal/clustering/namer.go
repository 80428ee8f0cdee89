package clustering

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bookfinder/recommender/internal/models"
)

// NameClusters derives a display label per cluster id from the most frequent
// genre among members. Every id in [0, max(assignments)] gets an entry, even
// when no member was assigned to it: empty clusters are labeled explicitly
// rather than skipped, and clusters whose members carry no genres get a
// miscellaneous placeholder. Missing or malformed genre fields contribute
// zero tokens and never fail the run.
//
// Frequency ties break in favor of the genre first encountered while
// aggregating members in assignment order, so labels are stable for a fixed
// (books, assignments) pair.
func NameClusters(books []models.Book, assignments []int) map[int]string {
	maxID := -1
	for _, id := range assignments {
		if id > maxID {
			maxID = id
		}
	}

	labels := make(map[int]string, maxID+1)

	for clusterID := 0; clusterID <= maxID; clusterID++ {
		counts := make(map[string]int)
		order := make([]string, 0)
		hasMembers := false

		for i, id := range assignments {
			if id != clusterID || i >= len(books) {
				continue
			}

			hasMembers = true

			for _, genre := range books[i].Genres {
				token := strings.ToLower(strings.TrimSpace(genre))
				if token == "" {
					continue
				}

				if _, seen := counts[token]; !seen {
					order = append(order, token)
				}

				counts[token]++
			}
		}

		switch {
		case !hasMembers:
			labels[clusterID] = fmt.Sprintf("Empty Cluster %d", clusterID)
		case len(order) == 0:
			labels[clusterID] = fmt.Sprintf("Miscellaneous Cluster %d", clusterID)
		default:
			top := order[0]
			for _, token := range order {
				if counts[token] > counts[top] {
					top = token
				}
			}

			labels[clusterID] = titleCase(top) + " Collection"
		}
	}

	return labels
}

// titleCase capitalizes the first letter of each whitespace-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}

	return strings.Join(words, " ")
}
