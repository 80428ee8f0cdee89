package models

// Confidence is a coarse ordinal label for how strongly a recommendation is
// supported by similarity and contribution evidence.
type Confidence string

const (
	ConfidenceLow      Confidence = "LOW"
	ConfidenceMedium   Confidence = "MEDIUM"
	ConfidenceHigh     Confidence = "HIGH"
	ConfidenceVeryHigh Confidence = "VERY HIGH"
)

// ContributionScores holds the normalized per-channel evidence scores for one
// recommendation. Exactly these three channels exist; a channel with no
// evidence scores 0, it is never omitted.
type ContributionScores struct {
	Genres              float64 `json:"genres"`
	DescriptionKeywords float64 `json:"description_keywords"`
	Authors             float64 `json:"authors"`
}

// Sum returns the total evidence across all channels.
func (s ContributionScores) Sum() float64 {
	return s.Genres + s.DescriptionKeywords + s.Authors
}

// ExplanationDetails reports each contribution score as an integer percentage.
type ExplanationDetails struct {
	GenresContribution              int `json:"genres_contribution"`
	DescriptionKeywordsContribution int `json:"description_keywords_contribution"`
	AuthorsContribution             int `json:"authors_contribution"`
}

// Explanation is the per-recommendation explanation object. Request-scoped
// and transient; never persisted by the core.
type Explanation struct {
	MatchScore       int                `json:"match_score"`
	Confidence       Confidence         `json:"confidence"`
	Summary          string             `json:"summary"`
	MatchingFeatures []string           `json:"matching_features"`
	Details          ExplanationDetails `json:"details"`
}

// Recommendation pairs a catalog book with its similarity score and explanation.
type Recommendation struct {
	Book        Book        `json:"book"`
	Score       float64     `json:"score"`
	Explanation Explanation `json:"explanation"`
}

// RecommendRequest is the body for POST /v1/recommendations.
type RecommendRequest struct {
	Query string `json:"query"`
	TopN  int    `json:"top_n"`
}

// RecommendResponse is the response for POST /v1/recommendations.
type RecommendResponse struct {
	Query string           `json:"query"`
	Data  []Recommendation `json:"data"`
}
