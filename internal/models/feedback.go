package models

import (
	"time"

	"github.com/google/uuid"
)

// FeedbackEntry is a persisted record of user feedback on a recommendation.
type FeedbackEntry struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Query     string    `json:"query"`
	BookID    string    `json:"book_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
}

// CreateFeedbackRequest is the body for POST /v1/feedback.
type CreateFeedbackRequest struct {
	Query   string `json:"query"`
	BookID  string `json:"book_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// ListFeedbackResponse is the response for listing feedback entries.
type ListFeedbackResponse struct {
	Data  []FeedbackEntry `json:"data"`
	Total int             `json:"total"`
}
