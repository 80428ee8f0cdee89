package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bookfinder/recommender/internal/models"
	"github.com/bookfinder/recommender/internal/recerrors"
)

// FeedbackStore persists feedback entries.
type FeedbackStore interface {
	Append(entry models.FeedbackEntry) error
	List() ([]models.FeedbackEntry, error)
}

// FeedbackService validates and records user feedback on recommendations.
type FeedbackService struct {
	store  FeedbackStore
	logger *slog.Logger
}

// NewFeedbackService creates a FeedbackService. Logger may be nil.
func NewFeedbackService(store FeedbackStore, logger *slog.Logger) *FeedbackService {
	if logger == nil {
		logger = slog.Default()
	}

	return &FeedbackService{store: store, logger: logger}
}

// Create validates and persists one feedback entry.
func (s *FeedbackService) Create(ctx context.Context, req models.CreateFeedbackRequest) (*models.FeedbackEntry, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, recerrors.NewValidationError("query", "query is required")
	}

	if strings.TrimSpace(req.BookID) == "" {
		return nil, recerrors.NewValidationError("book_id", "book_id is required")
	}

	if req.Rating < 1 || req.Rating > 5 {
		return nil, recerrors.NewValidationError("rating", "rating must be between 1 and 5")
	}

	entry := models.FeedbackEntry{
		ID:        uuid.Must(uuid.NewV7()),
		CreatedAt: time.Now().UTC(),
		Query:     strings.TrimSpace(req.Query),
		BookID:    strings.TrimSpace(req.BookID),
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	}

	if err := s.store.Append(entry); err != nil {
		return nil, fmt.Errorf("save feedback: %w", err)
	}

	s.logger.InfoContext(ctx, "feedback recorded", "book_id", entry.BookID, "rating", entry.Rating)

	return &entry, nil
}

// List returns all recorded feedback entries in creation order.
func (s *FeedbackService) List(_ context.Context) ([]models.FeedbackEntry, error) {
	entries, err := s.store.List()
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}

	return entries, nil
}
