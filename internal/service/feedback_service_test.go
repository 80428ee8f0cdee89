package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookfinder/recommender/internal/models"
	"github.com/bookfinder/recommender/internal/recerrors"
)

type mockFeedbackStore struct {
	entries   []models.FeedbackEntry
	appendErr error
	listErr   error
}

func (m *mockFeedbackStore) Append(entry models.FeedbackEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}

	m.entries = append(m.entries, entry)

	return nil
}

func (m *mockFeedbackStore) List() ([]models.FeedbackEntry, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}

	return m.entries, nil
}

func TestFeedbackCreate(t *testing.T) {
	t.Run("valid request is persisted", func(t *testing.T) {
		store := &mockFeedbackStore{}
		svc := NewFeedbackService(store, nil)

		entry, err := svc.Create(context.Background(), models.CreateFeedbackRequest{
			Query:   "  time travel ",
			BookID:  " b1 ",
			Rating:  4,
			Comment: " spot on ",
		})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, entry.ID)
		assert.False(t, entry.CreatedAt.IsZero())
		assert.Equal(t, "time travel", entry.Query)
		assert.Equal(t, "b1", entry.BookID)
		assert.Equal(t, 4, entry.Rating)
		assert.Equal(t, "spot on", entry.Comment)

		require.Len(t, store.entries, 1)
		assert.Equal(t, entry.ID, store.entries[0].ID)
	})

	t.Run("validation failures", func(t *testing.T) {
		svc := NewFeedbackService(&mockFeedbackStore{}, nil)

		tests := []struct {
			name string
			req  models.CreateFeedbackRequest
		}{
			{name: "missing query", req: models.CreateFeedbackRequest{BookID: "b1", Rating: 3}},
			{name: "blank query", req: models.CreateFeedbackRequest{Query: "  ", BookID: "b1", Rating: 3}},
			{name: "missing book id", req: models.CreateFeedbackRequest{Query: "q", Rating: 3}},
			{name: "rating too low", req: models.CreateFeedbackRequest{Query: "q", BookID: "b1", Rating: 0}},
			{name: "rating too high", req: models.CreateFeedbackRequest{Query: "q", BookID: "b1", Rating: 6}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.Create(context.Background(), tt.req)
				assert.True(t, errors.Is(err, recerrors.ErrValidation))
			})
		}
	})

	t.Run("store error propagates", func(t *testing.T) {
		store := &mockFeedbackStore{appendErr: errors.New("disk full")}
		svc := NewFeedbackService(store, nil)

		_, err := svc.Create(context.Background(), models.CreateFeedbackRequest{
			Query: "q", BookID: "b1", Rating: 3,
		})
		assert.Error(t, err)
	})
}

func TestFeedbackList(t *testing.T) {
	t.Run("returns entries in store order", func(t *testing.T) {
		store := &mockFeedbackStore{entries: []models.FeedbackEntry{
			{BookID: "b1"}, {BookID: "b2"},
		}}
		svc := NewFeedbackService(store, nil)

		entries, err := svc.List(context.Background())
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "b1", entries[0].BookID)
	})

	t.Run("store error propagates", func(t *testing.T) {
		svc := NewFeedbackService(&mockFeedbackStore{listErr: errors.New("io")}, nil)

		_, err := svc.List(context.Background())
		assert.Error(t, err)
	})
}
