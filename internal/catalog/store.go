// Package catalog provides read-only access to the processed catalog and its
// precomputed embeddings. Both artifacts are produced by the external
// ingestion/embedding pipeline; this package only loads and validates them.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/bookfinder/recommender/internal/models"
	"github.com/bookfinder/recommender/internal/recerrors"
)

const (
	catalogFile    = "catalog.json"
	embeddingsFile = "embeddings.json"
)

// Store loads catalog and embedding artifacts from a data directory.
type Store struct {
	dataDir string
	logger  *slog.Logger
}

// NewStore creates a Store reading from dataDir. Logger may be nil.
func NewStore(dataDir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{dataDir: dataDir, logger: logger}
}

// Data is one aligned snapshot of the catalog: Embeddings[i] belongs to Books[i].
type Data struct {
	Books      []models.Book
	Embeddings [][]float32
}

// Load reads both artifacts and validates their alignment. A missing artifact
// is reported as recerrors.ErrDataNotReady so the API layer can answer with a
// clear "not ready" response instead of a generic failure.
func (s *Store) Load(ctx context.Context) (*Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	books, err := s.loadBooks()
	if err != nil {
		return nil, err
	}

	embeddings, err := s.loadEmbeddings()
	if err != nil {
		return nil, err
	}

	if len(books) != len(embeddings) {
		return nil, recerrors.NewDataNotReadyError(fmt.Sprintf(
			"catalog and embeddings misaligned: %d books, %d embeddings", len(books), len(embeddings)))
	}

	s.logger.Info("catalog loaded", "books", len(books))

	return &Data{Books: books, Embeddings: embeddings}, nil
}

// EmbeddingsModTime returns the last-write timestamp of the embeddings
// artifact, the staleness reference for the cluster cache.
func (s *Store) EmbeddingsModTime() (time.Time, error) {
	info, err := os.Stat(filepath.Join(s.dataDir, embeddingsFile))
	if err != nil {
		if isNotExist(err) {
			return time.Time{}, recerrors.NewDataNotReadyError("embeddings artifact missing")
		}

		return time.Time{}, fmt.Errorf("stat embeddings: %w", err)
	}

	return info.ModTime(), nil
}

func (s *Store) loadBooks() ([]models.Book, error) {
	path := filepath.Join(s.dataDir, catalogFile)

	raw, err := os.ReadFile(path)
	if err != nil {
		if isNotExist(err) {
			return nil, recerrors.NewDataNotReadyError("catalog artifact missing: " + path)
		}

		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var books []models.Book
	if err := json.Unmarshal(raw, &books); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	if len(books) == 0 {
		return nil, recerrors.NewDataNotReadyError("catalog artifact is empty")
	}

	return books, nil
}

func (s *Store) loadEmbeddings() ([][]float32, error) {
	path := filepath.Join(s.dataDir, embeddingsFile)

	raw, err := os.ReadFile(path)
	if err != nil {
		if isNotExist(err) {
			return nil, recerrors.NewDataNotReadyError("embeddings artifact missing: " + path)
		}

		return nil, fmt.Errorf("read embeddings: %w", err)
	}

	var embeddings [][]float32
	if err := json.Unmarshal(raw, &embeddings); err != nil {
		return nil, fmt.Errorf("decode embeddings: %w", err)
	}

	if len(embeddings) == 0 {
		return nil, recerrors.NewDataNotReadyError("embeddings artifact is empty")
	}

	dim := len(embeddings[0])
	for i, emb := range embeddings {
		if len(emb) != dim {
			return nil, fmt.Errorf("embeddings artifact has inconsistent dimensions: row %d has %d, want %d", i, len(emb), dim)
		}
	}

	return embeddings, nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
