// Package feedback persists user feedback on recommendations as an
// append-only JSONL file. Feedback volume is tiny relative to the catalog;
// one file with a mutex is deliberate.
package feedback

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/bookfinder/recommender/internal/models"
)

// maxLineBytes bounds a single stored entry line on read.
const maxLineBytes = 1 << 20

// Store is a file-backed feedback store. Safe for concurrent use.
type Store struct {
	path string

	mu sync.Mutex
}

// NewStore creates a Store writing to path. The file is created on first append.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Append adds one entry to the store.
func (s *Store) Append(entry models.FeedbackEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode feedback entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open feedback store: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(raw, '\n')); err != nil {
		return fmt.Errorf("append feedback entry: %w", err)
	}

	return nil
}

// List returns all entries in append order. A missing file yields an empty
// list; a malformed line is skipped rather than failing the whole read.
func (s *Store) List() ([]models.FeedbackEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.FeedbackEntry{}, nil
		}

		return nil, fmt.Errorf("open feedback store: %w", err)
	}
	defer f.Close()

	entries := make([]models.FeedbackEntry, 0)
	scanner := bufio.NewScanner(f)

	// Free-form comments can push a line past bufio's default 64KB token limit.
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry models.FeedbackEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}

		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read feedback store: %w", err)
	}

	return entries, nil
}
