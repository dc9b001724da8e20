package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"dokkai-practice-service/internal/domain"
)

const indexPath = "metadata/content-index.json"

// ContentSource serves passages and the content index from a directory of
// static JSON files laid out as:
//
//	<dir>/metadata/content-index.json
//	<dir>/<entry.filePath> for each passage
//
// It implements both the PassageLoader and app.MetadataSource ports.
type ContentSource struct {
	dir string
}

func NewContentSource(dir string) *ContentSource {
	return &ContentSource{dir: dir}
}

// ContentIndex reads the passage catalog.
func (s *ContentSource) ContentIndex(_ context.Context) (domain.ContentIndex, error) {
	var index domain.ContentIndex
	if err := s.readJSON(indexPath, &index); err != nil {
		return domain.ContentIndex{}, fmt.Errorf("%w: %v", domain.ErrMetadataUnavailable, err)
	}
	return index, nil
}

// LoadPassage resolves the passage's file path through the index and reads it.
func (s *ContentSource) LoadPassage(ctx context.Context, passageID string) (domain.Passage, error) {
	index, err := s.ContentIndex(ctx)
	if err != nil {
		return domain.Passage{}, err
	}

	var entry *domain.PassageSummary
	for i := range index.Passages {
		if index.Passages[i].ID == passageID {
			entry = &index.Passages[i]
			break
		}
	}
	if entry == nil {
		return domain.Passage{}, domain.ErrPassageNotFound
	}

	var passage domain.Passage
	if err := s.readJSON(entry.FilePath, &passage); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Passage{}, domain.ErrPassageNotFound
		}
		return domain.Passage{}, fmt.Errorf("load passage %s: %w", passageID, err)
	}

	// Index metadata wins over whatever the passage file carries.
	passage.ID = entry.ID
	if passage.Title == "" {
		passage.Title = entry.Title
	}
	if passage.Category == "" {
		passage.Category = entry.Category
	}
	if passage.Difficulty == 0 {
		passage.Difficulty = entry.Difficulty
	}
	if passage.EstimatedTime == 0 {
		passage.EstimatedTime = entry.EstimatedTime
	}
	return passage, nil
}

func (s *ContentSource) readJSON(rel string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(rel)))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
