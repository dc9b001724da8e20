package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dokkai-practice-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// PassageLoader loads passage JSONB from Postgres.
type PassageLoader struct {
	pool *pgxpool.Pool
}

func NewPassageLoader(pool *pgxpool.Pool) *PassageLoader {
	return &PassageLoader{pool: pool}
}

func (l *PassageLoader) LoadPassage(ctx context.Context, passageID string) (domain.Passage, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM passages WHERE id=$1`, passageID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Passage{}, domain.ErrPassageNotFound
	}
	if err != nil {
		return domain.Passage{}, fmt.Errorf("load passage: %w", err)
	}
	var passage domain.Passage
	if err := json.Unmarshal(raw, &passage); err != nil {
		return domain.Passage{}, fmt.Errorf("unmarshal passage: %w", err)
	}
	return passage, nil
}

// ContentIndex builds the catalog from the stored passage metadata.
func (l *PassageLoader) ContentIndex(ctx context.Context) (domain.ContentIndex, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, title, category, difficulty, estimated_time FROM passages ORDER BY id`)
	if err != nil {
		return domain.ContentIndex{}, fmt.Errorf("%w: %v", domain.ErrMetadataUnavailable, err)
	}
	defer rows.Close()

	index := domain.ContentIndex{}
	counts := make(map[string]int)
	for rows.Next() {
		var summary domain.PassageSummary
		if err := rows.Scan(&summary.ID, &summary.Title, &summary.Category, &summary.Difficulty, &summary.EstimatedTime); err != nil {
			return domain.ContentIndex{}, fmt.Errorf("scan passage summary: %w", err)
		}
		index.Passages = append(index.Passages, summary)
		counts[summary.Category]++
	}
	if err := rows.Err(); err != nil {
		return domain.ContentIndex{}, fmt.Errorf("%w: %v", domain.ErrMetadataUnavailable, err)
	}
	for id, count := range counts {
		index.Categories = append(index.Categories, domain.CategoryCount{ID: id, Count: count})
	}
	return index, nil
}
