package postgres

import (
	"database/sql"
	"fmt"

	"github.com/julianstephens/cadence/internal/models"
)

func (s *Store) AddHistory(record models.HistoryRecord) error {
	if err := s.ready(); err != nil {
		return err
	}

	_, err := s.db.Exec(`
INSERT INTO history (id, task_id, title, duration_min, completed_at, note, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.ID, record.TaskID, record.Title, record.DurationMinutes,
		record.CompletedAt.UTC(), record.Note, record.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to add history for task %s: %w", record.TaskID, err)
	}
	return nil
}

// GetHistory returns the newest records first; limit <= 0 means no limit.
func (s *Store) GetHistory(limit int) ([]models.HistoryRecord, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var maxRows sql.NullInt64
	if limit > 0 {
		maxRows = sql.NullInt64{Int64: int64(limit), Valid: true}
	}

	rows, err := s.db.Query(`
SELECT id, task_id, title, duration_min, completed_at, note, status
FROM history ORDER BY completed_at DESC, id DESC LIMIT $1`, maxRows)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	history := []models.HistoryRecord{}
	for rows.Next() {
		var r models.HistoryRecord
		if err := rows.Scan(&r.ID, &r.TaskID, &r.Title, &r.DurationMinutes, &r.CompletedAt, &r.Note, &r.Status); err != nil {
			return nil, err
		}
		r.CompletedAt = r.CompletedAt.UTC()
		history = append(history, r)
	}
	return history, rows.Err()
}
