package sqlite

import (
	"fmt"

	"github.com/julianstephens/cadence/internal/models"
)

func (s *Store) AddHistory(record models.HistoryRecord) error {
	if err := s.ready(); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		INSERT INTO history (id, task_id, title, duration_min, completed_at, note, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.TaskID, record.Title, record.DurationMinutes,
		formatTime(record.CompletedAt), record.Note, record.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to add history for task %s: %w", record.TaskID, err)
	}
	return nil
}

// GetHistory returns the newest records first. A limit of zero or less
// returns everything.
func (s *Store) GetHistory(limit int) ([]models.HistoryRecord, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT id, task_id, title, duration_min, completed_at, note, status
		FROM history ORDER BY completed_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	history := []models.HistoryRecord{}
	for rows.Next() {
		var r models.HistoryRecord
		var completedAt string
		if err := rows.Scan(&r.ID, &r.TaskID, &r.Title, &r.DurationMinutes, &completedAt, &r.Note, &r.Status); err != nil {
			return nil, err
		}
		if r.CompletedAt, err = parseTime(completedAt); err != nil {
			return nil, err
		}
		history = append(history, r)
	}
	return history, rows.Err()
}
