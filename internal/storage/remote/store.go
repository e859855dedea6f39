package remote

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/storage"
)

// ErrUnsupported is returned for operations the task service does not offer.
var ErrUnsupported = errors.New("not supported by the task service")

// Store is a storage.Provider backed by the task service.
type Store struct {
	client *Client

	mu       sync.Mutex
	settings models.Settings
}

var _ storage.Provider = (*Store)(nil)

// NewStore returns a store that plans with settings, which are never sent to the service.
func NewStore(client *Client, settings models.Settings) *Store {
	models.ApplyDefaultSettings(&settings)
	return &Store{client: client, settings: settings}
}

func (s *Store) ctx() context.Context {
	return context.Background()
}

// Init checks that the service is reachable.
func (s *Store) Init() error {
	return s.Load()
}

func (s *Store) Load() error {
	if s.client.baseURL == "" {
		return errors.New("task service base URL is not configured")
	}
	if _, err := s.GetAllTasks(); err != nil {
		return fmt.Errorf("failed to reach task service: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.client.http.CloseIdleConnections()
	return nil
}

func (s *Store) GetSettings() (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, nil
}

func (s *Store) SaveSettings(models.Settings) error {
	return fmt.Errorf("settings: %w", ErrUnsupported)
}

func (s *Store) AddTask(task models.TaskTemplate) error {
	payload, err := toPayload(task)
	if err != nil {
		return err
	}
	return s.client.do(s.ctx(), "POST", "/tasks/", payload, nil)
}

func (s *Store) GetTask(id string) (models.TaskTemplate, error) {
	tasks, err := s.GetAllTasks()
	if err != nil {
		return models.TaskTemplate{}, err
	}
	for _, task := range tasks {
		if task.ID == id {
			return task, nil
		}
	}
	return models.TaskTemplate{}, fmt.Errorf("task %s: %w", id, storage.ErrNotFound)
}

func (s *Store) GetAllTasks() ([]models.TaskTemplate, error) {
	var payloads []taskPayload
	if err := s.client.do(s.ctx(), "GET", "/tasks/", nil, &payloads); err != nil {
		return nil, err
	}

	tasks := make([]models.TaskTemplate, 0, len(payloads))
	for _, p := range payloads {
		task, err := fromPayload(p)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", p.ID, err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// GetAllTasksIncludingDeleted equals GetAllTasks; the service deletes permanently.
func (s *Store) GetAllTasksIncludingDeleted() ([]models.TaskTemplate, error) {
	return s.GetAllTasks()
}

func (s *Store) UpdateTask(task models.TaskTemplate) error {
	payload, err := toPayload(task)
	if err != nil {
		return err
	}
	return s.client.do(s.ctx(), "PATCH", "/tasks/"+url.PathEscape(task.ID), payload, nil)
}

// UpdateTasks patches each template in turn. The service has no batch
// endpoint, so on failure the templates already written are patched back
// to the versions read before the batch started.
func (s *Store) UpdateTasks(tasks []models.TaskTemplate) error {
	if len(tasks) == 0 {
		return nil
	}

	current, err := s.GetAllTasks()
	if err != nil {
		return err
	}
	originals := make(map[string]models.TaskTemplate, len(current))
	for _, t := range current {
		originals[t.ID] = t
	}
	for _, t := range tasks {
		if _, ok := originals[t.ID]; !ok {
			return fmt.Errorf("task %s: %w", t.ID, storage.ErrNotFound)
		}
	}

	for i, task := range tasks {
		if err := s.UpdateTask(task); err != nil {
			for _, done := range tasks[:i] {
				if rbErr := s.UpdateTask(originals[done.ID]); rbErr != nil {
					logger.Error("failed to roll back task update", "task", done.ID, "error", rbErr)
				}
			}
			return fmt.Errorf("failed to update task %s: %w", task.ID, err)
		}
	}
	return nil
}

func (s *Store) DeleteTask(id string) error {
	return s.client.do(s.ctx(), "DELETE", "/tasks/"+url.PathEscape(id), nil, nil)
}

func (s *Store) RestoreTask(id string) error {
	return fmt.Errorf("restore task %s: %w", id, ErrUnsupported)
}

func (s *Store) AddHistory(record models.HistoryRecord) error {
	path := "/tasks/" + url.PathEscape(record.TaskID) + "/history"
	return s.client.do(s.ctx(), "POST", path, toHistoryPayload(record), nil)
}

func (s *Store) GetHistory(limit int) ([]models.HistoryRecord, error) {
	if limit <= 0 {
		limit = constants.DefaultHistoryLimit
	}

	var payloads []historyPayload
	path := "/tasks/history?limit=" + strconv.Itoa(limit)
	if err := s.client.do(s.ctx(), "GET", path, nil, &payloads); err != nil {
		return nil, err
	}

	history := make([]models.HistoryRecord, 0, len(payloads))
	for _, p := range payloads {
		history = append(history, fromHistoryPayload(p, ""))
	}
	storage.SortHistory(history)
	return history, nil
}

// GetConfigPath returns the service URL.
func (s *Store) GetConfigPath() string {
	return s.client.baseURL
}
