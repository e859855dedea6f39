package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
)

type Store struct {
	Version  int                            `json:"version"`
	Settings models.Settings                `json:"settings"`
	Tasks    map[string]models.TaskTemplate `json:"tasks"`
	History  []models.HistoryRecord         `json:"history"`
}

// JSONStore keeps everything in a single JSON document on disk. Every write
// rewrites the whole file, so a failed write leaves the previous contents.
type JSONStore struct {
	mu    sync.Mutex
	path  string
	store *Store
	now   func() time.Time
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
		now:  time.Now,
	}
}

func (s *JSONStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Check if file already exists
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.store = &Store{
		Version:  1,
		Settings: models.DefaultSettings(),
		Tasks:    make(map[string]models.TaskTemplate),
		History:  []models.HistoryRecord{},
	}

	return s.save(s.store)
}

func (s *JSONStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	store := &Store{}
	if err := json.Unmarshal(data, store); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	// Ensure maps are initialized
	if store.Tasks == nil {
		store.Tasks = make(map[string]models.TaskTemplate)
	}
	models.ApplyDefaultSettings(&store.Settings)

	s.store = store
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

// save writes store to disk through a temporary file and a rename.
func (s *JSONStore) save(store *Store) error {
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

// commit applies mutate to a copy of the store and only adopts it once it
// has been written.
func (s *JSONStore) commit(mutate func(*Store) error) error {
	if s.store == nil {
		return ErrNotLoaded
	}

	next := &Store{
		Version:  s.store.Version,
		Settings: s.store.Settings,
		Tasks:    make(map[string]models.TaskTemplate, len(s.store.Tasks)),
		History:  slices.Clone(s.store.History),
	}
	for id, task := range s.store.Tasks {
		next.Tasks[id] = task.Clone()
	}

	if err := mutate(next); err != nil {
		return err
	}
	if err := s.save(next); err != nil {
		return err
	}
	s.store = next
	return nil
}

func (s *JSONStore) GetSettings() (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return models.Settings{}, ErrNotLoaded
	}
	return s.store.Settings, nil
}

func (s *JSONStore) SaveSettings(settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(func(st *Store) error {
		st.Settings = settings
		return nil
	})
}

func (s *JSONStore) AddTask(task models.TaskTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(func(st *Store) error {
		if _, ok := st.Tasks[task.ID]; ok {
			return fmt.Errorf("task already exists: %s", task.ID)
		}
		st.Tasks[task.ID] = task.Clone()
		return nil
	})
}

func (s *JSONStore) GetTask(id string) (models.TaskTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return models.TaskTemplate{}, ErrNotLoaded
	}

	task, ok := s.store.Tasks[id]
	if !ok || task.DeletedAt != nil {
		return models.TaskTemplate{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	return task.Clone(), nil
}

func (s *JSONStore) GetAllTasks() ([]models.TaskTemplate, error) {
	return s.allTasks(false)
}

func (s *JSONStore) GetAllTasksIncludingDeleted() ([]models.TaskTemplate, error) {
	return s.allTasks(true)
}

func (s *JSONStore) allTasks(includeDeleted bool) ([]models.TaskTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return nil, ErrNotLoaded
	}

	tasks := make([]models.TaskTemplate, 0, len(s.store.Tasks))
	for _, task := range s.store.Tasks {
		if task.DeletedAt != nil && !includeDeleted {
			continue
		}
		tasks = append(tasks, task.Clone())
	}
	sortTasks(tasks)

	return tasks, nil
}

func (s *JSONStore) UpdateTask(task models.TaskTemplate) error {
	return s.UpdateTasks([]models.TaskTemplate{task})
}

func (s *JSONStore) UpdateTasks(tasks []models.TaskTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(func(st *Store) error {
		for _, task := range tasks {
			existing, ok := st.Tasks[task.ID]
			if !ok || existing.DeletedAt != nil {
				return fmt.Errorf("task %s: %w", task.ID, ErrNotFound)
			}
			st.Tasks[task.ID] = task.Clone()
		}
		return nil
	})
}

func (s *JSONStore) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(func(st *Store) error {
		task, ok := st.Tasks[id]
		if !ok || task.DeletedAt != nil {
			return fmt.Errorf("task %s: %w", id, ErrNotFound)
		}

		// Soft delete: set deleted_at timestamp
		now := s.now().UTC()
		task.DeletedAt = &now
		st.Tasks[id] = task
		return nil
	})
}

func (s *JSONStore) RestoreTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(func(st *Store) error {
		task, ok := st.Tasks[id]
		if !ok {
			return fmt.Errorf("task %s: %w", id, ErrNotFound)
		}

		// Only allow restoring tasks that are currently soft-deleted
		if task.DeletedAt == nil {
			return fmt.Errorf("cannot restore a task that is not deleted: %s", id)
		}

		task.DeletedAt = nil
		st.Tasks[id] = task
		return nil
	})
}

func (s *JSONStore) AddHistory(record models.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(func(st *Store) error {
		st.History = append(st.History, record)
		return nil
	})
}

func (s *JSONStore) GetHistory(limit int) ([]models.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return nil, ErrNotLoaded
	}

	history := slices.Clone(s.store.History)
	SortHistory(history)
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

// GetConfigPath returns the path to the underlying storage file.
func (s *JSONStore) GetConfigPath() string {
	return s.path
}

// sortTasks orders templates by title then id so listings are stable.
func sortTasks(tasks []models.TaskTemplate) {
	slices.SortFunc(tasks, func(a, b models.TaskTemplate) int {
		if c := strings.Compare(a.Title, b.Title); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// SortHistory orders history newest first.
func SortHistory(history []models.HistoryRecord) {
	slices.SortStableFunc(history, func(a, b models.HistoryRecord) int {
		return b.CompletedAt.Compare(a.CompletedAt)
	})
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
