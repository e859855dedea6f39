package storage

import (
	"errors"

	"github.com/julianstephens/cadence/internal/models"
)

var (
	// ErrNotFound is returned when a template does not exist or is deleted.
	ErrNotFound = errors.New("not found")
	// ErrNotLoaded is returned when a store is used before Init or Load.
	ErrNotLoaded = errors.New("storage not loaded")
)

// Provider is the persistence service behind the planner. Implementations
// return copies; callers never share template state with the store.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Tasks
	AddTask(models.TaskTemplate) error
	GetTask(id string) (models.TaskTemplate, error)
	GetAllTasks() ([]models.TaskTemplate, error)
	GetAllTasksIncludingDeleted() ([]models.TaskTemplate, error)
	UpdateTask(models.TaskTemplate) error
	// UpdateTasks writes every template or none of them.
	UpdateTasks([]models.TaskTemplate) error
	DeleteTask(id string) error
	RestoreTask(id string) error

	// History
	AddHistory(models.HistoryRecord) error
	GetHistory(limit int) ([]models.HistoryRecord, error)

	// Utils
	GetConfigPath() string
}
