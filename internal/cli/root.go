package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/cadence/internal/actions"
	"github.com/julianstephens/cadence/internal/aiplan"
	"github.com/julianstephens/cadence/internal/backup"
	"github.com/julianstephens/cadence/internal/config"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/storage/sqlite"
	"github.com/julianstephens/cadence/internal/utils"
)

// ErrBackupUnsupported is returned by backup commands on non-SQLite stores.
var ErrBackupUnsupported = errors.New("backups are only available for the SQLite store")

type Context struct {
	Store    storage.Provider
	Actions  *actions.Service
	Services *config.Config
	// ServicesPath is where Services was loaded from.
	ServicesPath string

	Out io.Writer
	In  io.Reader
}

func NewContext(store storage.Provider, services *config.Config) *Context {
	if services == nil {
		services = config.Default()
	}
	return &Context{
		Store:    store,
		Actions:  actions.New(store),
		Services: services,
		Out:      os.Stdout,
		In:       os.Stdin,
	}
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// Confirm asks a yes/no question on the context's input.
func (c *Context) Confirm(question string) (bool, error) {
	c.Printf("%s [y/N]: ", question)
	response, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// BackupManager returns the backup manager of a SQLite store.
func (c *Context) BackupManager() (*backup.Manager, error) {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return nil, ErrBackupUnsupported
	}
	return backup.NewManager(c.Store.GetConfigPath()), nil
}

// PerformAutomaticBackup backs up a SQLite store and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	mgr, err := c.BackupManager()
	if err != nil {
		return
	}
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// AIClient builds the Ollama client from the service config.
func (c *Context) AIClient() *aiplan.Client {
	ai := c.Services.AI
	return aiplan.NewClient(aiplan.Options{
		BaseURL:           ai.BaseURL,
		Model:             ai.Model,
		NumCtx:            ai.NumCtx,
		RequestsPerSecond: ai.RequestsPerSecond,
		Timeout:           ai.Timeout,
	})
}

// Today returns the current date in the stored timezone.
func (c *Context) Today() (time.Time, error) {
	return c.Actions.Today()
}

// ParseDay resolves "today", "tomorrow", "yesterday" or YYYY-MM-DD to the
// start of that day in the stored timezone. Empty means today.
func (c *Context) ParseDay(value string) (time.Time, error) {
	today, err := c.Today()
	if err != nil {
		return time.Time{}, err
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	day, err := utils.ParseDateInLocation(value, today.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD, 'today' or 'tomorrow'", value)
	}
	return day, nil
}

// ParseWeekdays parses a comma-separated list of weekdays
func ParseWeekdays(s string) ([]time.Weekday, error) {
	parts := strings.Split(s, ",")
	var weekdays []time.Weekday

	dayMap := map[string]time.Weekday{
		"sun":       time.Sunday,
		"sunday":    time.Sunday,
		"mon":       time.Monday,
		"monday":    time.Monday,
		"tue":       time.Tuesday,
		"tuesday":   time.Tuesday,
		"wed":       time.Wednesday,
		"wednesday": time.Wednesday,
		"thu":       time.Thursday,
		"thursday":  time.Thursday,
		"fri":       time.Friday,
		"friday":    time.Friday,
		"sat":       time.Saturday,
		"saturday":  time.Saturday,
	}

	for _, part := range parts {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		if wd, ok := dayMap[part]; ok {
			weekdays = append(weekdays, wd)
			continue
		}
		// 0=Sunday, 6=Saturday
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 || num > 6 {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		weekdays = append(weekdays, time.Weekday(num))
	}

	return weekdays, nil
}

// ParseSlot parses an RFC 3339 slot timestamp; empty means no slot.
func ParseSlot(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid slot %q, use RFC 3339 (e.g. 2024-03-05T09:00:00Z): %w", value, err)
	}
	return &t, nil
}

// ResolveTaskID accepts a full task id or a unique prefix of one.
func (c *Context) ResolveTaskID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.New("task id is required")
	}
	if _, err := c.Store.GetTask(ref); err == nil {
		return ref, nil
	} else if !storage.IsNotFound(err) {
		return "", err
	}

	tasks, err := c.Store.GetAllTasks()
	if err != nil {
		return "", err
	}
	var matches []string
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("task %s: %w", ref, storage.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("task id %q is ambiguous (%d matches)", ref, len(matches))
	}
}

func (c *Context) Print(args ...any) {
	fmt.Fprint(c.Out, args...)
}
