package constants

const (
	AppName             = "cadence"
	DefaultKeyringUser  = "database-connection"
	APIKeyKeyringUser   = "api-key"
	DefaultConfigPath   = "~/.config/cadence/cadence.db"
	DefaultServicesPath = "~/.config/cadence/services.yaml"
	Version             = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Display labels for day plans
	DayLabelFormat      = "Monday, Jan 2"
	DayShortLabelFormat = "Mon 02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "cadence-"
	BackupFileSuffix = ".db"

	// Environment overrides
	EnvAPIKey       = "CADENCE_API_KEY"
	EnvAPIBaseURL   = "CADENCE_API_BASE_URL"
	EnvAIBaseURL    = "CADENCE_AI_BASE_URL"
	EnvDBConnection = "CADENCE_DB_CONNECTION"

	// History statuses
	HistoryStatusCompleted = "completed"
	HistoryStatusSkipped   = "skipped"

	DefaultHistoryLimit = 250
)
