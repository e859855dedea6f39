package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/cadence/internal/config"
	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/keyring"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/storage/postgres"
	"github.com/julianstephens/cadence/internal/storage/remote"
	"github.com/julianstephens/cadence/internal/storage/sqlite"
)

// OpenStore picks the backend for location:
//   - the remote task service when services names an API base URL
//   - PostgreSQL for a connection string, or for the default location when a
//     connection string is stored in the keyring or environment
//   - a JSON file for a .json path
//   - SQLite otherwise
func OpenStore(location string, services *config.Config) (storage.Provider, error) {
	if services != nil && services.API.BaseURL != "" {
		key, err := keyring.Resolve(keyring.APIKey)
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return nil, fmt.Errorf("no API key for %s; run '%s keyring set api-key' or set %s",
					services.API.BaseURL, constants.AppName, constants.EnvAPIKey)
			}
			return nil, err
		}
		logger.Debug("using remote task service", "base_url", services.API.BaseURL)
		client := remote.NewClient(remote.Options{
			BaseURL:           services.API.BaseURL,
			APIKey:            key,
			RequestsPerSecond: services.API.RequestsPerSecond,
			Timeout:           services.API.Timeout,
		})
		return remote.NewStore(client, models.DefaultSettings()), nil
	}

	if postgres.IsConnString(location) {
		if err := postgres.ValidateConnString(location); err != nil {
			return nil, fmt.Errorf("%w\n  store the connection string with '%s keyring set connection-string' or set %s instead",
				err, constants.AppName, constants.EnvDBConnection)
		}
		logger.Debug("using PostgreSQL store")
		return postgres.New(location), nil
	}

	if location == "" || location == constants.DefaultConfigPath {
		if connStr, err := keyring.Resolve(keyring.ConnectionString); err == nil {
			logger.Debug("using PostgreSQL store from stored connection string")
			return postgres.New(connStr), nil
		} else if !errors.Is(err, keyring.ErrNotFound) {
			logger.Debug("keyring lookup failed", "error", err)
		}
		location = constants.DefaultConfigPath
	}

	path := config.ExpandPath(location)
	if strings.HasSuffix(path, ".json") {
		logger.Debug("using JSON store", "path", path)
		return storage.NewJSONStore(path), nil
	}
	logger.Debug("using SQLite store", "path", path)
	return sqlite.NewStore(path), nil
}
