/*
 * Copyright (c) 2025, Brokkr Project (https://github.com/brokkr-id).
 *
 * Brokkr Project licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package provider provides functionality for managing database connections and clients.
package provider

import (
	"database/sql"
	"fmt"
	"path"
	"sync"

	"github.com/brokkr-id/brokkr/internal/system/config"
	"github.com/brokkr-id/brokkr/internal/system/database/client"
	dbmodel "github.com/brokkr-id/brokkr/internal/system/database/model"
)

const (
	dataSourceTypePostgres = "postgres"
	dataSourceTypeSQLite   = "sqlite"
)

// dbConfig represents the local database configuration.
type dbConfig struct {
	dsn        string
	driverName string
}

// DBProviderInterface defines the interface for getting database clients.
type DBProviderInterface interface {
	GetDBClient() (client.DBClientInterface, error)
}

// DBProvider is the implementation of DBProviderInterface.
type DBProvider struct {
	identityClient client.DBClientInterface
	identityMutex  sync.RWMutex
}

var (
	instance *DBProvider
	once     sync.Once
)

// GetDBProvider returns the singleton instance of DBProvider.
func GetDBProvider() DBProviderInterface {
	once.Do(func() {
		instance = &DBProvider{}
	})
	return instance
}

// GetDBClient returns the identity database client, initializing it on first use.
// The returned client manages its own connection pool and need not be closed by the caller.
func (d *DBProvider) GetDBClient() (client.DBClientInterface, error) {
	d.identityMutex.RLock()
	if d.identityClient != nil {
		dbClient := d.identityClient
		d.identityMutex.RUnlock()
		return dbClient, nil
	}
	d.identityMutex.RUnlock()

	d.identityMutex.Lock()
	defer d.identityMutex.Unlock()

	if d.identityClient != nil {
		return d.identityClient, nil
	}

	dataSource := config.GetBrokkrRuntime().Config.Database.Identity
	dbClient, err := initializeClient(dataSource)
	if err != nil {
		return nil, err
	}
	d.identityClient = dbClient

	return d.identityClient, nil
}

// initializeClient opens and verifies a database connection for the given data source.
func initializeClient(dataSource config.DataSource) (client.DBClientInterface, error) {
	cfg, err := getDBConfig(dataSource)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.driverName, cfg.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s: %w", dataSource.Name, err)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database %s: %w (close error: %w)",
				dataSource.Name, err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database %s: %w", dataSource.Name, err)
	}

	// Enable foreign key constraints for SQLite databases.
	if cfg.driverName == dataSourceTypeSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
			if closeErr := db.Close(); closeErr != nil {
				return nil, fmt.Errorf("failed to enable foreign key constraints for %s: %w (close error: %w)",
					dataSource.Name, err, closeErr)
			}
			return nil, fmt.Errorf("failed to enable foreign key constraints for %s: %w", dataSource.Name, err)
		}
	}

	return client.NewDBClient(dbmodel.NewDB(db), cfg.driverName), nil
}

// getDBConfig returns the driver name and DSN for the provided data source.
func getDBConfig(dataSource config.DataSource) (dbConfig, error) {
	var cfg dbConfig

	switch dataSource.Type {
	case dataSourceTypePostgres:
		cfg.driverName = dataSourceTypePostgres
		cfg.dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			dataSource.Hostname, dataSource.Port, dataSource.Username, dataSource.Password,
			dataSource.Name, dataSource.SSLMode)
	case dataSourceTypeSQLite:
		cfg.driverName = dataSourceTypeSQLite
		options := dataSource.Options
		if options != "" && options[0] != '?' {
			options = "?" + options
		}
		cfg.dsn = fmt.Sprintf("%s%s", path.Join(config.GetBrokkrRuntime().BrokkrHome, dataSource.Path), options)
	default:
		return cfg, fmt.Errorf("unsupported datasource type: %s", dataSource.Type)
	}

	return cfg, nil
}
