package storage

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/common"
	"github.com/ternarybob/scandex/internal/interfaces"
	"github.com/ternarybob/scandex/internal/storage/badger"
	"github.com/ternarybob/scandex/internal/storage/sqlite"
)

// Manager owns the SQLite document store and the Badger settings store.
type Manager struct {
	sqliteDB *sqlite.SQLiteDB
	badgerDB *badger.BadgerDB

	documentStorage interfaces.DocumentStorage
	settingsStorage interfaces.SettingsStorage

	logger arbor.ILogger
}

// NewManager opens both databases and wires the storage instances.
func NewManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	sqliteDB, err := sqlite.NewSQLiteDB(logger, &config.Storage.SQLite)
	if err != nil {
		return nil, fmt.Errorf("failed to open document database: %w", err)
	}

	badgerDB, err := badger.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}

	return &Manager{
		sqliteDB:        sqliteDB,
		badgerDB:        badgerDB,
		documentStorage: sqlite.NewDocumentStorage(sqliteDB, logger),
		settingsStorage: badger.NewSettingsStorage(badgerDB, logger),
		logger:          logger,
	}, nil
}

// DocumentStorage returns the document storage instance.
func (m *Manager) DocumentStorage() interfaces.DocumentStorage {
	return m.documentStorage
}

// SettingsStorage returns the settings storage instance.
func (m *Manager) SettingsStorage() interfaces.SettingsStorage {
	return m.settingsStorage
}

// Close closes all database connections.
func (m *Manager) Close() error {
	var firstErr error
	if err := m.sqliteDB.Close(); err != nil {
		firstErr = err
	}
	if err := m.badgerDB.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
