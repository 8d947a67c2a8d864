// Package store opens the persistence backend selected by configuration.
//
// Each module opens its own Handle; with SQLite they share the database file,
// with MongoDB they share the database name.
package store

import (
	"context"
	"fmt"

	"github.com/example/task-tracker/config"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Handle wraps exactly one open backend: SQL holds a GORM connection for the
// sqlite driver, Mongo holds a database for the mongo driver.
type Handle struct {
	SQL    *gorm.DB
	Mongo  *mongo.Database
	client *mongo.Client
	driver string
}

// Open connects to the configured backend. For SQLite the given models are auto-migrated.
func Open(ctx context.Context, cfg config.StoreConfig, models ...any) (*Handle, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := OpenSQLite(cfg.SQLitePath, cfg.Debug)
		if err != nil {
			return nil, err
		}
		if len(models) > 0 {
			if err := db.AutoMigrate(models...); err != nil {
				return nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}
		return &Handle{SQL: db, driver: cfg.Driver}, nil
	case config.DriverMongo:
		client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("mongo ping failed: %w", err)
		}
		return &Handle{
			Mongo:  client.Database(cfg.MongoDatabase),
			client: client,
			driver: cfg.Driver,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.Driver)
	}
}

// OpenSQLite opens a SQLite database through GORM. GORM logging is silent unless debug is set.
func OpenSQLite(path string, debug bool) (*gorm.DB, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Driver returns the configured driver name.
func (h *Handle) Driver() string {
	return h.driver
}

// Ping checks that the backend is reachable.
func (h *Handle) Ping(ctx context.Context) error {
	if h.SQL != nil {
		sqlDB, err := h.SQL.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		return sqlDB.PingContext(ctx)
	}
	if h.client != nil {
		return h.client.Ping(ctx, nil)
	}
	return fmt.Errorf("store not initialized")
}

// Close releases the underlying connection.
func (h *Handle) Close(ctx context.Context) error {
	if h.SQL != nil {
		sqlDB, err := h.SQL.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		return sqlDB.Close()
	}
	if h.client != nil {
		return h.client.Disconnect(ctx)
	}
	return nil
}
