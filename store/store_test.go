package store

import (
	"context"
	"errors"
	"testing"

	"github.com/example/task-tracker/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID   string `gorm:"primaryKey"`
	Name string
}

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()

	h, err := Open(ctx, config.StoreConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"}, &widget{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close(ctx) })

	assert.Equal(t, config.DriverSQLite, h.Driver())
	assert.NotNil(t, h.SQL)
	assert.Nil(t, h.Mongo)
	assert.NoError(t, h.Ping(ctx))
	assert.True(t, h.SQL.Migrator().HasTable(&widget{}))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "cassandra"})
	assert.True(t, errors.Is(err, config.ErrUnknownDriver))
}

func TestHandle_PingUninitialized(t *testing.T) {
	h := &Handle{}
	assert.Error(t, h.Ping(context.Background()))
	assert.NoError(t, h.Close(context.Background()))
}
