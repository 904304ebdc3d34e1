package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.StorageMode = config.StorageModeMemory
	c.SecretKey = "secret"
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	return c
}

func TestNewApp_Memory(t *testing.T) {
	app, err := newApp(context.Background(), memoryConfig(), logging.NopLogger{})
	require.NoError(t, err)
	assert.Nil(t, app.db)
	assert.NotNil(t, app.userService)
}

func TestNewApp_EmptySecret(t *testing.T) {
	c := memoryConfig()
	c.SecretKey = ""

	_, err := newApp(context.Background(), c, logging.NopLogger{})
	assert.ErrorIs(t, err, auth.ErrEmptySecret)
}

func TestNewApp_PostgresUnavailable(t *testing.T) {
	orig := openPostgres
	t.Cleanup(func() { openPostgres = orig })

	openPostgres = func(ctx context.Context, dsn string) (*sql.DB, error) {
		return nil, errors.New("connection refused")
	}

	c := memoryConfig()
	c.StorageMode = config.StorageModePostgres

	_, err := newApp(context.Background(), c, logging.NopLogger{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error")
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app, err := newApp(context.Background(), memoryConfig(), logging.NopLogger{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}

func TestRun_StopsWhenAServerFails(t *testing.T) {
	c := memoryConfig()
	c.EndpointAddrHTTP = "127.0.0.1:99999"

	app, err := newApp(context.Background(), c, logging.NopLogger{})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		app.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after server failure")
	}
}
