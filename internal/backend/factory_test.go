package backend

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"finviz/internal/config"
	"finviz/internal/core"
	"finviz/internal/log"
	"finviz/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFactory() Factory {
	return NewFactory(log.New(log.Config{Output: io.Discard}))
}

func sampleDataset() core.Dataset {
	return core.Dataset{
		ID:   "ds-1",
		Name: "t.csv",
		Records: []core.Record{
			{Date: core.NewDate(2023, 1, 15), Category: "Food", Amount: decimal.RequireFromString("45.99")},
		},
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	ctx := context.Background()
	res, err := testFactory().CreateBackend(ctx, Config{Type: MemoryBackend})
	require.NoError(t, err)
	defer res.Close()

	assert.Nil(t, res.Pinger)
	assert.Nil(t, res.Publisher)

	_, err = res.Backend.Latest(ctx)
	assert.ErrorIs(t, err, store.ErrNoDataset)
	require.NoError(t, res.Backend.Save(ctx, sampleDataset()))
	got, err := res.Backend.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ds-1", got.ID)
}

func TestCreateSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "finviz.db")

	res, err := testFactory().CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: dbPath})
	require.NoError(t, err)
	require.NotNil(t, res.Pinger)
	require.NoError(t, res.Pinger.Ping(ctx))

	require.NoError(t, res.Backend.Save(ctx, sampleDataset()))
	require.NoError(t, res.Close())

	// Data survives a restart.
	res, err = testFactory().CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: dbPath})
	require.NoError(t, err)
	defer res.Close()
	got, err := res.Backend.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, got.Records, 1)
	assert.True(t, got.Records[0].Amount.Equal(decimal.RequireFromString("45.99")))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"sheets is not a backend", Config{Type: "sheets"}, true},
		{"amqp without queue", Config{Type: MemoryBackend, AMQPURL: "amqp://localhost", AMQPExchange: "finviz"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "./data/finviz.db", AMQPQueue: "q"})
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, "./data/finviz.db", cfg.SQLiteDBPath)
	assert.Equal(t, "q", cfg.AMQPQueue)

	_, err = FromAppConfig(&config.Config{DataBackend: "postgres"})
	assert.Error(t, err)

	assert.Equal(t, []string{"memory", "sqlite"}, GetBackendTypeStrings())
}
