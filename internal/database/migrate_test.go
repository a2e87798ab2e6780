package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/metamind/internal/database"
)

func TestDatabaseName(t *testing.T) {
	tests := []struct {
		name    string
		dsn     string
		want    string
		wantErr bool
	}{
		{name: "plain url", dsn: "postgres://u:p@localhost:5432/metamind?sslmode=disable", want: "metamind"},
		{name: "no port", dsn: "postgresql://localhost/history", want: "history"},
		{name: "missing name", dsn: "postgres://localhost:5432/", wantErr: true},
		{name: "bad url", dsn: "postgres://%zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := database.DatabaseName(tt.dsn)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultPoolConfig(t *testing.T) {
	cfg := database.DefaultPoolConfig("postgres://localhost/metamind")

	assert.Equal(t, "postgres://localhost/metamind", cfg.DSN)
	assert.Positive(t, cfg.MaxOpenConns)
	assert.LessOrEqual(t, cfg.MaxIdleConns, cfg.MaxOpenConns)
	assert.Positive(t, cfg.ConnMaxLifetime)
}
