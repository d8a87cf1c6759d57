package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

func TestNewDatabaseServiceSQLiteMigrates(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "test.db"))

	svc, err := NewDatabaseService(logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	assert.Equal(t, DriverSQLite, svc.Driver())
	require.NoError(t, svc.AutoMigrateAll())

	for _, table := range []string{"company", "funding_program", "document", "user_template", "style_profile"} {
		assert.True(t, svc.DB().Migrator().HasTable(table), table)
	}
}

func TestNewDatabaseServiceRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := NewDatabaseService(logger.NewNop())
	require.Error(t, err)
}
