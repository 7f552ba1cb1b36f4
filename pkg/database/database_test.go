package database

import (
	"path/filepath"
	"testing"

	"whatsfresh/internal/model"
	"whatsfresh/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestSqliteDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: ":memory:", want: "file::memory:?_pragma=foreign_keys(1)"},
		{in: "fresh.db", want: "fresh.db?_pragma=foreign_keys(1)"},
		{in: "fresh.db?_pragma=busy_timeout(5000)", want: "fresh.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"},
		{in: "fresh.db?_pragma=foreign_keys(0)", want: "fresh.db?_pragma=foreign_keys(0)"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteDSN(tt.in))
		})
	}
}

func TestInitDBSqlite(t *testing.T) {
	db, err := InitDB(&config.DBConfig{
		Driver:       "sqlite",
		Path:         filepath.Join(t.TempDir(), "fresh.db"),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		LogLevel:     logger.Silent,
	})
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })

	require.NoError(t, Migrate(db))
	for _, m := range model.All() {
		assert.True(t, db.Migrator().HasTable(m))
	}

	// foreign keys are enforced
	err = db.Create(&model.VendorProduct{VendorID: 7, ProductPreparationID: 9}).Error
	assert.Error(t, err)
}

func TestInitDBUnsupportedDriver(t *testing.T) {
	_, err := InitDB(&config.DBConfig{Driver: "oracle"})
	assert.Error(t, err)

	assert.Error(t, Migrate(nil))
}
