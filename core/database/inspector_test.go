package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
)

func TestGetTableColumns_SQLite(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite3", Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE blobs (id INTEGER PRIMARY KEY, object_key TEXT NOT NULL, data BLOB)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "blobs")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	byName := make(map[string]ColumnInfo)
	for _, col := range columns {
		byName[col.Field] = col
	}
	assert.Equal(t, "integer", byName["id"].Type)
	assert.Equal(t, "text", byName["object_key"].Type)
	assert.Equal(t, "NO", byName["object_key"].Null)
	assert.Equal(t, "blob", byName["data"].Type)

	// PRAGMA table_info yields no rows for a missing table.
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestGetTableColumns_MySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}))
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("ID", "BIGINT", "NO", "PRI", nil, "auto_increment").
		AddRow("object_key", "VARBINARY(767)", "NO", "UNI", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `objectfs_blobs`").WillReturnRows(rows)

	columns, err := GetTableColumns(db, "objectfs_blobs")
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, "id", columns[0].Field)
	assert.Equal(t, "varbinary(767)", columns[1].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}
