// Package database handles database connections and schema inspection.
//
// It wraps GORM to open MySQL or SQLite connections with sane pool and
// timeout settings. The sqlblob storage driver is its main consumer.
//
// # Connect
//
// Connect picks the dialector from Config.Driver and verifies the connection
// with a ping bounded by the configured timeout. SQLite connections are
// limited to a single open connection so that ":memory:" databases are
// shared by every query.
//
// # Schema Inspection
//
// GetTableColumns returns the columns of a table for both dialects. The
// integrity feature uses it to verify the blob table layout.
//
// # Usage
//
//	db, err := database.Connect(database.Config{Driver: "sqlite3", Name: "objects.db"})
//	if err != nil {
//	    return err
//	}
//
//	columns, err := database.GetTableColumns(db, "objectfs_blobs")
package database
