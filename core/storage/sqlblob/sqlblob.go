// Package sqlblob stores objects as rows of a SQL table, registered as
// "sqlite3" and "mysql".
//
// Endpoints:
//
//	sqlite3   path/to/objects.db   (or ":memory:")
//	mysql     [user[:password]@]host[:port]/dbname
//
// The access and secret keys, when set, override the user and password of a
// mysql endpoint. Keys are compared as bytes on both dialects, so listings
// come back in the same lexical order as every other backend.
package sqlblob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"objectfs/core/database"
	"objectfs/core/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TableName is the table holding object rows.
const TableName = "objectfs_blobs"

// Blob is one stored object.
type Blob struct {
	ID       int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Key      string    `gorm:"column:object_key"`
	Size     int64     `gorm:"column:size"`
	Modified time.Time `gorm:"column:modified"`
	Data     []byte    `gorm:"column:data"`
}

func (Blob) TableName() string { return TableName }

type blobData struct {
	Data []byte `gorm:"column:data"`
}

var schemas = map[string]string{
	"sqlite": `CREATE TABLE IF NOT EXISTS ` + TableName + ` (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	object_key TEXT NOT NULL UNIQUE,
	size INTEGER NOT NULL,
	modified DATETIME NOT NULL,
	data BLOB
)`,
	"mysql": "CREATE TABLE IF NOT EXISTS `" + TableName + "` (" + `
	id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
	object_key VARBINARY(767) NOT NULL,
	size BIGINT NOT NULL,
	modified DATETIME(6) NOT NULL,
	data LONGBLOB,
	UNIQUE KEY uk_object_key (object_key)
)`,
}

func init() {
	for _, name := range []string{"sqlite3", "mysql"} {
		name := name
		storage.Register(name, func(ctx context.Context, cfg storage.Config) (storage.Driver, error) {
			dbCfg, err := ParseEndpoint(name, cfg.Endpoint)
			if err != nil {
				return nil, err
			}
			if cfg.AccessKey != "" {
				dbCfg.User = cfg.AccessKey
			}
			if cfg.SecretKey != "" {
				dbCfg.Password = cfg.SecretKey
			}
			dbCfg.TimeoutSeconds = cfg.TimeoutSeconds
			db, err := database.Connect(dbCfg)
			if err != nil {
				return nil, storage.NewError("create", "", storage.ErrConnection, err)
			}
			return New(db, name+"://"+redact(dbCfg)), nil
		})
	}
}

// ParseEndpoint converts a driver endpoint into a database configuration.
func ParseEndpoint(driver, endpoint string) (database.Config, error) {
	cfg := database.Config{Driver: driver}
	if driver == "sqlite3" {
		cfg.Name = strings.TrimPrefix(endpoint, "sqlite3://")
		if cfg.Name == "" {
			return cfg, storage.NewError("create", "", storage.ErrInvalidArgument, errors.New("sqlite3 endpoint needs a database path"))
		}
		return cfg, nil
	}

	raw := endpoint
	if !strings.Contains(raw, "://") {
		raw = "mysql://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return cfg, storage.NewError("create", "", storage.ErrInvalidArgument, fmt.Errorf("invalid endpoint %q: %w", endpoint, err))
	}
	cfg.Host = u.Hostname()
	cfg.Port = 3306
	if p := u.Port(); p != "" {
		if cfg.Port, err = strconv.Atoi(p); err != nil {
			return cfg, storage.NewError("create", "", storage.ErrInvalidArgument, fmt.Errorf("invalid port %q", p))
		}
	}
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Password, _ = u.User.Password()
	}
	cfg.Name = strings.Trim(u.Path, "/")
	if cfg.Host == "" || cfg.Name == "" {
		return cfg, storage.NewError("create", "", storage.ErrInvalidArgument, fmt.Errorf("endpoint %q must look like user:password@host:port/dbname", endpoint))
	}
	return cfg, nil
}

func redact(cfg database.Config) string {
	if cfg.Driver == "sqlite3" {
		return cfg.Name + "/"
	}
	return fmt.Sprintf("%s:%d/%s/", cfg.Host, cfg.Port, cfg.Name)
}

// Store is a storage driver over one table.
type Store struct {
	db   *gorm.DB
	name string
}

// New wraps an open connection. name is returned by String.
func New(db *gorm.DB, name string) *Store {
	return &Store{db: db, name: name}
}

// DB exposes the connection for schema checks.
func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) String() string { return s.name }

func (s *Store) Create(ctx context.Context) error {
	ddl, ok := schemas[s.db.Dialector.Name()]
	if !ok {
		return storage.NewError("create", "", storage.ErrInvalidArgument, fmt.Errorf("unsupported dialect %q", s.db.Dialector.Name()))
	}
	if err := s.db.WithContext(ctx).Exec(ddl).Error; err != nil {
		return mapErr("create", "", err)
	}
	return nil
}

var metaColumns = []string{"object_key", "size", "modified"}

func (s *Store) Head(ctx context.Context, key string) (storage.Object, error) {
	var row Blob
	err := s.db.WithContext(ctx).Select(metaColumns).Where("object_key = ?", key).Take(&row).Error
	if err != nil {
		return storage.Object{}, mapErr("head", key, err)
	}
	return toObject(row), nil
}

func toObject(row Blob) storage.Object {
	return storage.Object{
		Key:   row.Key,
		Size:  row.Size,
		Mtime: row.Modified,
		Dir:   strings.HasSuffix(row.Key, "/"),
	}
}

// prefixEnd returns the smallest key greater than every key with prefix, or
// "" when no such bound exists.
func prefixEnd(prefix string) string {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xff {
			b[i]++
			return string(b[:i+1])
		}
	}
	return ""
}

func (s *Store) List(ctx context.Context, prefix, marker string, limit int64) ([]storage.Object, error) {
	q := s.db.WithContext(ctx).Select(metaColumns).Where("object_key > ?", marker)
	if prefix != "" {
		q = q.Where("object_key >= ?", prefix)
		if end := prefixEnd(prefix); end != "" {
			q = q.Where("object_key < ?", end)
		}
	}
	var rows []Blob
	if err := q.Order("object_key").Limit(int(limit)).Find(&rows).Error; err != nil {
		return nil, mapErr("list", prefix, err)
	}
	objs := make([]storage.Object, 0, len(rows))
	for _, row := range rows {
		objs = append(objs, toObject(row))
	}
	return objs, nil
}

func (s *Store) Get(ctx context.Context, key string, off, limit int64) (io.ReadCloser, error) {
	var out blobData
	q := s.db.WithContext(ctx).Model(&Blob{})
	if limit >= 0 {
		q = q.Select("SUBSTR(data, ?, ?) AS data", off+1, limit)
	} else {
		q = q.Select("SUBSTR(data, ?) AS data", off+1)
	}
	if err := q.Where("object_key = ?", key).Take(&out).Error; err != nil {
		return nil, mapErr("get", key, err)
	}
	return io.NopCloser(bytes.NewReader(out.Data)), nil
}

// Put buffers r and upserts the row in one statement, so readers see either
// the old or the new value.
func (s *Store) Put(ctx context.Context, key string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if strings.HasSuffix(key, "/") && len(data) > 0 {
		return storage.NewError("put", key, storage.ErrInvalidArgument, fmt.Errorf("directory key with %d bytes", len(data)))
	}
	row := Blob{Key: key, Size: int64(len(data)), Modified: time.Now().UTC(), Data: data}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "object_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"size", "modified", "data"}),
	}).Create(&row).Error
	if err != nil {
		return mapErr("put", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	res := s.db.WithContext(ctx).Where("object_key = ?", key).Delete(&Blob{})
	if res.Error != nil {
		return mapErr("delete", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.NewError("delete", key, storage.ErrNotFound, nil)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func mapErr(op, key string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return storage.NewError(op, key, storage.ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return storage.NewError(op, key, storage.ErrAlreadyExists, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return storage.NewError(op, key, storage.ErrIOFailure, err)
	case strings.Contains(err.Error(), "Access denied"):
		return storage.NewError(op, key, storage.ErrPermissionDenied, err)
	case strings.Contains(err.Error(), "connection refused"), strings.Contains(err.Error(), "bad connection"):
		return storage.NewError(op, key, storage.ErrConnection, err)
	default:
		return storage.NewError(op, key, storage.ErrIOFailure, err)
	}
}
