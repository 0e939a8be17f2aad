package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"objectfs/core/storage"

	"github.com/minio/minio-go/v7"
)

// partSize bounds the memory used by streaming uploads of unknown length.
const partSize = 16 << 20

func init() {
	storage.Register("minio", func(ctx context.Context, cfg storage.Config) (storage.Driver, error) {
		host, bucket, secure, err := ParseEndpoint(cfg.Endpoint, cfg.UseSSL)
		if err != nil {
			return nil, err
		}
		client, err := NewClient(ClientOptions{
			Host:           host,
			Secure:         secure,
			Region:         cfg.Region,
			AccessKey:      cfg.AccessKey,
			SecretKey:      cfg.SecretKey,
			Token:          cfg.Token,
			TimeoutSeconds: cfg.TimeoutSeconds,
		})
		if err != nil {
			return nil, err
		}
		return New(client, host, bucket, cfg.Region), nil
	})
}

// ParseEndpoint splits "http(s)://host[:port]/bucket" into its parts. An
// endpoint without a scheme uses useSSL.
func ParseEndpoint(endpoint string, useSSL bool) (host, bucket string, secure bool, err error) {
	secure = useSSL
	raw := endpoint
	if !strings.Contains(raw, "://") {
		raw = "minio://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", false, storage.NewError("create", "", storage.ErrInvalidArgument, fmt.Errorf("invalid endpoint %q: %w", endpoint, err))
	}
	switch u.Scheme {
	case "https":
		secure = true
	case "http":
		secure = false
	}
	bucket = strings.Trim(u.Path, "/")
	if u.Host == "" || bucket == "" || strings.Contains(bucket, "/") {
		return "", "", false, storage.NewError("create", "", storage.ErrInvalidArgument, fmt.Errorf("endpoint %q must look like http://host:port/bucket", endpoint))
	}
	return u.Host, bucket, secure, nil
}

// Bucket is a storage driver over one MinIO/S3-compatible bucket.
type Bucket struct {
	client Client
	host   string
	bucket string
	region string
}

// New binds a driver to bucket through client.
func New(client Client, host, bucket, region string) *Bucket {
	return &Bucket{client: client, host: host, bucket: bucket, region: region}
}

func (b *Bucket) String() string {
	return fmt.Sprintf("minio://%s/%s/", b.host, b.bucket)
}

func (b *Bucket) Create(ctx context.Context) error {
	exists, err := b.client.BucketExists(ctx, b.bucket)
	if err != nil {
		return mapErr("create", "", err)
	}
	if exists {
		return nil
	}
	err = b.client.MakeBucket(ctx, b.bucket, minio.MakeBucketOptions{Region: b.region})
	if err != nil && !errors.Is(mapErr("create", "", err), storage.ErrAlreadyExists) {
		return mapErr("create", "", err)
	}
	return nil
}

func (b *Bucket) Head(ctx context.Context, key string) (storage.Object, error) {
	info, err := b.client.StatObject(ctx, b.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return storage.Object{}, mapErr("head", key, err)
	}
	return toObject(info), nil
}

func toObject(info minio.ObjectInfo) storage.Object {
	return storage.Object{
		Key:   info.Key,
		Size:  info.Size,
		Mtime: info.LastModified,
		Dir:   strings.HasSuffix(info.Key, "/"),
	}
}

func (b *Bucket) List(ctx context.Context, prefix, marker string, limit int64) ([]storage.Object, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := minio.ListObjectsOptions{
		Prefix:     prefix,
		StartAfter: marker,
		Recursive:  true,
		MaxKeys:    int(limit),
	}
	objs := make([]storage.Object, 0)
	for info := range b.client.ListObjects(ctx, b.bucket, opts) {
		if info.Err != nil {
			return nil, mapErr("list", prefix, info.Err)
		}
		objs = append(objs, toObject(info))
		if int64(len(objs)) >= limit {
			break
		}
	}
	return objs, nil
}

func (b *Bucket) Get(ctx context.Context, key string, off, limit int64) (io.ReadCloser, error) {
	if limit == 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	opts := minio.GetObjectOptions{}
	var err error
	switch {
	case limit > 0:
		err = opts.SetRange(off, off+limit-1)
	case off > 0:
		err = opts.SetRange(off, 0)
	}
	if err != nil {
		return nil, storage.NewError("get", key, storage.ErrInvalidArgument, err)
	}
	rc, err := b.client.GetObject(ctx, b.bucket, key, opts)
	if err != nil {
		return nil, mapErr("get", key, err)
	}
	return &objectReader{rc: rc, key: key}, nil
}

// objectReader classifies errors surfacing lazily from the first read.
type objectReader struct {
	rc  io.ReadCloser
	key string
}

func (r *objectReader) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, mapErr("read", r.key, err)
	}
	return n, err
}

func (r *objectReader) Close() error { return r.rc.Close() }

func (b *Bucket) Put(ctx context.Context, key string, r io.Reader) error {
	_, err := b.client.PutObject(ctx, b.bucket, key, r, -1, minio.PutObjectOptions{PartSize: partSize})
	if err != nil {
		return mapErr("put", key, err)
	}
	return nil
}

// Delete cannot tell a missing key apart: S3 deletes are idempotent.
func (b *Bucket) Delete(ctx context.Context, key string) error {
	if err := b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return mapErr("delete", key, err)
	}
	return nil
}

func (b *Bucket) Close() error {
	return nil
}

func mapErr(op, key string, err error) error {
	if storage.KindOf(err) != nil {
		return storage.NewError(op, key, storage.ErrIOFailure, err)
	}
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.Code == "NotFound" || resp.StatusCode == http.StatusNotFound:
		return storage.NewError(op, key, storage.ErrNotFound, err)
	case resp.Code == "AccessDenied" || resp.StatusCode == http.StatusForbidden:
		return storage.NewError(op, key, storage.ErrPermissionDenied, err)
	case resp.Code == "BucketAlreadyOwnedByYou" || resp.Code == "BucketAlreadyExists":
		return storage.NewError(op, key, storage.ErrAlreadyExists, err)
	case resp.Code == "InvalidRange" || resp.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		return storage.NewError(op, key, storage.ErrInvalidArgument, err)
	default:
		return storage.NewError(op, key, storage.ErrIOFailure, err)
	}
}
