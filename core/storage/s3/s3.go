// Package s3 implements the "s3" storage driver on the AWS SDK for Go v2.
//
// Endpoints:
//
//	s3://bucket                    AWS, virtual hosted style
//	https://host[:port]/bucket     custom endpoint, path style (MinIO, Ceph, R2...)
//
// Without an access key the default credential chain is used.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"objectfs/core/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// PartSize is the multipart chunk size; objects smaller than one part are
// uploaded with a single PutObject.
const PartSize = 8 << 20

// API is the subset of *s3.Client used by the driver.
type API interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CreateMultipartUpload(ctx context.Context, in *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	UploadPart(ctx context.Context, in *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error)
	CompleteMultipartUpload(ctx context.Context, in *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	AbortMultipartUpload(ctx context.Context, in *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

func init() {
	storage.Register("s3", func(ctx context.Context, cfg storage.Config) (storage.Driver, error) {
		ep, err := ParseEndpoint(cfg.Endpoint)
		if err != nil {
			return nil, err
		}
		client, err := NewClient(ctx, ep, cfg)
		if err != nil {
			return nil, err
		}
		return New(client, ep, cfg.Region), nil
	})
}

// Endpoint is a parsed driver endpoint.
type Endpoint struct {
	// BaseURL is empty for AWS itself.
	BaseURL string
	Bucket  string
}

// ParseEndpoint parses "s3://bucket" or "http(s)://host[:port]/bucket".
func ParseEndpoint(endpoint string) (Endpoint, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return Endpoint{}, storage.NewError("create", "", storage.ErrInvalidArgument, fmt.Errorf("invalid endpoint %q: %w", endpoint, err))
	}
	switch u.Scheme {
	case "s3":
		if u.Host == "" {
			break
		}
		return Endpoint{Bucket: u.Host}, nil
	case "http", "https":
		bucket := strings.Trim(u.Path, "/")
		if u.Host == "" || bucket == "" || strings.Contains(bucket, "/") {
			break
		}
		return Endpoint{BaseURL: u.Scheme + "://" + u.Host, Bucket: bucket}, nil
	}
	return Endpoint{}, storage.NewError("create", "", storage.ErrInvalidArgument, fmt.Errorf("endpoint %q must look like s3://bucket or https://host/bucket", endpoint))
}

// NewClient builds an S3 client for ep.
func NewClient(ctx context.Context, ep Endpoint, cfg storage.Config) (*s3.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			cfg.Token,
		)))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if ep.BaseURL != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(ep.BaseURL)
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(awsCfg, clientOpts...), nil
}

// Bucket is a storage driver over one S3 bucket.
type Bucket struct {
	api    API
	ep     Endpoint
	region string
}

// New binds a driver to the bucket of ep through api.
func New(api API, ep Endpoint, region string) *Bucket {
	return &Bucket{api: api, ep: ep, region: region}
}

func (b *Bucket) String() string {
	if b.ep.BaseURL != "" {
		return fmt.Sprintf("s3://%s/%s/", strings.SplitN(b.ep.BaseURL, "://", 2)[1], b.ep.Bucket)
	}
	return fmt.Sprintf("s3://%s/", b.ep.Bucket)
}

func (b *Bucket) Create(ctx context.Context) error {
	_, err := b.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.ep.Bucket)})
	if err == nil {
		return nil
	}
	if !errors.Is(mapErr("create", "", err), storage.ErrNotFound) {
		return mapErr("create", "", err)
	}
	in := &s3.CreateBucketInput{Bucket: aws.String(b.ep.Bucket)}
	if b.region != "" && b.region != "us-east-1" {
		in.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(b.region),
		}
	}
	if _, err := b.api.CreateBucket(ctx, in); err != nil {
		if errors.Is(mapErr("create", "", err), storage.ErrAlreadyExists) {
			return nil
		}
		return mapErr("create", "", err)
	}
	return nil
}

func (b *Bucket) Head(ctx context.Context, key string) (storage.Object, error) {
	out, err := b.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.ep.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return storage.Object{}, mapErr("head", key, err)
	}
	return storage.Object{
		Key:   key,
		Size:  aws.ToInt64(out.ContentLength),
		Mtime: aws.ToTime(out.LastModified),
		Dir:   strings.HasSuffix(key, "/"),
	}, nil
}

func (b *Bucket) List(ctx context.Context, prefix, marker string, limit int64) ([]storage.Object, error) {
	in := &s3.ListObjectsV2Input{
		Bucket:  aws.String(b.ep.Bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(int32(min(limit, 1000))),
	}
	if marker != "" {
		in.StartAfter = aws.String(marker)
	}

	objs := make([]storage.Object, 0)
	for int64(len(objs)) < limit {
		out, err := b.api.ListObjectsV2(ctx, in)
		if err != nil {
			return nil, mapErr("list", prefix, err)
		}
		for _, o := range out.Contents {
			key := aws.ToString(o.Key)
			objs = append(objs, storage.Object{
				Key:   key,
				Size:  aws.ToInt64(o.Size),
				Mtime: aws.ToTime(o.LastModified),
				Dir:   strings.HasSuffix(key, "/"),
			})
			if int64(len(objs)) == limit {
				break
			}
		}
		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			break
		}
		in.ContinuationToken = out.NextContinuationToken
		in.StartAfter = nil
	}
	return objs, nil
}

func (b *Bucket) Get(ctx context.Context, key string, off, limit int64) (io.ReadCloser, error) {
	if limit == 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	in := &s3.GetObjectInput{
		Bucket: aws.String(b.ep.Bucket),
		Key:    aws.String(key),
	}
	switch {
	case limit > 0:
		in.Range = aws.String(fmt.Sprintf("bytes=%d-%d", off, off+limit-1))
	case off > 0:
		in.Range = aws.String(fmt.Sprintf("bytes=%d-", off))
	}
	out, err := b.api.GetObject(ctx, in)
	if err != nil {
		return nil, mapErr("get", key, err)
	}
	return out.Body, nil
}

// Put uploads r. Bodies that fit in one part use PutObject; larger ones
// use a multipart upload that is aborted on any failure, so a failed Put
// never leaves a visible object.
func (b *Bucket) Put(ctx context.Context, key string, r io.Reader) error {
	buf := make([]byte, PartSize)
	n, rerr := io.ReadFull(r, buf)
	if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
		_, err := b.api.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(b.ep.Bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(buf[:n]),
			ContentLength: aws.Int64(int64(n)),
		})
		if err != nil {
			return mapErr("put", key, err)
		}
		return nil
	}
	if rerr != nil {
		return rerr
	}

	created, err := b.api.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket: aws.String(b.ep.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return mapErr("put", key, err)
	}
	uploadID := created.UploadId

	abort := func(cause error) error {
		// Use a fresh context: ctx may be the reason we are aborting.
		_, _ = b.api.AbortMultipartUpload(context.WithoutCancel(ctx), &s3.AbortMultipartUploadInput{
			Bucket:   aws.String(b.ep.Bucket),
			Key:      aws.String(key),
			UploadId: uploadID,
		})
		return cause
	}

	var parts []types.CompletedPart
	for number := int32(1); ; number++ {
		up, err := b.api.UploadPart(ctx, &s3.UploadPartInput{
			Bucket:        aws.String(b.ep.Bucket),
			Key:           aws.String(key),
			UploadId:      uploadID,
			PartNumber:    aws.Int32(number),
			Body:          bytes.NewReader(buf[:n]),
			ContentLength: aws.Int64(int64(n)),
		})
		if err != nil {
			return abort(mapErr("put", key, err))
		}
		parts = append(parts, types.CompletedPart{ETag: up.ETag, PartNumber: aws.Int32(number)})
		if rerr == io.ErrUnexpectedEOF {
			break
		}
		n, rerr = io.ReadFull(r, buf)
		if rerr == io.EOF {
			break
		}
		if rerr != nil && rerr != io.ErrUnexpectedEOF {
			return abort(rerr)
		}
	}

	_, err = b.api.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(b.ep.Bucket),
		Key:             aws.String(key),
		UploadId:        uploadID,
		MultipartUpload: &types.CompletedMultipartUpload{Parts: parts},
	})
	if err != nil {
		return abort(mapErr("put", key, err))
	}
	return nil
}

// Delete cannot tell a missing key apart: S3 deletes are idempotent.
func (b *Bucket) Delete(ctx context.Context, key string) error {
	_, err := b.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.ep.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return mapErr("delete", key, err)
	}
	return nil
}

func (b *Bucket) Close() error {
	return nil
}

func mapErr(op, key string, err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return storage.NewError(op, key, storage.ErrIOFailure, err)
	}
	switch apiErr.ErrorCode() {
	case "NoSuchKey", "NotFound", "NoSuchBucket", "NoSuchUpload":
		return storage.NewError(op, key, storage.ErrNotFound, err)
	case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return storage.NewError(op, key, storage.ErrPermissionDenied, err)
	case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
		return storage.NewError(op, key, storage.ErrAlreadyExists, err)
	case "InvalidRange", "InvalidArgument", "InvalidBucketName":
		return storage.NewError(op, key, storage.ErrInvalidArgument, err)
	default:
		return storage.NewError(op, key, storage.ErrIOFailure, err)
	}
}
