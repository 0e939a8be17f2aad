package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"objectfs/core/storage"
	"objectfs/core/storage/s3/mocks"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestParseEndpoint(t *testing.T) {
	ep, err := ParseEndpoint("s3://assets")
	require.NoError(t, err)
	assert.Equal(t, Endpoint{Bucket: "assets"}, ep)

	ep, err = ParseEndpoint("http://localhost:9000/assets/")
	require.NoError(t, err)
	assert.Equal(t, Endpoint{BaseURL: "http://localhost:9000", Bucket: "assets"}, ep)

	for _, bad := range []string{"", "s3://", "http://localhost:9000", "http://host/a/b", "ftp://host/bucket"} {
		_, err := ParseEndpoint(bad)
		assert.ErrorIs(t, err, storage.ErrInvalidArgument, bad)
	}
}

func TestBucket_String(t *testing.T) {
	assert.Equal(t, "s3://assets/", New(nil, Endpoint{Bucket: "assets"}, "").String())
	assert.Equal(t, "s3://localhost:9000/assets/", New(nil, Endpoint{BaseURL: "http://localhost:9000", Bucket: "assets"}, "").String())
}

func TestMapErr(t *testing.T) {
	cases := map[string]error{
		"NoSuchKey":               storage.ErrNotFound,
		"NotFound":                storage.ErrNotFound,
		"AccessDenied":            storage.ErrPermissionDenied,
		"BucketAlreadyOwnedByYou": storage.ErrAlreadyExists,
		"InvalidRange":            storage.ErrInvalidArgument,
		"SlowDown":                storage.ErrIOFailure,
	}
	for code, kind := range cases {
		err := mapErr("head", "k", &smithy.GenericAPIError{Code: code})
		assert.ErrorIs(t, err, kind, code)
	}
	assert.ErrorIs(t, mapErr("get", "k", errors.New("reset by peer")), storage.ErrIOFailure)
}

func TestBucket_Head(t *testing.T) {
	api := new(mocks.API)
	b := New(api, Endpoint{Bucket: "assets"}, "us-east-1")
	mtime := time.Unix(1700000000, 0).UTC()

	api.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return aws.ToString(in.Key) == "a.txt"
	})).Return(&s3.HeadObjectOutput{ContentLength: aws.Int64(12), LastModified: &mtime}, nil)
	api.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return aws.ToString(in.Key) == "missing"
	})).Return(nil, &types.NotFound{})

	obj, err := b.Head(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(12), obj.Size)
	assert.Equal(t, mtime, obj.Mtime)
	assert.True(t, obj.IsFile())

	_, err = b.Head(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBucket_ListFollowsContinuation(t *testing.T) {
	api := new(mocks.API)
	b := New(api, Endpoint{Bucket: "assets"}, "")

	api.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return in.ContinuationToken == nil
	})).Return(&s3.ListObjectsV2Output{
		Contents:              []types.Object{{Key: aws.String("a"), Size: aws.Int64(1)}, {Key: aws.String("b"), Size: aws.Int64(2)}},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("t1"),
	}, nil).Once()
	api.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.ContinuationToken) == "t1" && in.StartAfter == nil
	})).Return(&s3.ListObjectsV2Output{
		Contents:    []types.Object{{Key: aws.String("c/"), Size: aws.Int64(0)}, {Key: aws.String("d"), Size: aws.Int64(4)}},
		IsTruncated: aws.Bool(false),
	}, nil).Once()

	objs, err := b.List(context.Background(), "", "", 3)
	require.NoError(t, err)
	require.Len(t, objs, 3)
	assert.Equal(t, "c/", objs[2].Key)
	assert.True(t, objs[2].IsDir())
	api.AssertExpectations(t)
}

func TestBucket_GetRange(t *testing.T) {
	api := new(mocks.API)
	b := New(api, Endpoint{Bucket: "assets"}, "")

	api.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Range) == "bytes=5-14"
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("0123456789"))}, nil)

	rc, err := b.Get(context.Background(), "a", 5, 10)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(data))

	// limit 0 never reaches the API.
	rc, err = b.Get(context.Background(), "a", 0, 0)
	require.NoError(t, err)
	data, _ = io.ReadAll(rc)
	assert.Empty(t, data)
}

func TestBucket_PutSmall(t *testing.T) {
	api := new(mocks.API)
	b := New(api, Endpoint{Bucket: "assets"}, "")

	api.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Key) == "k" && aws.ToInt64(in.ContentLength) == 5
	})).Return(&s3.PutObjectOutput{}, nil)

	require.NoError(t, b.Put(context.Background(), "k", strings.NewReader("hello")))
	api.AssertNotCalled(t, "CreateMultipartUpload", mock.Anything, mock.Anything)
}

func TestBucket_PutMultipartAbortsOnFailure(t *testing.T) {
	api := new(mocks.API)
	b := New(api, Endpoint{Bucket: "assets"}, "")

	api.On("CreateMultipartUpload", mock.Anything, mock.Anything).
		Return(&s3.CreateMultipartUploadOutput{UploadId: aws.String("u1")}, nil)
	api.On("UploadPart", mock.Anything, mock.MatchedBy(func(in *s3.UploadPartInput) bool {
		return aws.ToInt32(in.PartNumber) == 1
	})).Return(&s3.UploadPartOutput{ETag: aws.String("e1")}, nil)
	api.On("UploadPart", mock.Anything, mock.MatchedBy(func(in *s3.UploadPartInput) bool {
		return aws.ToInt32(in.PartNumber) == 2
	})).Return(nil, &smithy.GenericAPIError{Code: "AccessDenied"})
	api.On("AbortMultipartUpload", mock.Anything, mock.MatchedBy(func(in *s3.AbortMultipartUploadInput) bool {
		return aws.ToString(in.UploadId) == "u1"
	})).Return(&s3.AbortMultipartUploadOutput{}, nil)

	body := strings.NewReader(strings.Repeat("x", PartSize+10))
	err := b.Put(context.Background(), "big", body)
	assert.ErrorIs(t, err, storage.ErrPermissionDenied)
	api.AssertCalled(t, "AbortMultipartUpload", mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "CompleteMultipartUpload", mock.Anything, mock.Anything)
}

func TestBucket_PutMultipartCompletes(t *testing.T) {
	api := new(mocks.API)
	b := New(api, Endpoint{Bucket: "assets"}, "")

	api.On("CreateMultipartUpload", mock.Anything, mock.Anything).
		Return(&s3.CreateMultipartUploadOutput{UploadId: aws.String("u1")}, nil)
	api.On("UploadPart", mock.Anything, mock.Anything).
		Return(&s3.UploadPartOutput{ETag: aws.String("e")}, nil)
	api.On("CompleteMultipartUpload", mock.Anything, mock.MatchedBy(func(in *s3.CompleteMultipartUploadInput) bool {
		return len(in.MultipartUpload.Parts) == 2
	})).Return(&s3.CompleteMultipartUploadOutput{}, nil)

	body := strings.NewReader(strings.Repeat("x", PartSize+1))
	require.NoError(t, b.Put(context.Background(), "big", body))
	api.AssertNumberOfCalls(t, "UploadPart", 2)
}

func TestBucket_CreateIgnoresOwnedBucket(t *testing.T) {
	api := new(mocks.API)
	b := New(api, Endpoint{Bucket: "assets"}, "eu-west-1")

	api.On("HeadBucket", mock.Anything, mock.Anything).Return(nil, &types.NotFound{})
	api.On("CreateBucket", mock.Anything, mock.MatchedBy(func(in *s3.CreateBucketInput) bool {
		return in.CreateBucketConfiguration != nil &&
			in.CreateBucketConfiguration.LocationConstraint == types.BucketLocationConstraint("eu-west-1")
	})).Return(nil, &types.BucketAlreadyOwnedByYou{})

	assert.NoError(t, b.Create(context.Background()))
}
