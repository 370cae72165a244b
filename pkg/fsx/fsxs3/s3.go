package fsxs3

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/Abraxas-365/reactorbot/pkg/fsx"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// API is the subset of the S3 client used here; *s3.Client satisfies it.
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3FileSystem implements fsx.FileReader over S3. Paths are "bucket/key",
// which is what an s3://bucket/key location becomes after routing.
type S3FileSystem struct {
	client API
}

// NewS3FileSystem creates a new S3 reader.
func NewS3FileSystem(client API) *S3FileSystem {
	return &S3FileSystem{client: client}
}

func (s *S3FileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	bucket, key, err := split(path)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fsx.NotFound(path)
		}
		return nil, fsx.ReadFailed(path, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fsx.ReadFailed(path, err)
	}
	return data, nil
}

func (s *S3FileSystem) Exists(ctx context.Context, path string) (bool, error) {
	bucket, key, err := split(path)
	if err != nil {
		return false, err
	}

	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fsx.ReadFailed(path, err)
}

func split(path string) (bucket, key string, err error) {
	bucket, key, ok := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fsx.ReadFailed(path, errors.New("expected bucket/key"))
	}
	return bucket, key, nil
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}
