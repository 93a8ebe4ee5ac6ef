package loader

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Loader fetches documents from an S3 bucket.
type S3Loader struct {
	bucket string
	client *s3.Client
}

// NewS3Loader creates a loader reading from the given bucket with an
// existing, preconfigured S3 client.
func NewS3Loader(bucket string, client *s3.Client) *S3Loader {
	return &S3Loader{bucket: bucket, client: client}
}

// LoadDocument fetches the object at key from the bucket.
func (l *S3Loader) LoadDocument(ctx context.Context, key string) ([]byte, error) {
	result, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, nil
}
