package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Client defines the S3 operations needed by S3FileProvider.
type S3Client interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	PutObject(ctx context.Context, bucket, key string, data []byte) error
	HeadObject(ctx context.Context, bucket, key string) error
}

// AWSS3Client implements S3Client using AWS SDK v2.
type AWSS3Client struct {
	s3Client *s3.Client
}

// NewAWSS3Client wraps an SDK client.
func NewAWSS3Client(s3Client *s3.Client) *AWSS3Client {
	return &AWSS3Client{s3Client: s3Client}
}

// isNotFound covers the typed NoSuchKey from GetObject and the bare 404
// "NotFound" code HeadObject returns since it has no body.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

// GetObject retrieves an object from S3. Missing keys return ErrNotFound.
func (c *AWSS3Client) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	result, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get object %s from bucket %s: %w", key, bucket, err)
	}
	defer func() { _ = result.Body.Close() }()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return data, nil
}

// PutObject uploads an object to S3.
func (c *AWSS3Client) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s to bucket %s: %w", key, bucket, err)
	}
	return nil
}

// HeadObject checks if an object exists in S3.
// Returns ErrNotFound if the object doesn't exist.
func (c *AWSS3Client) HeadObject(ctx context.Context, bucket, key string) error {
	_, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to head object %s in bucket %s: %w", key, bucket, err)
	}
	return nil
}
