package sink

import (
	"bytes"
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3PutObjectAPI is the slice of the S3 client the sink uses.
// Tests substitute a recording fake for the real client.
type s3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink stores artifacts as objects in an S3 bucket. Credentials and
// region come from the default AWS credential chain, so the same binary
// works on a laptop with a profile and in a scheduled cloud job with an
// instance role.
type S3Sink struct {
	client s3PutObjectAPI
	bucket string
}

// NewS3Sink creates an S3Sink for the given bucket using the default
// AWS configuration chain.
func NewS3Sink(ctx context.Context, bucket string) (*S3Sink, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &S3Sink{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// Bucket returns the destination bucket name.
func (s *S3Sink) Bucket() string {
	return s.bucket
}

// Put uploads body as an object under key.
func (s *S3Sink) Put(ctx context.Context, key, contentType string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	return err
}
