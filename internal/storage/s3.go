package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const presignTTL = 15 * time.Minute

// ObjectClient is the subset of the S3 client used by S3Store.
type ObjectClient interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Presigner produces time-limited GET URLs for object keys.
type Presigner interface {
	GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error)
}

// S3Store uploads images to a bucket.
type S3Store struct {
	client    ObjectClient
	presigner Presigner
	bucket    string
}

func NewS3Store(client ObjectClient, presigner Presigner, bucket string) *S3Store {
	return &S3Store{client: client, presigner: presigner, bucket: bucket}
}

func (s *S3Store) Backend() string { return "s3" }

func (s *S3Store) Save(ctx context.Context, r io.Reader) (string, error) {
	img, err := DetectImage(r)
	if err != nil {
		return "", err
	}

	key := newObjectKey(img.Ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        img.Body,
		ContentType: aws.String(img.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return key, nil
}

func (s *S3Store) URL(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	if s.presigner == nil {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, strings.TrimPrefix(ref, "/")), nil
	}
	return s.presigner.GeneratePresignedURL(ctx, ref, presignTTL)
}

func (s *S3Store) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from S3: %w", ref, err)
	}
	return nil
}
