package storage

import (
	"context"
	"fmt"
	"time"

	appconfig "fieldops-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PhotoStore issues presigned URLs for field photos. The server never
// proxies image bytes; crews upload straight to the bucket and receipt
// viewers download straight from it.
type PhotoStore struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

// NewPhotoStore builds an S3-compatible client from the storage config.
// Returns nil when storage is not configured; callers treat a nil store
// as photos-unavailable, not as an error.
func NewPhotoStore(cfg *appconfig.Config) (*PhotoStore, error) {
	if cfg.Storage.AccessKey == "" || cfg.Storage.SecretKey == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Storage.AccessKey,
			cfg.Storage.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Storage.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("configure photo storage: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
		}
	})

	return &PhotoStore{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Storage.Bucket,
	}, nil
}

// PresignUpload returns a short-lived PUT URL for a new photo key.
func (p *PhotoStore) PresignUpload(ctx context.Context, key string) (string, error) {
	req, err := p.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", fmt.Errorf("presign upload for %s: %w", key, err)
	}
	return req.URL, nil
}

// PresignDownload returns a short-lived GET URL for an existing photo.
func (p *PhotoStore) PresignDownload(ctx context.Context, key string) (string, error) {
	req, err := p.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(1*time.Hour))
	if err != nil {
		return "", fmt.Errorf("presign download for %s: %w", key, err)
	}
	return req.URL, nil
}
