package client

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"campus-chat-service/internal/config"
)

// ContentStore is the S3 compatible object store uploads are written to.
type ContentStore interface {
	GenerateKey(folder, originalName string) string
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	KeyFromURL(fileURL string) string
}

// S3Client talks to Cloudflare R2 (or any S3 compatible endpoint) with static credentials.
type S3Client struct {
	client    *s3.Client
	bucket    string
	endpoint  string
	publicURL string
}

func NewS3Client(ctx context.Context, cfg config.StorageConfig) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	endpoint := cfg.StorageEndpoint()
	if endpoint == "" {
		return nil, fmt.Errorf("storage endpoint or account id is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("access key and secret key are required")
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &S3Client{
		client:    client,
		bucket:    cfg.Bucket,
		endpoint:  strings.TrimSuffix(endpoint, "/"),
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}, nil
}

// GenerateKey returns "<folder>/<uuid>.<ext>" for an upload named originalName.
func (c *S3Client) GenerateKey(folder, originalName string) string {
	return generateKey(folder, originalName)
}

func generateKey(folder, originalName string) string {
	ext := strings.TrimPrefix(filepath.Ext(originalName), ".")
	if ext == "" {
		return fmt.Sprintf("%s/%s", folder, uuid.New().String())
	}
	return fmt.Sprintf("%s/%s.%s", folder, uuid.New().String(), strings.ToLower(ext))
}

// Upload stores body under key and returns its public URL.
func (c *S3Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to storage: %w", err)
	}
	return c.PublicURL(key), nil
}

func (c *S3Client) Delete(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from storage: %w", err)
	}
	return nil
}

// PublicURL returns the URL clients download key from.
func (c *S3Client) PublicURL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + key
	}
	return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, key)
}

// KeyFromURL reverses PublicURL. Unknown URLs yield "".
func (c *S3Client) KeyFromURL(fileURL string) string {
	for _, prefix := range []string{c.publicURL, c.endpoint + "/" + c.bucket} {
		if prefix == "" {
			continue
		}
		if key := strings.TrimPrefix(fileURL, prefix+"/"); key != fileURL {
			return key
		}
	}
	return ""
}
