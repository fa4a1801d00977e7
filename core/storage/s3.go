package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds configuration for S3 compatible storage
type S3Config struct {
	AccessKeyID     string
	AccessKeySecret string
	Endpoint        string
	Bucket          string
	BaseURL         string
	Region          string
}

// s3Provider backs both AWS S3 and Cloudflare R2
type s3Provider struct {
	client *s3.Client
	bucket string
	name   string
	url    func(key string) string
}

func newS3Client(ctx context.Context, keyID, secret, region, endpoint string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(keyID, secret, "")),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

func NewS3Provider(config S3Config) (Provider, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("s3 storage requires a bucket")
	}

	region := config.Region
	if region == "" {
		region = "us-east-1"
	}

	// custom endpoints (minio, spaces) need a scheme for BaseEndpoint
	endpoint := config.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http") {
		endpoint = "https://" + endpoint
	}

	client, err := newS3Client(context.Background(), config.AccessKeyID, config.AccessKeySecret, region, endpoint)
	if err != nil {
		return nil, err
	}

	host := strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
	if host == "" {
		host = fmt.Sprintf("s3.%s.amazonaws.com", region)
	}
	baseURL := strings.TrimRight(config.BaseURL, "/")

	return &s3Provider{
		client: client,
		bucket: config.Bucket,
		name:   "S3",
		url: func(key string) string {
			if baseURL != "" {
				return baseURL + "/" + key
			}
			return fmt.Sprintf("https://%s/%s/%s", host, config.Bucket, key)
		},
	}, nil
}

func (p *s3Provider) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*UploadResult, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	// ACLs are not set; access is governed by bucket policy
	if _, err := p.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("failed to upload to %s: %w", p.name, err)
	}

	return &UploadResult{
		Filename: key[strings.LastIndex(key, "/")+1:],
		Path:     key,
		Size:     size,
		URL:      p.GetURL(key),
	}, nil
}

func (p *s3Provider) Delete(ctx context.Context, key string) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (p *s3Provider) GetURL(key string) string {
	return p.url(key)
}
