package storage

import (
	"context"
	"fmt"
	"strings"
)

// R2Config holds configuration for Cloudflare R2 storage
type R2Config struct {
	AccessKeyID     string
	AccessKeySecret string
	AccountID       string
	Bucket          string
	BaseURL         string
	CDN             string
}

// NewR2Provider talks to https://<account_id>.r2.cloudflarestorage.com.
// Public URLs prefer the CDN, then BaseURL, then the raw endpoint.
func NewR2Provider(config R2Config) (Provider, error) {
	if config.AccountID == "" || config.Bucket == "" {
		return nil, fmt.Errorf("r2 storage requires an account id and a bucket")
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", config.AccountID)
	client, err := newS3Client(context.Background(), config.AccessKeyID, config.AccessKeySecret, "auto", endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create R2 client: %w", err)
	}

	public := strings.TrimRight(config.CDN, "/")
	if public == "" {
		public = strings.TrimRight(config.BaseURL, "/")
	}

	return &s3Provider{
		client: client,
		bucket: config.Bucket,
		name:   "R2",
		url: func(key string) string {
			if public != "" {
				return public + "/" + key
			}
			return fmt.Sprintf("%s/%s/%s", endpoint, config.Bucket, key)
		},
	}, nil
}
