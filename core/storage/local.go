package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalConfig configures the filesystem provider
type LocalConfig struct {
	BasePath string
	BaseURL  string
}

// LocalProvider stores objects under a directory served at BaseURL
type LocalProvider struct {
	basePath string
	baseURL  string
}

func NewLocalProvider(config LocalConfig) (*LocalProvider, error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("local storage requires a base path")
	}
	if err := os.MkdirAll(config.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalProvider{
		basePath: config.BasePath,
		baseURL:  strings.TrimRight(config.BaseURL, "/"),
	}, nil
}

func (p *LocalProvider) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (*UploadResult, error) {
	full, err := p.resolve(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(full)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, body)
	if err != nil {
		_ = os.Remove(full)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &UploadResult{
		Filename: filepath.Base(key),
		Path:     key,
		Size:     written,
		URL:      p.GetURL(key),
	}, nil
}

func (p *LocalProvider) Delete(_ context.Context, key string) error {
	full, err := p.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (p *LocalProvider) GetURL(key string) string {
	return p.baseURL + "/" + strings.TrimLeft(filepath.ToSlash(key), "/")
}

// resolve maps key inside basePath, rejecting traversal
func (p *LocalProvider) resolve(key string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(key))
	full := filepath.Join(p.basePath, clean)
	if !strings.HasPrefix(full, filepath.Clean(p.basePath)+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return full, nil
}
