package minioctrl

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	// DocumentBucket stores exported document attachments referenced by
	// search results via their object key.
	DocumentBucket = "documents"

	// DefaultDownloadExpiry bounds how long a presigned download link stays
	// valid.
	DefaultDownloadExpiry = 15 * time.Minute
)

type MinioService struct {
	client *minio.Client
}

func NewMinioService(endpoint, accessKeyID, secretAccessKey string, useSSL bool) (*MinioService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %v", err)
	}

	return &MinioService{
		client: client,
	}, nil
}

// GetObject reads a stored document attachment.
func (s *MinioService) GetObject(ctx context.Context, bucketName, objectName string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %v", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object data: %v", err)
	}

	return data, nil
}

// PresignedDownloadURL mints a time-limited GET link for a stored object so
// search results can expose downloads without proxying bytes.
func (s *MinioService) PresignedDownloadURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = DefaultDownloadExpiry
	}

	presigned, err := s.client.PresignedGetObject(ctx, bucketName, objectName, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign object: %v", err)
	}

	return presigned.String(), nil
}
