package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"foliohost/pkg/domain"
)

// Mirror copies published file sets into object storage as an off-host
// backup of the static root.
type Mirror interface {
	PutFileSet(ctx context.Context, subdomain string, files domain.DeploymentFileSet) error
	RemoveSite(ctx context.Context, subdomain string) error
}

// MinioMirror implements Mirror for MinIO/S3 compatible storage.
type MinioMirror struct {
	client *minio.Client
	bucket string
}

// NewMinioMirror connects to MinIO and ensures the bucket exists.
func NewMinioMirror(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioMirror, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinioMirror{client: client, bucket: bucket}, nil
}

// PutFileSet uploads every file under sites/<subdomain>/.
func (m *MinioMirror) PutFileSet(ctx context.Context, subdomain string, files domain.DeploymentFileSet) error {
	for name, content := range files {
		key := objectKey(subdomain, name)
		reader := strings.NewReader(content)
		_, err := m.client.PutObject(ctx, m.bucket, key, reader, int64(len(content)), minio.PutObjectOptions{
			ContentType: contentType(name),
		})
		if err != nil {
			return fmt.Errorf("mirror %s: %w", key, err)
		}
	}
	return nil
}

// RemoveSite deletes all mirrored objects for the subdomain.
func (m *MinioMirror) RemoveSite(ctx context.Context, subdomain string) error {
	prefix := objectKey(subdomain, "") + "/"
	for object := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if object.Err != nil {
			return fmt.Errorf("list mirrored objects: %w", object.Err)
		}
		if err := m.client.RemoveObject(ctx, m.bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("remove %s: %w", object.Key, err)
		}
	}
	return nil
}

func objectKey(subdomain, name string) string {
	return path.Join("sites", subdomain, name)
}

func contentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".html"):
		return "text/html; charset=utf-8"
	case strings.HasSuffix(name, ".json"):
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
