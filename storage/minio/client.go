//go:build !no_minio

package minio

import (
	"context"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Options struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
	BasePath        string
}

// Mirror keeps a copy of delivered files in a bucket.
type Mirror struct {
	opts   Options
	client *minio.Client
	logger *log.Logger
	now    func() time.Time
}

func New(ctx context.Context, opts Options) (*Mirror, error) {
	if opts.Endpoint == "" || opts.BucketName == "" {
		return nil, fmt.Errorf("mirror endpoint and bucket_name are required")
	}
	endpoint := opts.Endpoint
	secure := opts.UseSSL
	if after, ok := strings.CutPrefix(endpoint, "https://"); ok {
		endpoint, secure = after, true
	} else if after, ok := strings.CutPrefix(endpoint, "http://"); ok {
		endpoint, secure = after, false
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure:       secure,
		Region:       "us-east-1",
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	exists, err := client.BucketExists(ctx, opts.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", opts.BucketName)
	}
	return &Mirror{
		opts:   opts,
		client: client,
		logger: log.FromContext(ctx).WithPrefix(fmt.Sprintf("mirror[%s]", opts.BucketName)),
		now:    time.Now,
	}, nil
}

// Key returns the object key a file of userID is stored under.
func (m *Mirror) Key(userID int64, name string) string {
	return path.Join(m.opts.BasePath, strconv.FormatInt(userID, 10), m.now().UTC().Format(time.DateOnly), name)
}

func (m *Mirror) Exists(ctx context.Context, key string) bool {
	_, err := m.client.StatObject(ctx, m.opts.BucketName, key, minio.StatObjectOptions{})
	return err == nil
}

// Put uploads the local file and returns the object key used.
func (m *Mirror) Put(ctx context.Context, userID int64, localPath, name string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	stat, err := file.Stat()
	if err != nil {
		return "", err
	}

	key := m.Key(userID, name)
	ext := path.Ext(key)
	base := strings.TrimSuffix(key, ext)
	for i := 1; m.Exists(ctx, key); i++ {
		key = fmt.Sprintf("%s_%d%s", base, i, ext)
	}

	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectFile(localPath); err == nil {
		contentType = mt.String()
	}
	m.logger.Debug("Mirroring file", "key", key, "size", stat.Size())
	_, err = m.client.PutObject(ctx, m.opts.BucketName, key, file, stat.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to minio: %w", err)
	}
	return key, nil
}
