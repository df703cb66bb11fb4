//go:build no_minio

package minio

import (
	"context"
	"fmt"
)

type Options struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
	BasePath        string
}

type Mirror struct{}

func New(_ context.Context, _ Options) (*Mirror, error) {
	return nil, fmt.Errorf("minio mirror is not supported in this build")
}

func (m *Mirror) Put(_ context.Context, _ int64, _, _ string) (string, error) {
	return "", fmt.Errorf("minio mirror is not supported in this build")
}
