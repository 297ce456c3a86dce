package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"jsmc-rsvp/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// FileArchiver keeps a copy of every uploaded member sheet.
type FileArchiver interface {
	Archive(ctx context.Context, name string, data []byte) (string, error)
}

type S3Archiver struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Archiver(ctx context.Context, cfg config.S3Config) (*S3Archiver, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Archiver{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (a *S3Archiver) Archive(ctx context.Context, name string, data []byte) (string, error) {
	key := archiveKey(a.prefix, name, time.Now())
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(sheetContentType(name)),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", a.bucket, key, err)
	}
	return key, nil
}

func archiveKey(prefix, name string, at time.Time) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	return path.Join(prefix, "member-imports", at.Format("20060102T150405")+"_"+base)
}

func sheetContentType(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".csv") {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
