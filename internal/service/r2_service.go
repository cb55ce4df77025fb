package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	config "github.com/maheshrc27/postpilot/configs"
)

// R2Service mirrors assets into a Cloudflare R2 bucket for archival.
// When unconfigured every call is a no-op.
type R2Service struct {
	cfg    config.R2
	client *s3.Client
}

func NewR2Service(cfg *config.Config) *R2Service {
	r := &R2Service{cfg: cfg.R2}
	if !r.Enabled() {
		return r
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r.cfg.AccessKey, r.cfg.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Error("failed to configure R2 client, archival disabled", "error", err)
		return &R2Service{}
	}

	r.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.cfg.AccountID))
	})
	return r
}

func (r *R2Service) Enabled() bool {
	return r.cfg.AccountID != "" && r.cfg.AccessKey != "" && r.cfg.SecretKey != "" && r.cfg.BucketName != ""
}

// Upload stores one object. Callers treat failures as best-effort.
func (r *R2Service) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if r.client == nil {
		return nil
	}

	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.cfg.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
