package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/gzip"
)

// Archiver cold-archives a completed profile snapshot to S3, gzip-compressed,
// for long-term retention outside the hot SQL store.
type Archiver struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewArchiver loads the default AWS credential chain and returns an
// archiver writing to bucket/prefix.
func NewArchiver(ctx context.Context, bucket, prefix string) (*Archiver, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("profile: load aws config: %w", err)
	}
	return &Archiver{client: s3.NewFromConfig(cfg), bucket: bucket, prefix: prefix}, nil
}

// Archive writes p as a gzip-compressed JSON object keyed by sender.
func (a *Archiver) Archive(ctx context.Context, p *SenderProfile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("profile: archive marshal: %w", err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(raw); err != nil {
		return fmt.Errorf("profile: archive compress: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("profile: archive compress: %w", err)
	}

	key := fmt.Sprintf("%s%s.json.gz", a.prefix, p.Sender)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(a.bucket),
		Key:             aws.String(key),
		Body:            bytes.NewReader(buf.Bytes()),
		ContentEncoding: aws.String("gzip"),
		ContentType:     aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("profile: archive put: %w", err)
	}
	return nil
}
