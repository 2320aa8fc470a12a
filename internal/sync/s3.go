package sync

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures an S3Destination.
type S3Options struct {
	Bucket   string
	Key      string // object key of the latest export
	Region   string
	Endpoint string // non-empty for MinIO and other S3-compatible stores
	// Daily also keeps one snapshot per UTC day next to Key, e.g.
	// "trackline/export-2024-05-01.jsonl".
	Daily bool
}

// s3API is the subset of *s3.Client used by the destination.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Destination writes JSONL exports to an S3-compatible bucket.
type S3Destination struct {
	client s3API
	opts   S3Options
	now    func() time.Time
}

// NewS3Destination loads the default AWS credential chain for opts.Region.
// A custom endpoint switches to path-style addressing.
func NewS3Destination(ctx context.Context, opts S3Options) (*S3Destination, error) {
	if opts.Bucket == "" || opts.Key == "" {
		return nil, fmt.Errorf("s3 destination needs a bucket and a key")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Destination{client: client, opts: opts, now: time.Now}, nil
}

func (d *S3Destination) Name() string {
	return "s3://" + d.opts.Bucket + "/" + d.opts.Key
}

// Write uploads data as the latest export and, when enabled, as the
// snapshot of the current day.
func (d *S3Destination) Write(ctx context.Context, data []byte) error {
	keys := []string{d.opts.Key}
	if d.opts.Daily {
		keys = append(keys, dailyKey(d.opts.Key, d.now()))
	}
	for _, key := range keys {
		_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(d.opts.Bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String("application/x-ndjson"),
		})
		if err != nil {
			return fmt.Errorf("s3 put %s: %w", key, err)
		}
	}
	return nil
}

// dailyKey inserts the UTC date before the extension of key.
func dailyKey(key string, t time.Time) string {
	ext := path.Ext(key)
	return strings.TrimSuffix(key, ext) + "-" + t.UTC().Format("2006-01-02") + ext
}
