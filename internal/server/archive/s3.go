package archive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/learning-journal/journal/internal/logging"
	sc "github.com/learning-journal/journal/internal/server/config"
	"github.com/learning-journal/journal/internal/server/models"
)

const documentContentType = "text/markdown; charset=utf-8"

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// NewS3Client builds an S3 client for the configured endpoint using static
// credentials. Path-style addressing keeps it compatible with MinIO.
func NewS3Client(ctx context.Context, c *sc.Config) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3RootUser,
			c.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
		}
		o.UsePathStyle = true
	}), nil
}

// ObjectPutter is the part of the S3 client the exporter uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Exporter uploads entries as markdown documents, one object per entry.
type S3Exporter struct {
	client ObjectPutter
	bucket string
	logger logging.Logger
}

func NewS3Exporter(client ObjectPutter, bucket string, l logging.Logger) *S3Exporter {
	return &S3Exporter{
		client: client,
		bucket: bucket,
		logger: l.With("module", "s3_exporter"),
	}
}

// ObjectKey is where the document for entry id is stored.
func ObjectKey(id int64) string {
	return fmt.Sprintf("entries/%d.md", id)
}

// Export uploads every entry and returns how many were written. It stops at
// the first failed upload; objects written before that stay in place.
func (e *S3Exporter) Export(ctx context.Context, entries []*models.Entry) (int, error) {
	for i, entry := range entries {
		doc, err := Encode(entry)
		if err != nil {
			return i, err
		}

		key := ObjectKey(entry.ID)
		_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(e.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(doc),
			ContentType: aws.String(documentContentType),
		})
		if err != nil {
			return i, fmt.Errorf("put %s: %w", key, err)
		}
		e.logger.Debug(ctx, "exported entry", "id", entry.ID, "key", key)
	}

	e.logger.Info(ctx, "export finished", "bucket", e.bucket, "count", len(entries))
	return len(entries), nil
}
