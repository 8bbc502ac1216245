package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/anonid/internal/server/models"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// S3Options configures S3Archive. Credentials are static, as for MinIO.
type S3Options struct {
	Bucket       string
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
}

// S3Archive writes each registration as a JSON object to an S3-compatible
// bucket.
type S3Archive struct {
	client *s3.Client
	bucket string
}

// NewS3Archive builds the S3 client. No request is sent until Publish.
func NewS3Archive(ctx context.Context, opts S3Options) (*S3Archive, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Archive{client: client, bucket: opts.Bucket}, nil
}

// ObjectKey returns the key a registration is stored under:
// registrations/YYYY/MM/DD/<escaped username>.json, dated by CreatedAt (UTC).
func ObjectKey(reg *models.Registration) string {
	d := reg.CreatedAt.UTC()
	return fmt.Sprintf("registrations/%04d/%02d/%02d/%s.json", d.Year(), d.Month(), d.Day(), url.PathEscape(reg.Username))
}

// Publish uploads reg as JSON.
func (a *S3Archive) Publish(ctx context.Context, reg *models.Registration) error {
	body, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("encode registration: %w", err)
	}

	_, err = putObject(a.client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(ObjectKey(reg)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"username":  reg.Username,
			"algorithm": reg.Algorithm,
		},
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}
