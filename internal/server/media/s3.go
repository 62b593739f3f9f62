package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/rentfinder/internal/common"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	now = time.Now
)

type S3Options struct {
	Region        string
	User          string
	Password      string
	Bucket        string
	Endpoint      string
	PublicBaseURL string
}

// S3Uploader stores images in an S3 compatible bucket that serves objects
// publicly under PublicBaseURL.
type S3Uploader struct {
	client *s3.Client
	opts   S3Options
}

func NewS3Uploader(ctx context.Context, opts S3Options) (*S3Uploader, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.User, opts.Password, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{client: client, opts: opts}, nil
}

// StorageKey builds a date-partitioned random key keeping the image type's
// extension.
func StorageKey(f File) string {
	d := now()
	return fmt.Sprintf("images/%d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), allowedTypes[f.MIMEType()])
}

func (u *S3Uploader) UploadOne(ctx context.Context, f File) (string, error) {
	if err := Validate(f); err != nil {
		return "", err
	}

	key := StorageKey(f)
	_, err := putObject(u.client, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.opts.Bucket),
		Key:           aws.String(key),
		Body:          f.Body,
		ContentType:   aws.String(f.MIMEType()),
		ContentLength: aws.Int64(f.Size),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put %s: %v", common.ErrUploadFailure, key, err)
	}

	return strings.TrimRight(u.opts.PublicBaseURL, "/") + "/" + key, nil
}
