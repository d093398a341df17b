package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/gabriel-vasile/mimetype"
	"github.com/opencontainers/go-digest"

	"github.com/danieljhkim/dsync/internal/cache"
	"github.com/danieljhkim/dsync/internal/config"
)

// S3API is the part of the S3 client the backend uses.
type S3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client builds an S3 client from the default AWS credential chain and
// the remote's region, profile, endpoint and path-style settings.
func NewS3Client(ctx context.Context, rs config.RemoteSettings) (S3API, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if rs.Region != "" {
		opts = append(opts, awsconfig.WithRegion(rs.Region))
	}
	if rs.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(rs.Profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if rs.Endpoint != "" {
			o.BaseEndpoint = aws.String(rs.Endpoint)
		}
		o.UsePathStyle = rs.PathStyle
	}), nil
}

// S3Backend stores objects in an S3 bucket below a key prefix.
type S3Backend struct {
	name   string
	client S3API
	bucket string
	prefix string
}

// NewS3Backend creates an S3Backend.
func NewS3Backend(name string, client S3API, bucket, prefix string) *S3Backend {
	return &S3Backend{name: name, client: client, bucket: bucket, prefix: prefix}
}

// Name returns the remote name.
func (b *S3Backend) Name() string {
	return b.name
}

func (b *S3Backend) key(d digest.Digest) string {
	return path.Join(b.prefix, cache.ObjectPath(d))
}

// Exists issues a HEAD request for d.
func (b *S3Backend) Exists(ctx context.Context, d digest.Digest) (bool, error) {
	if err := d.Validate(); err != nil {
		return false, fmt.Errorf("invalid digest %q: %w", d, err)
	}

	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(d)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check s3://%s/%s: %w", b.bucket, b.key(d), err)
	}
	return true, nil
}

// Upload puts r at the object key of d with a sniffed content type.
func (b *S3Backend) Upload(ctx context.Context, d digest.Digest, r io.ReadSeeker, size int64) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("invalid digest %q: %w", d, err)
	}

	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectReader(r); err == nil {
		contentType = mt.String()
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind %s: %w", d, err)
	}

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(b.key(d)),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", b.bucket, b.key(d), err)
	}
	return nil
}

// Open streams the object body of d.
func (b *S3Backend) Open(ctx context.Context, d digest.Digest) (io.ReadCloser, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid digest %q: %w", d, err)
	}

	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(d)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, d)
		}
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", b.bucket, b.key(d), err)
	}
	return out.Body, nil
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
