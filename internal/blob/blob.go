// Package blob stores uploaded binary objects (product images, post covers)
// in an S3-compatible bucket.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrInvalidKey = errors.New("invalid object key")

// Store is the object storage contract. KeyFromURL recovers the storage
// key from a public URL previously returned by Upload or URL, so callers
// holding only the persisted URL can still delete the object.
type Store interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
	KeyFromURL(url string) (string, error)
}

// Options configures an S3Store. Endpoint is optional and points at
// MinIO or another S3-compatible server. PublicURL overrides the base
// address objects are served from; when empty it is derived from the
// endpoint, or from the bucket's virtual-hosted AWS address.
type Options struct {
	Region    string
	Bucket    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

// S3Store implements Store against an S3-compatible bucket.
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewS3Store builds an S3-backed store. Static credentials are used when
// provided, otherwise the ambient AWS credential chain applies.
func NewS3Store(ctx context.Context, opts Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, errors.New("blob: bucket is required")
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("blob: load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	publicURL := strings.TrimRight(opts.PublicURL, "/")
	if publicURL == "" {
		if opts.Endpoint != "" {
			publicURL = strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket
		} else {
			region := opts.Region
			if region == "" {
				region = "us-east-1"
			}
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, region)
		}
	}
	return &S3Store{client: client, bucket: opts.Bucket, publicURL: publicURL}, nil
}

func (s *S3Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("blob: upload %s: %w", key, err)
	}
	return s.URL(key), nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("blob: delete %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) URL(key string) string {
	return s.publicURL + "/" + key
}

// ObjectKey derives a collision-free storage key for an upload, scoped by
// owner and timestamped so repeated uploads of the same filename coexist.
func ObjectKey(scope, ownerID, filename string) string {
	base := sanitizeFilename(path.Base(filename))
	return fmt.Sprintf("%s/%s/%d-%s", scope, ownerID, time.Now().UnixNano(), base)
}

// KeyFromURL recovers the object key from a public URL produced by URL.
func (s *S3Store) KeyFromURL(url string) (string, error) {
	prefix := s.publicURL + "/"
	if s.publicURL == "" || !strings.HasPrefix(url, prefix) {
		return "", ErrInvalidKey
	}
	key := strings.TrimPrefix(url, prefix)
	if err := validateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}

func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-.")
	if out == "" {
		out = "file"
	}
	return out
}
