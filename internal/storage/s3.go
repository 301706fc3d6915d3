package storage

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	awssession "github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
)

// MaxPresignTTL is the longest lifetime SigV4 accepts for a presigned URL.
const MaxPresignTTL = 7 * 24 * time.Hour

type S3Options struct {
	// Endpoint is the S3-compatible endpoint, e.g.
	// https://<project>.supabase.co/storage/v1/s3.
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// PublicBaseURL is the project URL public object links are built on.
	// Derived from Endpoint when empty.
	PublicBaseURL string
}

// S3Store talks to the hosted bucket over its S3-compatible API.
type S3Store struct {
	client     *s3.S3
	publicBase string
}

func NewS3Store(opts S3Options) (*S3Store, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("storage endpoint is empty")
	}

	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	var creds *credentials.Credentials
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		creds = credentials.NewStaticCredentials(opts.AccessKeyID, opts.SecretAccessKey, "")
	}

	sess, err := awssession.NewSession(&aws.Config{
		Credentials:      creds,
		Endpoint:         aws.String(opts.Endpoint),
		Region:           aws.String(region),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create s3 session")
	}

	base := opts.PublicBaseURL
	if base == "" {
		base = strings.TrimSuffix(strings.TrimRight(opts.Endpoint, "/"), "/storage/v1/s3")
	}

	return &S3Store{
		client:     s3.New(sess),
		publicBase: strings.TrimRight(base, "/"),
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, bucket, name string, body io.ReadSeeker, contentType string) error {
	input := &s3.PutObjectInput{
		Body:   body,
		Bucket: aws.String(bucket),
		Key:    aws.String(name),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObjectWithContext(ctx, input); err != nil {
		return errors.Wrapf(err, "failed to upload %s to bucket %s", name, bucket)
	}
	return nil
}

// PublicURL follows the hosted backend's public object route.
func (s *S3Store) PublicURL(bucket, name string) string {
	return s.publicBase + "/storage/v1/object/public/" + url.PathEscape(bucket) + "/" + escapeKey(name)
}

func (s *S3Store) SignedURL(ctx context.Context, bucket, name string, ttl time.Duration) (string, error) {
	if err := checkTTL(ttl); err != nil {
		return "", err
	}

	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(name),
	})
	req.SetContext(ctx)

	signed, err := req.Presign(ttl)
	if err != nil {
		return "", errors.Wrap(err, "presign response")
	}
	return signed, nil
}

func (s *S3Store) SignedUploadURL(ctx context.Context, bucket, name, contentType string, ttl time.Duration) (string, error) {
	if err := checkTTL(ttl); err != nil {
		return "", err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(name),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	req, _ := s.client.PutObjectRequest(input)
	req.SetContext(ctx)

	signed, err := req.Presign(ttl)
	if err != nil {
		return "", errors.Wrap(err, "presign response")
	}
	return signed, nil
}

func checkTTL(ttl time.Duration) error {
	if ttl <= 0 || ttl > MaxPresignTTL {
		return errors.Errorf("signed url ttl %s out of range (max %s)", ttl, MaxPresignTTL)
	}
	return nil
}

// escapeKey escapes each path segment of an object key.
func escapeKey(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
