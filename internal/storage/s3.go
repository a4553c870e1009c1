// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage uploads post images to S3-compatible object storage. It
// wraps the AWS SDK v2 and is configured for path-style access, which most
// self-hosted and regional providers require.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"inkwell/internal/slug"
)

// MaxUploadSize is the largest image accepted, in bytes.
const MaxUploadSize = 5 << 20

// Upload validation errors. Their text is shown to the uploader.
var (
	ErrTooLarge = errors.New("File size must be less than 5MB")
	ErrNotImage = errors.New("Only image files are allowed")
	ErrEmpty    = errors.New("No file provided")
)

// objectPutter is the part of the S3 API the client uses.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Client stores uploads in a single public bucket.
type Client struct {
	s3        objectPutter
	bucket    string
	endpoint  string
	publicURL string // optional CDN/direct URL for uploaded files
	now       func() time.Time
}

// New creates an S3 storage client with path-style addressing. Returns
// (nil, nil) if endpoint or credentials are empty, allowing the app to start
// without storage.
func New(endpoint, region, accessKey, secretKey, bucket, publicURL string) (*Client, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}
	if bucket == "" {
		return nil, errors.New("storage: bucket is required")
	}

	endpoint = strings.TrimRight(endpoint, "/")

	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &Client{
		s3:        s3Client,
		bucket:    bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}, nil
}

// Image is a validated upload ready to be stored.
type Image struct {
	Key         string
	ContentType string
	Data        []byte
}

// PrepareImage reads at most MaxUploadSize bytes from r, sniffs the content
// type and builds the object key. The declared content type is ignored.
func PrepareImage(filename string, r io.Reader, now time.Time) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if len(data) > MaxUploadSize {
		return nil, ErrTooLarge
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, ErrNotImage
	}

	return &Image{
		Key:         ObjectKey(filename, mt.Extension(), now),
		ContentType: mt.String(),
		Data:        data,
	}, nil
}

// ObjectKey returns uploads/YYYY/MM/<name>-<random><ext>. The name is the
// slugged file name without its extension, or "image" when nothing is left.
func ObjectKey(filename, ext string, now time.Time) string {
	base := slug.Generate(strings.TrimSuffix(path.Base(filename), path.Ext(filename)))
	if base == "" {
		base = "image"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("uploads/%04d/%02d/%s-%s%s", now.Year(), int(now.Month()), base, suffix, ext)
}

// UploadImage validates and stores an image, returning its public URL.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	img, err := PrepareImage(filename, r, c.now().UTC())
	if err != nil {
		return "", err
	}

	_, err = c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(img.Key),
		Body:          bytes.NewReader(img.Data),
		ContentLength: aws.Int64(int64(len(img.Data))),
		ContentType:   aws.String(img.ContentType),
		ACL:           s3types.ObjectCannedACLPublicRead,
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload %s/%s: %w", c.bucket, img.Key, err)
	}
	return c.FileURL(img.Key), nil
}

// FileURL returns the public URL for an uploaded object. Uses the configured
// public URL if set, otherwise builds a path-style URL.
func (c *Client) FileURL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + key
	}
	return c.endpoint + "/" + c.bucket + "/" + key
}
