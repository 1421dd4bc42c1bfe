// terrain/source.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package terrain

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"google.golang.org/api/option"
)

// Source provides raw tile files by slash-separated path. Open returns
// an error wrapping fs.ErrNotExist if there is no such file.
type Source interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// DirSource reads tiles from a local directory tree.
type DirSource string

func (d DirSource) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(string(d), filepath.FromSlash(path)))
}

// GCSSource reads tiles from a Google Cloud Storage bucket.
type GCSSource struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
}

// NewGCSSource returns a source for gs://bucket/prefix. Credentials are
// taken from the FDSAFETY_GCS_CREDENTIALS environment variable if it is
// set and from the default application credentials otherwise.
func NewGCSSource(ctx context.Context, bucket, prefix string) (*GCSSource, error) {
	var opts []option.ClientOption
	if creds := os.Getenv("FDSAFETY_GCS_CREDENTIALS"); creds != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSSource{
		client: client,
		bucket: client.Bucket(bucket),
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

func (g *GCSSource) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	r, err := g.bucket.Object(joinKey(g.prefix, path)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return r, err
}

func (g *GCSSource) Close() error {
	return g.client.Close()
}

// S3Source reads tiles from an S3 (or S3-compatible) bucket.
type S3Source struct {
	client *s3.Client
	bucket string
	prefix string
}

// S3Options configures NewS3Source. Endpoint may be set for
// S3-compatible services; static credentials are read from the
// FDSAFETY_S3_KEY_ID and FDSAFETY_S3_SECRET environment variables,
// falling back to the standard AWS configuration chain.
type S3Options struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string
}

func NewS3Source(ctx context.Context, opts S3Options) (*S3Source, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if id, secret := os.Getenv("FDSAFETY_S3_KEY_ID"), os.Getenv("FDSAFETY_S3_SECRET"); id != "" && secret != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(id, secret, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Source{client: client, bucket: opts.Bucket, prefix: strings.Trim(opts.Prefix, "/")}, nil
}

func (s *S3Source) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(joinKey(s.prefix, path)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
		}
		return nil, err
	}
	return out.Body, nil
}

func joinKey(prefix, path string) string {
	if prefix == "" {
		return path
	}
	return prefix + "/" + path
}
